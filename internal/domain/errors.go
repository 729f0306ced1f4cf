package domain

import "errors"

var (
	ErrInvalidDuration   = errors.New("rent duration must be a positive number of days")
	ErrTrialAlreadyUsed  = errors.New("trial already used by this group")
	ErrOrderNotFound     = errors.New("payment order not found")
	ErrGroupUnresolved   = errors.New("cannot resolve group for notification")
	ErrInvalidSignature  = errors.New("invalid webhook signature")
	ErrInvalidHellMode   = errors.New("invalid hell notification mode")
	ErrInvalidPermission = errors.New("invalid permission level")
)
