package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hellbot-id/hellbot/internal/domain"
)

// RentalService owns the per-group rental lifecycle: activation, extension,
// trial, expiry and the two settings toggles. All mutations go through the
// store's atomic Update, so a webhook-driven activation racing a
// sweep-driven expiry on the same group serializes there.
type RentalService struct {
	settings  SettingsStore
	loc       *time.Location
	trialDays int

	now func() time.Time
}

func NewRentalService(settings SettingsStore, loc *time.Location, trialDays int) *RentalService {
	return &RentalService{
		settings:  settings,
		loc:       loc,
		trialDays: trialDays,
		now:       time.Now,
	}
}

// Activate grants or extends a paid rental and returns the new expiry.
//
// A fresh activation expires at the end of the calendar day durationDays
// from now, in the operating timezone, so partial days always round up to a
// full final day. When the group is still active this is an extension: the
// days are added to whichever is later, now or the current expiry, so a
// renewal bought early never loses remaining paid time.
func (s *RentalService) Activate(ctx context.Context, groupID string, durationDays int, owner domain.Owner, amountPaid decimal.Decimal, orderID string) (time.Time, error) {
	if durationDays <= 0 {
		return time.Time{}, domain.ErrInvalidDuration
	}

	var expiry time.Time
	err := s.settings.Update(ctx, groupID, func(st *domain.GroupSettings) error {
		now := s.now().In(s.loc)

		base := now
		if st.RentActiveAt(now) {
			base = st.RentExpiry.In(s.loc)
		}
		expiry = endOfDay(base.AddDate(0, 0, durationDays))

		st.RentMode = true
		st.BotActive = true
		st.RentExpiry = &expiry
		st.RentOwner = &owner
		st.RentDurationDays = durationDays
		st.RentAmountPaid = amountPaid
		st.RentOrderID = orderID
		return nil
	})
	if err != nil {
		return time.Time{}, err
	}
	return expiry, nil
}

// ActivateTrial grants the one complimentary rental a group gets in its
// lifetime. The used-trial flag is set in the same store write as the
// activation, so a restart between the two cannot hand out a second trial.
func (s *RentalService) ActivateTrial(ctx context.Context, groupID string) (time.Time, error) {
	var expiry time.Time
	err := s.settings.Update(ctx, groupID, func(st *domain.GroupSettings) error {
		if st.HasUsedTrial {
			return domain.ErrTrialAlreadyUsed
		}
		st.HasUsedTrial = true

		now := s.now().In(s.loc)
		base := now
		if st.RentActiveAt(now) {
			base = st.RentExpiry.In(s.loc)
		}
		expiry = endOfDay(base.AddDate(0, 0, s.trialDays))

		owner := domain.TrialOwner
		st.RentMode = true
		st.BotActive = true
		st.RentExpiry = &expiry
		st.RentOwner = &owner
		st.RentDurationDays = s.trialDays
		st.RentAmountPaid = decimal.Zero
		st.RentOrderID = "TRIAL"
		return nil
	})
	if err != nil {
		return time.Time{}, err
	}
	return expiry, nil
}

// IsActive is the expiry-aware read. The stored boolean is only cleared by
// the hourly sweep, so it is never trusted on its own.
func (s *RentalService) IsActive(ctx context.Context, groupID string) (bool, error) {
	st, err := s.settings.Get(ctx, groupID)
	if err != nil {
		return false, err
	}
	return st.RentActiveAt(s.now()), nil
}

// Expire turns the rental off. Owner and expiry stay behind for audit.
func (s *RentalService) Expire(ctx context.Context, groupID string) error {
	return s.settings.Update(ctx, groupID, func(st *domain.GroupSettings) error {
		st.RentMode = false
		return nil
	})
}

func (s *RentalService) SetBotActive(ctx context.Context, groupID string, active bool) error {
	return s.settings.Update(ctx, groupID, func(st *domain.GroupSettings) error {
		st.BotActive = active
		return nil
	})
}

func (s *RentalService) SetCommandPermission(ctx context.Context, groupID, command string, level domain.PermissionLevel) error {
	if level != domain.PermissionAdmin && level != domain.PermissionAll {
		return domain.ErrInvalidPermission
	}
	return s.settings.Update(ctx, groupID, func(st *domain.GroupSettings) error {
		if st.CommandPermissions == nil {
			st.CommandPermissions = map[string]domain.PermissionLevel{}
		}
		st.CommandPermissions[command] = level
		return nil
	})
}

func (s *RentalService) SetHellMode(ctx context.Context, groupID string, mode domain.HellMode) error {
	if !mode.Valid() {
		return domain.ErrInvalidHellMode
	}
	return s.settings.Update(ctx, groupID, func(st *domain.GroupSettings) error {
		st.HellMode = mode
		return nil
	})
}

// endOfDay normalizes a moment to 23:59:59.999 of its calendar day, keeping
// the location it came in with.
func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}
