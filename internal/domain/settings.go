package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type HellMode string

const (
	HellModeAll     HellMode = "all"
	HellModeWatcher HellMode = "watcher"
	HellModeOff     HellMode = "off"
)

func (m HellMode) Valid() bool {
	return m == HellModeAll || m == HellModeWatcher || m == HellModeOff
}

type PermissionLevel string

const (
	PermissionAdmin PermissionLevel = "admin"
	PermissionAll   PermissionLevel = "all"
)

// Owner is the paying (or trialing) party behind a rental.
type Owner struct {
	Name      string
	ContactID string
}

// TrialOwner marks a trial grant that has no real paying party behind it.
// The notifier skips owner-directed messages for it.
var TrialOwner = Owner{Name: "Trial", ContactID: "trial"}

func (o Owner) IsTrial() bool {
	return o.ContactID == TrialOwner.ContactID
}

// GroupSettings is the per-group record behind every rental, permission and
// notification decision. Records are created lazily with defaults and never
// deleted; a group the bot has left simply goes inert.
type GroupSettings struct {
	GroupID            string
	BotActive          bool
	RentMode           bool
	RentExpiry         *time.Time
	RentOwner          *Owner
	RentDurationDays   int
	RentAmountPaid     decimal.Decimal
	RentOrderID        string
	HasUsedTrial       bool
	HellMode           HellMode
	CommandPermissions map[string]PermissionLevel
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewGroupSettings returns the documented defaults for a group that has no
// persisted record yet. Callers get this from the store without it being
// written; the first mutation persists it.
func NewGroupSettings(groupID string) *GroupSettings {
	return &GroupSettings{
		GroupID:            groupID,
		BotActive:          false,
		RentMode:           false,
		HasUsedTrial:       false,
		HellMode:           HellModeAll,
		RentAmountPaid:     decimal.Zero,
		CommandPermissions: map[string]PermissionLevel{},
	}
}

// RentActiveAt reports whether the rental entitlement holds at the given
// instant. The stored boolean alone is not authoritative: it is only flipped
// off by the asynchronous expiry sweep, so every read must also compare
// against the expiry timestamp.
func (s *GroupSettings) RentActiveAt(now time.Time) bool {
	return s.RentMode && s.RentExpiry != nil && now.Before(*s.RentExpiry)
}

// PermissionFor resolves the per-group override for a command, defaulting to
// all-members when unset.
func (s *GroupSettings) PermissionFor(command string) PermissionLevel {
	if lvl, ok := s.CommandPermissions[command]; ok {
		return lvl
	}
	return PermissionAll
}
