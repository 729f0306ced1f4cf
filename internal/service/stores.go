package service

import (
	"context"
	"time"

	"github.com/hellbot-id/hellbot/internal/domain"
)

// SettingsStore is the single gate to the durable per-group settings
// document. Update must be an atomic read-modify-write: the mutate callback
// sees the current record and its result is persisted whole, serialized
// against concurrent writers for the same group.
type SettingsStore interface {
	Get(ctx context.Context, groupID string) (*domain.GroupSettings, error)
	GetAll(ctx context.Context) ([]domain.GroupSettings, error)
	Update(ctx context.Context, groupID string, mutate func(*domain.GroupSettings) error) error
}

// TrackingStore enforces the once-per-calendar-day notification rule.
type TrackingStore interface {
	MarkSent(ctx context.Context, key domain.NotificationKey, day string) (first bool, err error)
	Prune(ctx context.Context, before time.Time) error
}

// OrderStore keeps invoice-time correlation records.
type OrderStore interface {
	Create(ctx context.Context, o *domain.PaymentOrder) error
	GetByOrderID(ctx context.Context, orderID string) (*domain.PaymentOrder, error)
}

// EventStore claims webhook (order, status) pairs exactly once.
type EventStore interface {
	MarkProcessed(ctx context.Context, orderID string, status domain.PaymentStatus) (first bool, err error)
}
