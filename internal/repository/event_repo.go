package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hellbot-id/hellbot/internal/domain"
)

// EventRepo records which (order, status) webhook deliveries have already
// been processed. The payment provider retries on non-2xx and on timeouts,
// so every terminal transition must be claimed exactly once.
type EventRepo struct {
	db *pgxpool.Pool
}

func NewEventRepo(db *pgxpool.Pool) *EventRepo {
	return &EventRepo{db: db}
}

// MarkProcessed claims the (orderID, status) pair. False means a replay.
func (r *EventRepo) MarkProcessed(ctx context.Context, orderID string, status domain.PaymentStatus) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO webhook_events (order_id, status) VALUES ($1, $2)
		ON CONFLICT (order_id, status) DO NOTHING`,
		orderID, string(status))
	if err != nil {
		return false, fmt.Errorf("mark webhook processed: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
