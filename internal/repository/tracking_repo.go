package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hellbot-id/hellbot/internal/domain"
)

// TrackingRepo enforces at most one notification per (group, contact, kind)
// per calendar day, across restarts.
type TrackingRepo struct {
	db *pgxpool.Pool
}

func NewTrackingRepo(db *pgxpool.Pool) *TrackingRepo {
	return &TrackingRepo{db: db}
}

// MarkSent atomically claims the send for the given calendar day. It returns
// true when this is the first send for the key on that day; the upsert only
// ever advances the stored date, so a replayed claim for the same day loses.
func (r *TrackingRepo) MarkSent(ctx context.Context, key domain.NotificationKey, day string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO notification_log (group_id, contact_id, kind, sent_date)
		VALUES ($1, $2, $3, $4::date)
		ON CONFLICT (group_id, contact_id, kind)
		DO UPDATE SET sent_date = EXCLUDED.sent_date
		WHERE notification_log.sent_date < EXCLUDED.sent_date`,
		key.GroupID, key.ContactID, string(key.Kind), day)
	if err != nil {
		return false, fmt.Errorf("mark notification sent: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Prune drops entries whose last send predates the cutoff.
func (r *TrackingRepo) Prune(ctx context.Context, before time.Time) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM notification_log WHERE sent_date < $1::date`,
		before.Format("2006-01-02"))
	if err != nil {
		return fmt.Errorf("prune notification log: %w", err)
	}
	return nil
}
