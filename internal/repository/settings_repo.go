package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/hellbot-id/hellbot/internal/domain"
)

const settingsColumns = `group_id, bot_active, rent_mode, rent_expiry,
	rent_owner_name, rent_owner_contact, rent_duration_days,
	rent_amount_paid::text, rent_order_id, has_used_trial, hell_mode,
	command_permissions, created_at, updated_at`

// SettingsRepo owns the group_settings table. It is the only accessor of the
// durable settings document; everything else goes through its interface.
type SettingsRepo struct {
	db *pgxpool.Pool
}

func NewSettingsRepo(db *pgxpool.Pool) *SettingsRepo {
	return &SettingsRepo{db: db}
}

// Get returns the stored settings for a group, or in-memory defaults when no
// record exists yet. The defaults are not persisted until the first Update.
func (r *SettingsRepo) Get(ctx context.Context, groupID string) (*domain.GroupSettings, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+settingsColumns+` FROM group_settings WHERE group_id = $1`, groupID)
	s, err := scanSettings(row)
	if err == pgx.ErrNoRows {
		return domain.NewGroupSettings(groupID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get group settings: %w", err)
	}
	return s, nil
}

func (r *SettingsRepo) GetAll(ctx context.Context) ([]domain.GroupSettings, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+settingsColumns+` FROM group_settings ORDER BY group_id`)
	if err != nil {
		return nil, fmt.Errorf("list group settings: %w", err)
	}
	defer rows.Close()

	var out []domain.GroupSettings
	for rows.Next() {
		s, err := scanSettings(rows)
		if err != nil {
			return nil, fmt.Errorf("scan group settings: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// Update runs mutate against the current settings row inside a transaction
// holding a row lock, then writes the whole record back. A missing row is
// created with defaults first so the lock always has something to hold.
// Concurrent writers for the same group serialize here; a mutate error or a
// write error rolls the transaction back whole.
func (r *SettingsRepo) Update(ctx context.Context, groupID string, mutate func(*domain.GroupSettings) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO group_settings (group_id) VALUES ($1) ON CONFLICT (group_id) DO NOTHING`,
		groupID); err != nil {
		return fmt.Errorf("ensure group row: %w", err)
	}

	row := tx.QueryRow(ctx,
		`SELECT `+settingsColumns+` FROM group_settings WHERE group_id = $1 FOR UPDATE`, groupID)
	s, err := scanSettings(row)
	if err != nil {
		return fmt.Errorf("lock group settings: %w", err)
	}

	if err := mutate(s); err != nil {
		return err
	}

	perms, err := json.Marshal(s.CommandPermissions)
	if err != nil {
		return fmt.Errorf("marshal command permissions: %w", err)
	}

	var ownerName, ownerContact *string
	if s.RentOwner != nil {
		ownerName = &s.RentOwner.Name
		ownerContact = &s.RentOwner.ContactID
	}

	if _, err := tx.Exec(ctx, `
		UPDATE group_settings SET
			bot_active = $2,
			rent_mode = $3,
			rent_expiry = $4,
			rent_owner_name = $5,
			rent_owner_contact = $6,
			rent_duration_days = $7,
			rent_amount_paid = $8::numeric,
			rent_order_id = $9,
			has_used_trial = $10,
			hell_mode = $11,
			command_permissions = $12,
			updated_at = now()
		WHERE group_id = $1`,
		groupID, s.BotActive, s.RentMode, s.RentExpiry, ownerName, ownerContact,
		s.RentDurationDays, s.RentAmountPaid.String(), s.RentOrderID,
		s.HasUsedTrial, string(s.HellMode), perms); err != nil {
		return fmt.Errorf("write group settings: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit group settings: %w", err)
	}
	return nil
}

func scanSettings(row pgx.Row) (*domain.GroupSettings, error) {
	var (
		s            domain.GroupSettings
		expiry       *time.Time
		ownerName    *string
		ownerContact *string
		amount       string
		hellMode     string
		perms        []byte
	)
	err := row.Scan(&s.GroupID, &s.BotActive, &s.RentMode, &expiry,
		&ownerName, &ownerContact, &s.RentDurationDays, &amount,
		&s.RentOrderID, &s.HasUsedTrial, &hellMode, &perms,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}

	s.RentExpiry = expiry
	if ownerContact != nil {
		name := ""
		if ownerName != nil {
			name = *ownerName
		}
		s.RentOwner = &domain.Owner{Name: name, ContactID: *ownerContact}
	}
	s.RentAmountPaid, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	s.HellMode = domain.HellMode(hellMode)
	s.CommandPermissions = map[string]domain.PermissionLevel{}
	if len(perms) > 0 {
		if err := json.Unmarshal(perms, &s.CommandPermissions); err != nil {
			return nil, fmt.Errorf("parse command permissions: %w", err)
		}
	}
	return &s, nil
}
