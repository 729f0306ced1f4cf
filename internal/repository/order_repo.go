package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/hellbot-id/hellbot/internal/domain"
)

// OrderRepo stores the correlation record written at invoice-request time.
// Orders are immutable once created.
type OrderRepo struct {
	db *pgxpool.Pool
}

func NewOrderRepo(db *pgxpool.Pool) *OrderRepo {
	return &OrderRepo{db: db}
}

func (r *OrderRepo) Create(ctx context.Context, o *domain.PaymentOrder) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO payment_orders
			(order_id, group_id, group_name, owner_name, owner_contact,
			 duration_days, amount, invoice_id, payment_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8, $9)`,
		o.OrderID, o.GroupID, o.GroupName, o.Owner.Name, o.Owner.ContactID,
		o.DurationDays, o.Amount.String(), o.InvoiceID, o.PaymentURL)
	if err != nil {
		return fmt.Errorf("create payment order: %w", err)
	}
	return nil
}

func (r *OrderRepo) GetByOrderID(ctx context.Context, orderID string) (*domain.PaymentOrder, error) {
	var (
		o      domain.PaymentOrder
		amount string
	)
	err := r.db.QueryRow(ctx, `
		SELECT order_id, group_id, group_name, owner_name, owner_contact,
		       duration_days, amount::text, invoice_id, payment_url, created_at
		FROM payment_orders WHERE order_id = $1`, orderID).
		Scan(&o.OrderID, &o.GroupID, &o.GroupName, &o.Owner.Name,
			&o.Owner.ContactID, &o.DurationDays, &amount, &o.InvoiceID,
			&o.PaymentURL, &o.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get payment order: %w", err)
	}
	o.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	return &o, nil
}
