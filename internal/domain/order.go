package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusExpired PaymentStatus = "EXPIRED"
	PaymentStatusPending PaymentStatus = "PENDING"
)

// PaymentOrder is the correlation record written when an invoice is
// requested and read back when its webhook arrives, in case the webhook
// payload omits its metadata. Never mutated after creation.
type PaymentOrder struct {
	OrderID      string
	GroupID      string
	GroupName    string
	Owner        Owner
	DurationDays int
	Amount       decimal.Decimal
	InvoiceID    string
	PaymentURL   string
	CreatedAt    time.Time
}

// PaymentNotification is the authenticated webhook body after parsing.
// Metadata may be absent; the ingestion layer then recovers context from the
// stored PaymentOrder or from the order-id naming convention.
type PaymentNotification struct {
	ID         string           `json:"id"`
	ExternalID string           `json:"external_id"`
	Status     PaymentStatus    `json:"status"`
	Amount     decimal.Decimal  `json:"amount"`
	PaidAt     *time.Time       `json:"paid_at,omitempty"`
	Metadata   *PaymentMetadata `json:"metadata,omitempty"`
}

type PaymentMetadata struct {
	GroupID     string `json:"group_id"`
	Duration    int    `json:"duration"`
	OwnerID     string `json:"owner_id"`
	OwnerName   string `json:"owner_name"`
	OwnerNumber string `json:"owner_number"`
}
