package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hellbot-id/hellbot/internal/chat"
	"github.com/hellbot-id/hellbot/internal/domain"
)

// WebhookService turns an authenticated payment notification into at most
// one rental state transition per (order, status). The HTTP layer has
// already verified the signature; everything here must be safe against
// provider retries and must never bubble a per-group failure into a crash of
// the ingestion path.
type WebhookService struct {
	rental    *RentalService
	orders    OrderStore
	events    EventStore
	prices    *PriceTable
	messenger chat.Messenger
	loc       *time.Location
}

func NewWebhookService(rental *RentalService, orders OrderStore, events EventStore, prices *PriceTable, messenger chat.Messenger, loc *time.Location) *WebhookService {
	return &WebhookService{
		rental:    rental,
		orders:    orders,
		events:    events,
		prices:    prices,
		messenger: messenger,
		loc:       loc,
	}
}

type resolvedOrder struct {
	GroupID      string
	GroupName    string
	Owner        domain.Owner
	DurationDays int
}

// Process handles one verified notification. A nil return means the
// notification was fully processed or deliberately dropped; either way the
// provider gets its 200 and stops retrying.
func (s *WebhookService) Process(ctx context.Context, n *domain.PaymentNotification) error {
	res, err := s.resolve(ctx, n)
	if errors.Is(err, domain.ErrGroupUnresolved) {
		// Not the sender's fault and retrying will not help. Drop loudly.
		slog.Error("webhook dropped: cannot resolve group context",
			"order_id", n.ExternalID, "status", n.Status, "amount", n.Amount, "error", err)
		return nil
	}
	if err != nil {
		// Transient store failure. Surface it so the provider retries; the
		// idempotency claim has not been consumed yet.
		return fmt.Errorf("resolve webhook context: %w", err)
	}

	first, err := s.events.MarkProcessed(ctx, n.ExternalID, n.Status)
	if err != nil {
		return fmt.Errorf("claim webhook event: %w", err)
	}
	if !first {
		slog.Info("webhook replay ignored", "order_id", n.ExternalID, "status", n.Status)
		return nil
	}

	switch n.Status {
	case domain.PaymentStatusPaid:
		return s.handlePaid(ctx, n, res)
	case domain.PaymentStatusExpired:
		s.notifyOwner(ctx, res, fmt.Sprintf(
			"Pembayaran untuk order %s kedaluwarsa. Silakan buat tagihan baru dengan perintah sewa.",
			n.ExternalID))
		return nil
	case domain.PaymentStatusPending:
		s.notifyOwner(ctx, res, fmt.Sprintf(
			"Pembayaran untuk order %s sedang diproses. Bot aktif otomatis setelah lunas.",
			n.ExternalID))
		return nil
	default:
		slog.Warn("webhook with unknown status ignored",
			"order_id", n.ExternalID, "status", n.Status)
		return nil
	}
}

func (s *WebhookService) handlePaid(ctx context.Context, n *domain.PaymentNotification, res resolvedOrder) error {
	expiry, err := s.rental.Activate(ctx, res.GroupID, res.DurationDays, res.Owner, n.Amount, n.ExternalID)
	if err != nil {
		// The claim is already consumed, so a retry will be ignored. This
		// needs a human: money was taken but the grant did not land.
		slog.Error("RECONCILE: paid order failed to activate",
			"order_id", n.ExternalID, "group_id", res.GroupID,
			"days", res.DurationDays, "amount", n.Amount, "error", err)
		return fmt.Errorf("activate rental: %w", err)
	}

	slog.Info("rental activated from webhook",
		"order_id", n.ExternalID, "group_id", res.GroupID,
		"days", res.DurationDays, "expiry", expiry)

	until := expiry.In(s.loc).Format("02-01-2006 15:04")
	if err := s.messenger.SendToGroup(ctx, res.GroupID,
		fmt.Sprintf("Pembayaran diterima. Sewa bot aktif sampai %s.", until)); err != nil {
		slog.Error("notify group after activation", "group_id", res.GroupID, "error", err)
	}
	s.notifyOwner(ctx, res, fmt.Sprintf(
		"Pembayaran order %s diterima. Sewa grup %s aktif %d hari, sampai %s. Terima kasih!",
		n.ExternalID, res.GroupName, res.DurationDays, until))
	return nil
}

func (s *WebhookService) notifyOwner(ctx context.Context, res resolvedOrder, text string) {
	if res.Owner.IsTrial() || res.Owner.ContactID == "" {
		return
	}
	if err := s.messenger.SendToContact(ctx, res.Owner.ContactID, text); err != nil {
		slog.Error("notify owner", "contact_id", res.Owner.ContactID, "error", err)
	}
}

// resolve recovers (group, owner, duration) for a notification. The
// structured metadata is authoritative when present; otherwise the stored
// order record; otherwise the order-id convention plus the price table.
func (s *WebhookService) resolve(ctx context.Context, n *domain.PaymentNotification) (resolvedOrder, error) {
	if m := n.Metadata; m != nil && m.GroupID != "" {
		contact := m.OwnerNumber
		if contact == "" {
			contact = m.OwnerID
		}
		return resolvedOrder{
			GroupID:      m.GroupID,
			GroupName:    m.GroupID,
			Owner:        domain.Owner{Name: m.OwnerName, ContactID: normalizeContact(contact)},
			DurationDays: m.Duration,
		}, nil
	}

	order, err := s.orders.GetByOrderID(ctx, n.ExternalID)
	if err == nil {
		return resolvedOrder{
			GroupID:      order.GroupID,
			GroupName:    order.GroupName,
			Owner:        order.Owner,
			DurationDays: order.DurationDays,
		}, nil
	}
	if !errors.Is(err, domain.ErrOrderNotFound) {
		return resolvedOrder{}, fmt.Errorf("look up order: %w", err)
	}

	groupID, err := ParseRentOrderID(n.ExternalID)
	if err != nil {
		return resolvedOrder{}, err
	}
	days, ok := s.prices.DurationForAmount(n.Amount)
	if !ok {
		return resolvedOrder{}, fmt.Errorf("amount %s matches no price tier: %w",
			n.Amount, domain.ErrGroupUnresolved)
	}
	slog.Warn("webhook context recovered from order id convention",
		"order_id", n.ExternalID, "group_id", groupID, "inferred_days", days)
	return resolvedOrder{
		GroupID:      groupID,
		GroupName:    groupID,
		Owner:        domain.Owner{},
		DurationDays: days,
	}, nil
}

func normalizeContact(contact string) string {
	if contact == "" || strings.Contains(contact, "@") {
		return contact
	}
	return contact + "@s.whatsapp.net"
}
