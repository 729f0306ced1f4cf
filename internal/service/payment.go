package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hellbot-id/hellbot/internal/config"
	"github.com/hellbot-id/hellbot/internal/domain"
)

// PaymentService creates invoices at the payment gateway and records the
// PaymentOrder the webhook layer later uses to recover context. The gateway
// reports payment outcomes asynchronously through the signed webhook; this
// client never polls.
type PaymentService struct {
	orders     OrderStore
	prices     *PriceTable
	cfg        *config.Config
	httpClient *http.Client

	now func() time.Time
}

func NewPaymentService(orders OrderStore, prices *PriceTable, cfg *config.Config) *PaymentService {
	return &PaymentService{
		orders:     orders,
		prices:     prices,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}
}

func (s *PaymentService) CreateRentInvoice(ctx context.Context, groupID, groupName string, owner domain.Owner, durationDays int) (*domain.PaymentOrder, error) {
	amount, ok := s.prices.AmountFor(durationDays)
	if !ok {
		return nil, domain.ErrInvalidDuration
	}

	orderID := BuildRentOrderID(groupID, s.now())

	payload := map[string]interface{}{
		"external_id": orderID,
		"amount":      amount,
		"description": fmt.Sprintf("Sewa bot %d hari - %s", durationDays, groupName),
		"currency":    "IDR",
		"metadata": map[string]interface{}{
			"group_id":     groupID,
			"duration":     durationDays,
			"owner_id":     owner.ContactID,
			"owner_name":   owner.Name,
			"owner_number": owner.ContactID,
		},
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.cfg.GatewayURL+"/v2/invoices", bytes.NewReader(payloadJSON))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Idempotency-Key", uuid.New().String())
	req.SetBasicAuth(s.cfg.GatewayAPIKey, "")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gateway returned %d: %s", resp.StatusCode, body)
	}

	var result struct {
		ID         string `json:"id"`
		InvoiceURL string `json:"invoice_url"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	order := &domain.PaymentOrder{
		OrderID:      orderID,
		GroupID:      groupID,
		GroupName:    groupName,
		Owner:        owner,
		DurationDays: durationDays,
		Amount:       amount,
		InvoiceID:    result.ID,
		PaymentURL:   result.InvoiceURL,
		CreatedAt:    s.now(),
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("record order: %w", err)
	}
	return order, nil
}
