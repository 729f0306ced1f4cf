package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hellbot-id/hellbot/internal/domain"
)

// PaymentProcessor is the business half of webhook ingestion; the handler
// only authenticates, parses and maps outcomes to status codes.
type PaymentProcessor interface {
	Process(ctx context.Context, n *domain.PaymentNotification) error
}

type PaymentWebhookHandler struct {
	processor PaymentProcessor
	secret    string
}

func NewPaymentWebhookHandler(processor PaymentProcessor, secret string) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{processor: processor, secret: secret}
}

// Handle is POST /webhook/payment. The 200 is only written after the
// notification is fully processed or deliberately dropped, so the provider's
// retry-on-timeout stays safe. Any non-2xx makes the provider retry, which
// the idempotency claim absorbs.
func (h *PaymentWebhookHandler) Handle(c *gin.Context) {
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read body"})
		return
	}

	signature := c.GetHeader(SignatureHeader)
	if err := VerifySignature(rawBody, signature, h.secret); err != nil {
		slog.Warn("webhook rejected: bad signature",
			"signature", truncate(signature, 16), "remote", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	var n domain.PaymentNotification
	if err := json.Unmarshal(rawBody, &n); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed body"})
		return
	}
	if n.ExternalID == "" || n.Status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing external_id or status"})
		return
	}

	if err := h.processor.Process(c.Request.Context(), &n); err != nil {
		slog.Error("webhook processing failed", "order_id", n.ExternalID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
