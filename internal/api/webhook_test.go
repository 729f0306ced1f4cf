package api

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hellbot-id/hellbot/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testSecret = "test-webhook-secret"

type fakeProcessor struct {
	received []*domain.PaymentNotification
	err      error
}

func (f *fakeProcessor) Process(_ context.Context, n *domain.PaymentNotification) error {
	if f.err != nil {
		return f.err
	}
	f.received = append(f.received, n)
	return nil
}

func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func postWebhook(handler *PaymentWebhookHandler, body []byte, signature string) *httptest.ResponseRecorder {
	router := gin.New()
	router.POST("/webhook/payment", handler.Handle)

	req := httptest.NewRequest("POST", "/webhook/payment", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set(SignatureHeader, signature)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWebhook_ValidSignatureProcessed(t *testing.T) {
	proc := &fakeProcessor{}
	h := NewPaymentWebhookHandler(proc, testSecret)

	body := []byte(`{"id":"inv-1","external_id":"RENT_g1_1","status":"PAID","amount":10000}`)
	w := postWebhook(h, body, sign(body, testSecret))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"OK"}`, w.Body.String())
	require.Len(t, proc.received, 1)
	assert.Equal(t, "RENT_g1_1", proc.received[0].ExternalID)
	assert.Equal(t, domain.PaymentStatusPaid, proc.received[0].Status)
}

func TestWebhook_TamperedBodyRejected(t *testing.T) {
	proc := &fakeProcessor{}
	h := NewPaymentWebhookHandler(proc, testSecret)

	body := []byte(`{"id":"inv-1","external_id":"RENT_g1_1","status":"PAID","amount":10000}`)
	signature := sign(body, testSecret)
	// One byte changed after signing.
	tampered := bytes.Replace(body, []byte("10000"), []byte("10001"), 1)

	w := postWebhook(h, tampered, signature)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, proc.received)
}

func TestWebhook_MissingSignatureRejected(t *testing.T) {
	proc := &fakeProcessor{}
	h := NewPaymentWebhookHandler(proc, testSecret)

	body := []byte(`{"id":"inv-1","external_id":"RENT_g1_1","status":"PAID","amount":10000}`)
	w := postWebhook(h, body, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, proc.received)
}

func TestWebhook_EmptySecretFailsClosed(t *testing.T) {
	proc := &fakeProcessor{}
	h := NewPaymentWebhookHandler(proc, "")

	body := []byte(`{"id":"inv-1","external_id":"RENT_g1_1","status":"PAID","amount":10000}`)
	w := postWebhook(h, body, sign(body, "anything"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, proc.received)
}

func TestWebhook_MalformedBody(t *testing.T) {
	proc := &fakeProcessor{}
	h := NewPaymentWebhookHandler(proc, testSecret)

	body := []byte(`{"id":`)
	w := postWebhook(h, body, sign(body, testSecret))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Valid JSON but missing the required fields.
	body = []byte(`{"id":"inv-1"}`)
	w = postWebhook(h, body, sign(body, testSecret))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhook_ProcessorFailureIs500(t *testing.T) {
	proc := &fakeProcessor{err: errors.New("db down")}
	h := NewPaymentWebhookHandler(proc, testSecret)

	body := []byte(`{"id":"inv-1","external_id":"RENT_g1_1","status":"PAID","amount":10000}`)
	w := postWebhook(h, body, sign(body, testSecret))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestVerifySignature_ExactBytes(t *testing.T) {
	// Semantically equal JSON with different byte content must not verify:
	// the MAC covers raw bytes, not parsed structure.
	body := []byte(`{"a": 1}`)
	reserialized := []byte(`{"a":1}`)
	signature := sign(body, testSecret)

	assert.NoError(t, VerifySignature(body, signature, testSecret))
	assert.ErrorIs(t, VerifySignature(reserialized, signature, testSecret), domain.ErrInvalidSignature)
	assert.ErrorIs(t, VerifySignature(body, "zz-not-hex", testSecret), domain.ErrInvalidSignature)
}
