package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/hellbot-id/hellbot/internal/domain"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw request body the
// provider computed with the shared secret.
const SignatureHeader = "X-Callback-Signature"

// VerifySignature checks the provider's MAC over the exact raw body bytes.
// Verification never runs against re-serialized JSON: key order, whitespace
// and number formatting would change the bytes and break a valid signature.
// An empty secret fails closed.
func VerifySignature(rawBody []byte, signature, secret string) error {
	if secret == "" || signature == "" {
		return domain.ErrInvalidSignature
	}
	provided, err := hex.DecodeString(signature)
	if err != nil {
		return domain.ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	if !hmac.Equal(provided, mac.Sum(nil)) {
		return domain.ErrInvalidSignature
	}
	return nil
}
