package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// SignatureHeader is the webhook header carrying the body signature.
const SignatureHeader = "X-Billing-Signature"

// Sign computes the base64 HMAC-SHA256 of body under secret. Exposed so
// tests can forge valid deliveries.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a webhook delivery against the shared secret using
// a constant-time comparison. It must be called on the raw body, before any
// JSON parsing.
func VerifySignature(secret string, body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	expected := Sign(secret, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}
