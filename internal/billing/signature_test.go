package billing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edilconnect/platform/internal/billing"
)

func TestVerifySignature(t *testing.T) {
	secret := "whsec-test"
	body := []byte(`{"type":"checkout.session.completed"}`)

	signature := billing.Sign(secret, body)

	tests := []struct {
		name      string
		secret    string
		body      []byte
		signature string
		want      bool
	}{
		{
			name:      "valid signature",
			secret:    secret,
			body:      body,
			signature: signature,
			want:      true,
		},
		{
			name:      "tampered body",
			secret:    secret,
			body:      []byte(`{"type":"checkout.session.completed","extra":1}`),
			signature: signature,
			want:      false,
		},
		{
			name:      "wrong secret",
			secret:    "another-secret",
			body:      body,
			signature: signature,
			want:      false,
		},
		{
			name:      "empty signature",
			secret:    secret,
			body:      body,
			signature: "",
			want:      false,
		},
		{
			name:      "garbage signature",
			secret:    secret,
			body:      body,
			signature: "not-a-real-signature",
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := billing.VerifySignature(tt.secret, tt.body, tt.signature)
			assert.Equal(t, tt.want, got)
		})
	}
}
