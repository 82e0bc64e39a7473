package webhook

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/edilconnect/platform/internal/billing"
)

type WebhookServiceMock struct {
	mock.Mock
}

func (m *WebhookServiceMock) HandleWebhook(ctx context.Context, event billing.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestWebhookHandler_ServeHTTP(t *testing.T) {
	const secret = "whsec-test"
	validBody := []byte(`{"type":"checkout.session.completed","object":{"id":"evt_1","metadata":{"user_uid":"uid-1","plan":"monthly"}}}`)

	tests := []struct {
		name           string
		body           []byte
		signature      string
		setupMocks     func(s *WebhookServiceMock)
		wantStatusCode int
	}{
		{
			name:      "valid delivery",
			body:      validBody,
			signature: billing.Sign(secret, validBody),
			setupMocks: func(s *WebhookServiceMock) {
				s.On("HandleWebhook", mock.Anything, mock.MatchedBy(func(e billing.Event) bool {
					return e.Type == billing.EventCheckoutCompleted &&
						e.Object.Metadata["user_uid"] == "uid-1"
				})).Return(nil).Once()
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "missing signature",
			body:           validBody,
			signature:      "",
			setupMocks:     func(_ *WebhookServiceMock) {},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "forged signature",
			body:           validBody,
			signature:      billing.Sign("wrong-secret", validBody),
			setupMocks:     func(_ *WebhookServiceMock) {},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "tampered body",
			body:           []byte(`{"type":"checkout.session.completed","object":{"metadata":{"user_uid":"attacker"}}}`),
			signature:      billing.Sign(secret, validBody),
			setupMocks:     func(_ *WebhookServiceMock) {},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "signed but malformed payload",
			body:           []byte(`{not json`),
			signature:      billing.Sign(secret, []byte(`{not json`)),
			setupMocks:     func(_ *WebhookServiceMock) {},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:      "processing failure asks the provider to retry",
			body:      validBody,
			signature: billing.Sign(secret, validBody),
			setupMocks: func(s *WebhookServiceMock) {
				s.On("HandleWebhook", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(WebhookServiceMock)
			tt.setupMocks(serviceMock)
			handler := New(newNoopLogger(), serviceMock, secret)

			req := httptest.NewRequest(http.MethodPost, "/billing/webhook", bytes.NewReader(tt.body))
			if tt.signature != "" {
				req.Header.Set(billing.SignatureHeader, tt.signature)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			serviceMock.AssertExpectations(t)
		})
	}
}
