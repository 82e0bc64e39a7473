// Package webhook implements the HTTP endpoint receiving billing-provider
// events. The raw body signature is checked before any parsing; a bad or
// missing signature is 401 and leaves no trace in the subscription state.
package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/edilconnect/platform/internal/billing"
	"github.com/edilconnect/platform/internal/lib/sl"
)

// Service describes the webhook processing business logic.
type Service interface {
	HandleWebhook(ctx context.Context, event billing.Event) error
}

// Handler handles billing webhook HTTP requests.
type Handler struct {
	log           *slog.Logger
	service       Service
	webhookSecret string
}

// New creates a webhook Handler verifying signatures with secret.
func New(log *slog.Logger, service Service, secret string) *Handler {
	return &Handler{
		log:           log,
		service:       service,
		webhookSecret: secret,
	}
}

// ServeHTTP godoc
// @Summary Billing provider webhook
// @Description Receives signed billing events. Redelivered events settle into the same state.
// @Tags Subscription
// @Accept json
// @Success 200 "Event processed"
// @Failure 400 "Malformed payload"
// @Failure 401 "Invalid or missing signature"
// @Router /billing/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.webhook"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer func() {
		_ = r.Body.Close()
	}()

	signature := r.Header.Get(billing.SignatureHeader)
	if signature == "" || !billing.VerifySignature(h.webhookSecret, body, signature) {
		log.Error("invalid or missing webhook signature")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var event billing.Event
	if err := json.Unmarshal(body, &event); err != nil {
		log.Error("failed to unmarshal webhook payload", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if err := h.service.HandleWebhook(r.Context(), event); err != nil {
		log.Error("failed to process webhook event", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	log.Info("webhook processed", slog.String("event", event.Type))
	w.WriteHeader(http.StatusOK)
}
