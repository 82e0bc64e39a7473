// Package payments implements the HTTP handler listing the authenticated
// user's payment history.
package payments

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/edilconnect/platform/internal/http/middlewarectx"
	"github.com/edilconnect/platform/internal/http/response"
	"github.com/edilconnect/platform/internal/lib/sl"
	"github.com/edilconnect/platform/internal/models"
)

// Service describes the payment history lookup.
type Service interface {
	Payments(ctx context.Context, userUID string) ([]models.Payment, error)
}

// Handler handles payment history HTTP requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New creates a payments Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary List own payments
// @Tags Subscription
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Payment history"
// @Failure 401 {object} response.ErrorResponse "Not authenticated"
// @Router /subscription/payments [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.payments"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user identification missing")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("user identification missing"))
		return
	}

	list, err := h.service.Payments(r.Context(), userUID)
	if err != nil {
		log.Error("failed to list payments", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	render.JSON(w, r, response.OKWithData(list))
}
