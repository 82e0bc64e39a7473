// Package cancel implements the HTTP handler ending the authenticated
// user's subscription at the provider and locally.
package cancel

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/edilconnect/platform/internal/errs"
	"github.com/edilconnect/platform/internal/http/middlewarectx"
	"github.com/edilconnect/platform/internal/http/response"
	"github.com/edilconnect/platform/internal/lib/sl"
)

// Service describes the cancellation business logic.
type Service interface {
	Cancel(ctx context.Context, userUID string) error
}

// Handler handles subscription cancellation HTTP requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New creates a cancel Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Cancel own subscription
// @Tags Subscription
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response "Subscription cancelled"
// @Failure 409 {object} response.ErrorResponse "No active subscription"
// @Failure 502 {object} response.ErrorResponse "Billing provider unavailable"
// @Router /subscription [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.cancel"

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

	if err := h.service.Cancel(r.Context(), userUID); err != nil {
		switch {
		case errors.Is(err, errs.ErrNoActiveSubscription):
			log.Error("no active subscription")
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, response.Error("no active subscription"))
		case errors.Is(err, errs.ErrExternalService):
			log.Error("billing provider unavailable", sl.Err(err))
			render.Status(r, http.StatusBadGateway)
			render.JSON(w, r, response.Error("billing provider unavailable"))
		default:
			log.Error("cancellation failed", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
		}
		return
	}

	log.Info("subscription cancelled", slog.String("uid", userUID))
	render.JSON(w, r, response.OK())
}
