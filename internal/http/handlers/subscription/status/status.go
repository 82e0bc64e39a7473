// Package status implements the HTTP handler reporting the authenticated
// user's subscription state, served from a short-lived cache.
package status

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

// Service describes the subscription status lookup.
type Service interface {
	Status(ctx context.Context, userUID string) (*models.SubscriptionStatus, error)
}

// Handler handles subscription status HTTP requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New creates a status Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Get own subscription status
// @Tags Subscription
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Subscription state"
// @Failure 401 {object} response.ErrorResponse "Not authenticated"
// @Router /subscription/status [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.status"

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

	status, err := h.service.Status(r.Context(), userUID)
	if err != nil {
		log.Error("failed to load subscription status", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	render.JSON(w, r, response.OKWithData(status))
}
