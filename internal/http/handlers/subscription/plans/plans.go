// Package plans implements the HTTP handler returning the fixed plan
// catalogue.
package plans

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/edilconnect/platform/internal/http/response"
	"github.com/edilconnect/platform/internal/models"
)

// Service describes the plan catalogue lookup.
type Service interface {
	ListPlans() []models.Plan
}

// Handler handles plan listing HTTP requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New creates a plans Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary List subscription plans
// @Tags Subscription
// @Produce json
// @Success 200 {object} map[string]any "Available plans"
// @Router /subscription/plans [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.plans"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	plans := h.service.ListPlans()
	log.Info("plans listed", slog.Int("count", len(plans)))
	render.JSON(w, r, response.OKWithData(plans))
}
