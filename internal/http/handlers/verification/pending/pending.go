// Package pending implements the admin HTTP handler listing verification
// requests still awaiting review or previously rejected.
package pending

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/edilconnect/platform/internal/http/response"
	"github.com/edilconnect/platform/internal/lib/sl"
	"github.com/edilconnect/platform/internal/models"
)

// Service describes the review queue lookup.
type Service interface {
	ListPending(ctx context.Context) ([]models.VerificationSummary, error)
}

// Handler handles review queue HTTP requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New creates a pending Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary List verification requests awaiting review
// @Tags Verification
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Review queue"
// @Failure 403 {object} response.ErrorResponse "Admin access required"
// @Router /admin/verification [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.verification.pending"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	list, err := h.service.ListPending(r.Context())
	if err != nil {
		log.Error("failed to list verification requests", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("verification requests listed", slog.Int("count", len(list)))
	render.JSON(w, r, response.OKWithData(list))
}
