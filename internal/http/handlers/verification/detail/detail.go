// Package detail implements the admin HTTP handler returning the full
// verification record of an arbitrary user: aggregate status, documents and
// review notes.
package detail

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/edilconnect/platform/internal/errs"
	"github.com/edilconnect/platform/internal/http/response"
	"github.com/edilconnect/platform/internal/lib/sl"
	"github.com/edilconnect/platform/internal/models"
)

// Service describes the verification lookup.
type Service interface {
	Get(ctx context.Context, userUID string) (*models.Verification, error)
}

// Handler handles admin verification detail HTTP requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New creates a detail Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Get a user's verification state
// @Tags Verification
// @Produce json
// @Security BearerAuth
// @Param uid path string true "User uid"
// @Success 200 {object} map[string]any "Verification record"
// @Failure 403 {object} response.ErrorResponse "Admin access required"
// @Failure 404 {object} response.ErrorResponse "User not found"
// @Router /admin/verification/{uid} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.verification.detail"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID := chi.URLParam(r, "uid")

	rec, err := h.service.Get(r.Context(), userUID)
	if err != nil {
		if errors.Is(err, errs.ErrUserNotFound) {
			log.Error("user not found", slog.String("uid", userUID))
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		log.Error("failed to load verification", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	render.JSON(w, r, response.OKWithData(rec))
}
