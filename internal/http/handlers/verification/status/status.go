// Package status implements the HTTP handler returning the authenticated
// user's verification record: aggregate status, documents and review notes.
package status

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
	"github.com/edilconnect/platform/internal/models"
)

// Service describes the verification lookup.
type Service interface {
	Get(ctx context.Context, userUID string) (*models.Verification, error)
}

// Handler handles verification status HTTP requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New creates a status Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Get own verification state
// @Tags Verification
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Verification record"
// @Failure 401 {object} response.ErrorResponse "Not authenticated"
// @Router /verification [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.verification.status"

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

	rec, err := h.service.Get(r.Context(), userUID)
	if err != nil {
		if errors.Is(err, errs.ErrUserNotFound) {
			log.Error("user not found")
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
