// Package profile implements the HTTP handler returning the authenticated
// user's own account data without credential material.
package profile

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

// Service describes the profile lookup.
type Service interface {
	Profile(ctx context.Context, userUID string) (*models.User, error)
}

// Handler handles profile HTTP requests.
type Handler struct {
	log         *slog.Logger
	authService Service
}

// New creates a profile Handler.
func New(log *slog.Logger, authService Service) *Handler {
	return &Handler{log: log, authService: authService}
}

// ServeHTTP godoc
// @Summary Get own profile
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Profile data"
// @Failure 401 {object} response.ErrorResponse "Not authenticated"
// @Router /users/me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.profile"

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

	user, err := h.authService.Profile(r.Context(), userUID)
	if err != nil {
		if errors.Is(err, errs.ErrUserNotFound) {
			log.Error("user not found")
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		log.Error("failed to load profile", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	render.JSON(w, r, response.OKWithData(user.Profile()))
}
