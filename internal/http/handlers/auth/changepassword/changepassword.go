// Package changepassword implements the HTTP handler that rotates the
// account password after checking the current one.
package changepassword

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/edilconnect/platform/internal/errs"
	"github.com/edilconnect/platform/internal/http/middlewarectx"
	"github.com/edilconnect/platform/internal/http/response"
	"github.com/edilconnect/platform/internal/lib/sl"
)

// Request carries the current and new passwords.
type Request struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// Service describes the password-change business logic.
type Service interface {
	ChangePassword(ctx context.Context, userUID, currentPassword, newPassword string) error
}

// Handler handles password-change HTTP requests.
type Handler struct {
	log         *slog.Logger
	authService Service
	validate    *validator.Validate
}

// New creates a changepassword Handler.
func New(log *slog.Logger, authService Service) *Handler {
	return &Handler{
		log:         log,
		authService: authService,
		validate:    validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Change the account password
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Current and new password"
// @Success 200 {object} response.Response "Password changed"
// @Failure 401 {object} response.ErrorResponse "Wrong current password"
// @Failure 422 {object} response.ErrorResponse "Validation failed"
// @Router /users/me/password [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.changepassword"

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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	if err := h.authService.ChangePassword(r.Context(), userUID, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, errs.ErrInvalidCredentials) {
			log.Error("wrong current password")
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error("wrong current password"))
			return
		}
		log.Error("password change failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("password changed", slog.String("uid", userUID))
	render.JSON(w, r, response.OK())
}
