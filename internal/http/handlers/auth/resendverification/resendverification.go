// Package resendverification implements the HTTP handler that issues a
// fresh email-confirmation token and queues the email again.
package resendverification

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
	"github.com/edilconnect/platform/internal/http/response"
	"github.com/edilconnect/platform/internal/lib/sl"
)

// Request carries the address to resend the confirmation to.
type Request struct {
	Email string `json:"email" validate:"required,email"`
}

// Service describes the resend business logic.
type Service interface {
	ResendVerification(ctx context.Context, email string) error
}

// Handler handles resend-confirmation HTTP requests.
type Handler struct {
	log         *slog.Logger
	authService Service
	validate    *validator.Validate
}

// New creates a resendverification Handler.
func New(log *slog.Logger, authService Service) *Handler {
	return &Handler{
		log:         log,
		authService: authService,
		validate:    validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Resend the confirmation email
// @Description Issues a fresh 24h token for an unverified account. The reply does not reveal whether the address exists.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Email address"
// @Success 200 {object} response.Response "Accepted"
// @Failure 400 {object} response.ErrorResponse "Invalid JSON"
// @Router /auth/resend-verification [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.resendverification"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	err := h.authService.ResendVerification(r.Context(), req.Email)
	if err != nil && !errors.Is(err, errs.ErrUserNotFound) {
		log.Error("resend failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	// unknown and already-verified addresses get the same answer
	log.Info("confirmation email requested")
	render.JSON(w, r, response.OK())
}
