// Package verifyemail implements the HTTP handler that consumes the
// emailed confirmation token and unlocks login for the account.
package verifyemail

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/edilconnect/platform/internal/errs"
	"github.com/edilconnect/platform/internal/http/response"
	"github.com/edilconnect/platform/internal/lib/sl"
)

// Service describes the email-confirmation business logic.
type Service interface {
	VerifyEmail(ctx context.Context, token string) error
}

// Handler handles email confirmation HTTP requests.
type Handler struct {
	log         *slog.Logger
	authService Service
}

// New creates a verifyemail Handler.
func New(log *slog.Logger, authService Service) *Handler {
	return &Handler{log: log, authService: authService}
}

// ServeHTTP godoc
// @Summary Confirm an email address
// @Description Consumes the one-time token from the confirmation link.
// @Tags Auth
// @Produce json
// @Param token query string true "Confirmation token"
// @Success 200 {object} response.Response "Email confirmed"
// @Failure 400 {object} response.ErrorResponse "Missing, unknown or expired token"
// @Router /auth/verify-email [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.verifyemail"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	token := r.URL.Query().Get("token")
	if token == "" {
		log.Error("missing token")
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing token"))
		return
	}

	if err := h.authService.VerifyEmail(r.Context(), token); err != nil {
		if errors.Is(err, errs.ErrVerificationToken) {
			log.Error("unknown or expired token")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("unknown or expired token"))
			return
		}
		log.Error("verification failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("email verified")
	render.JSON(w, r, response.OK())
}
