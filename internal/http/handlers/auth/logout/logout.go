// Package logout implements the HTTP handler for session termination. It
// revokes the session holding the presented access token.
package logout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/edilconnect/platform/internal/http/middlewarectx"
	"github.com/edilconnect/platform/internal/http/response"
	"github.com/edilconnect/platform/internal/lib/sl"
)

// Service describes the logout business logic.
type Service interface {
	Logout(ctx context.Context, userUID, accessToken string) error
}

// Handler handles logout HTTP requests.
type Handler struct {
	log         *slog.Logger
	authService Service
}

// New creates a logout Handler.
func New(log *slog.Logger, authService Service) *Handler {
	return &Handler{log: log, authService: authService}
}

// ServeHTTP godoc
// @Summary Terminate the current session
// @Description Revokes the presented access token. Logging out twice is not an error.
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response "Logged out"
// @Failure 401 {object} response.ErrorResponse "Not authenticated"
// @Router /auth/logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	token, tokOK := r.Context().Value(middlewarectx.AccessToken).(string)
	if !ok || !tokOK {
		log.Error("user identification missing")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("user identification missing"))
		return
	}

	if err := h.authService.Logout(r.Context(), userUID, token); err != nil {
		log.Error("logout failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("logged out", slog.String("uid", userUID))
	render.JSON(w, r, response.OK())
}
