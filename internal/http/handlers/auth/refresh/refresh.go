// Package refresh implements the HTTP handler for the token exchange. Each
// refresh token is single use: the stored pair is consumed and replaced
// atomically, so a replayed token gets 401.
package refresh

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
	"github.com/edilconnect/platform/internal/models"
)

// Request carries the refresh token to exchange.
type Request struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Service describes the refresh business logic.
type Service interface {
	Refresh(ctx context.Context, refreshToken string) (*models.SessionToken, error)
}

// Handler handles token refresh HTTP requests.
type Handler struct {
	log         *slog.Logger
	authService Service
	validate    *validator.Validate
}

// New creates a refresh Handler.
func New(log *slog.Logger, authService Service) *Handler {
	return &Handler{
		log:         log,
		authService: authService,
		validate:    validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Exchange a refresh token
// @Description Consumes the refresh token and returns a new pair. A token can be used at most once.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Refresh token"
// @Success 200 {object} map[string]any "New token pair"
// @Failure 400 {object} response.ErrorResponse "Invalid JSON"
// @Failure 401 {object} response.ErrorResponse "Invalid, expired or already used token"
// @Router /auth/refresh [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.refresh"

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

	pair, err := h.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, errs.ErrInvalidRefreshToken) {
			log.Error("invalid refresh token")
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error("invalid or expired refresh token"))
			return
		}
		log.Error("refresh failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("tokens rotated", slog.String("uid", pair.UserUID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"token":         pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	}))
}
