// Package login implements the HTTP handler for authentication requests.
//
// It decodes and validates the credentials, delegates the login to the
// auth service and replies with the token pair and the user's role.
package login

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

// Request carries the login credentials.
type Request struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// Service describes the login business logic.
type Service interface {
	Login(ctx context.Context, email, password string) (*models.User, *models.SessionToken, error)
}

// Handler handles login HTTP requests.
type Handler struct {
	log         *slog.Logger
	authService Service
	validate    *validator.Validate
}

// New creates a login Handler.
func New(log *slog.Logger, authService Service) *Handler {
	return &Handler{
		log:         log,
		authService: authService,
		validate:    validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Authenticate a user
// @Description Checks the credentials and the email-verification gate; returns a JWT pair.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "User credentials"
// @Success 200 {object} map[string]any "Authenticated"
// @Failure 400 {object} response.ErrorResponse "Invalid JSON"
// @Failure 422 {object} response.ErrorResponse "Validation failed"
// @Failure 401 {object} response.ErrorResponse "Invalid credentials"
// @Failure 403 {object} response.ErrorResponse "Email not confirmed"
// @Router /auth/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

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

	user, pair, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrInvalidCredentials):
			log.Error("invalid credentials")
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error("invalid credentials"))
		case errors.Is(err, errs.ErrAccountNotVerified):
			log.Error("account not verified")
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, response.Error("email address not confirmed"))
		default:
			log.Error("login failed", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
		}
		return
	}

	log.Info("login success", slog.String("uid", user.UID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"token":         pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"uid":           user.UID,
		"role":          user.Role,
		"is_admin":      user.IsAdmin,
	}))
}
