// Package reject implements the admin HTTP handler that rejects a user's
// verification with an explanatory note.
package reject

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/edilconnect/platform/internal/errs"
	"github.com/edilconnect/platform/internal/http/middlewarectx"
	"github.com/edilconnect/platform/internal/http/response"
	"github.com/edilconnect/platform/internal/lib/sl"
)

// Request carries the rejection reason shown to the user.
type Request struct {
	Reason string `json:"reason" validate:"required,min=3"`
}

// Service describes the rejection business logic.
type Service interface {
	Reject(ctx context.Context, userUID, adminUID, reason string) error
}

// Handler handles verification rejection HTTP requests.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New creates a reject Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Reject a verification request
// @Tags Verification
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param uid path string true "User uid"
// @Param request body Request true "Rejection reason"
// @Success 200 {object} response.Response "Rejected"
// @Failure 403 {object} response.ErrorResponse "Admin access required"
// @Failure 404 {object} response.ErrorResponse "User not found"
// @Router /admin/verification/{uid}/reject [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.verification.reject"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	adminUID, _ := r.Context().Value(middlewarectx.UserUID).(string)
	userUID := chi.URLParam(r, "uid")

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

	if err := h.service.Reject(r.Context(), userUID, adminUID, req.Reason); err != nil {
		if errors.Is(err, errs.ErrUserNotFound) {
			log.Error("user not found")
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		log.Error("rejection failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("verification rejected", slog.String("uid", userUID))
	render.JSON(w, r, response.OK())
}
