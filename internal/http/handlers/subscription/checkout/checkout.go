// Package checkout implements the HTTP handler that opens a provider
// checkout session for the chosen plan. Activation happens later, through
// the provider webhook.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/edilconnect/platform/internal/billing"
	"github.com/edilconnect/platform/internal/errs"
	"github.com/edilconnect/platform/internal/http/middlewarectx"
	"github.com/edilconnect/platform/internal/http/response"
	"github.com/edilconnect/platform/internal/lib/sl"
)

// Request names the plan to subscribe to.
type Request struct {
	Plan string `json:"plan" validate:"required,oneof=monthly annual"`
}

// Service describes the checkout business logic.
type Service interface {
	StartCheckout(ctx context.Context, userUID, planName string) (*billing.CheckoutSession, error)
}

// Handler handles checkout HTTP requests.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New creates a checkout Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Start a subscription checkout
// @Description Creates a provider checkout session and returns its redirect URL.
// @Tags Subscription
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Plan choice"
// @Success 200 {object} map[string]any "Checkout session"
// @Failure 400 {object} response.ErrorResponse "Unknown plan"
// @Failure 502 {object} response.ErrorResponse "Billing provider unavailable"
// @Router /subscription/checkout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.checkout"

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

	session, err := h.service.StartCheckout(r.Context(), userUID, req.Plan)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrUnknownPlan):
			log.Error("unknown plan", slog.String("plan", req.Plan))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("unknown plan"))
		case errors.Is(err, errs.ErrExternalService):
			log.Error("billing provider unavailable", sl.Err(err))
			render.Status(r, http.StatusBadGateway)
			render.JSON(w, r, response.Error("billing provider unavailable"))
		default:
			log.Error("checkout failed", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
		}
		return
	}

	log.Info("checkout session created",
		slog.String("uid", userUID), slog.String("session_id", session.ID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"session_id":   session.ID,
		"checkout_url": session.URL,
	}))
}
