// Package create implements the HTTP handler for creating a construction
// project owned by the authenticated user.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/edilconnect/platform/internal/http/middlewarectx"
	"github.com/edilconnect/platform/internal/http/response"
	"github.com/edilconnect/platform/internal/lib/sl"
	"github.com/edilconnect/platform/internal/models"
)

// Request carries the new project's fields.
type Request struct {
	Name          string     `json:"name" validate:"required,min=2,max=200"`
	Description   string     `json:"description,omitempty"`
	Status        string     `json:"status,omitempty"`
	Location      string     `json:"location,omitempty"`
	EstimatedCost int64      `json:"estimated_cost,omitempty" validate:"omitempty,min=0"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
}

// Service describes the project creation business logic.
type Service interface {
	Create(ctx context.Context, p models.Project, ownerUID string) (string, error)
}

// Handler handles project creation HTTP requests.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New creates a create Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Create a project
// @Tags Projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Project data"
// @Success 201 {object} map[string]any "Project created"
// @Failure 400 {object} response.ErrorResponse "Invalid JSON"
// @Failure 422 {object} response.ErrorResponse "Validation failed"
// @Router /projects [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.project.create"

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

	id, err := h.service.Create(r.Context(), models.Project{
		Name:          req.Name,
		Description:   req.Description,
		Status:        req.Status,
		Location:      req.Location,
		EstimatedCost: req.EstimatedCost,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
	}, userUID)
	if err != nil {
		log.Error("project creation failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("project created", slog.String("project_id", id))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{"id": id}))
}
