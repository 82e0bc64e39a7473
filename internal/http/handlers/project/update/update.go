// Package update implements the HTTP handler replacing a project's
// editable fields. Owner only.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/edilconnect/platform/internal/errs"
	"github.com/edilconnect/platform/internal/http/middlewarectx"
	"github.com/edilconnect/platform/internal/http/response"
	"github.com/edilconnect/platform/internal/lib/sl"
	"github.com/edilconnect/platform/internal/models"
)

// Request carries the replacement project fields.
type Request struct {
	Name          string     `json:"name" validate:"required,min=2,max=200"`
	Description   string     `json:"description,omitempty"`
	Status        string     `json:"status,omitempty"`
	Location      string     `json:"location,omitempty"`
	EstimatedCost int64      `json:"estimated_cost,omitempty" validate:"omitempty,min=0"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
}

// Service describes the project update business logic.
type Service interface {
	Update(ctx context.Context, p models.Project, userUID string) error
}

// Handler handles project update HTTP requests.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New creates an update Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Update a project
// @Tags Projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project id"
// @Param request body Request true "Replacement fields"
// @Success 200 {object} response.Response "Project updated"
// @Failure 403 {object} response.ErrorResponse "Not the owner"
// @Failure 404 {object} response.ErrorResponse "Project not found"
// @Router /projects/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.project.update"

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
	projectID := chi.URLParam(r, "id")

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

	err := h.service.Update(r.Context(), models.Project{
		ID:            projectID,
		Name:          req.Name,
		Description:   req.Description,
		Status:        req.Status,
		Location:      req.Location,
		EstimatedCost: req.EstimatedCost,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
	}, userUID)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrProjectNotFound):
			log.Error("project not found", slog.String("project_id", projectID))
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("project not found"))
		case errors.Is(err, errs.ErrForbidden):
			log.Error("access denied", slog.String("project_id", projectID))
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, response.Error("only the owner can update a project"))
		default:
			log.Error("project update failed", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
		}
		return
	}

	log.Info("project updated", slog.String("project_id", projectID))
	render.JSON(w, r, response.OK())
}
