// Package read implements the HTTP handler returning one project. Access
// is limited to the owner and collaborators; an existing project the user
// cannot read answers 403, distinct from 404.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/edilconnect/platform/internal/errs"
	"github.com/edilconnect/platform/internal/http/middlewarectx"
	"github.com/edilconnect/platform/internal/http/response"
	"github.com/edilconnect/platform/internal/lib/sl"
	"github.com/edilconnect/platform/internal/models"
)

// Service describes the project read business logic.
type Service interface {
	Get(ctx context.Context, id, userUID string) (*models.Project, error)
}

// Handler handles project read HTTP requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New creates a read Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Get a project
// @Tags Projects
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project id"
// @Success 200 {object} map[string]any "Project"
// @Failure 403 {object} response.ErrorResponse "No access"
// @Failure 404 {object} response.ErrorResponse "Project not found"
// @Router /projects/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.project.read"

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

	project, err := h.service.Get(r.Context(), projectID, userUID)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrProjectNotFound):
			log.Error("project not found", slog.String("project_id", projectID))
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("project not found"))
		case errors.Is(err, errs.ErrForbidden):
			log.Error("access denied", slog.String("project_id", projectID))
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, response.Error("access denied"))
		default:
			log.Error("failed to load project", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
		}
		return
	}

	render.JSON(w, r, response.OKWithData(project))
}
