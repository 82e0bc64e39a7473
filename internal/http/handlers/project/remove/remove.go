// Package remove implements the HTTP handler deleting a project together
// with its tasks and documents. Owner only.
package remove

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
)

// Service describes the project deletion business logic.
type Service interface {
	Delete(ctx context.Context, id, userUID string) error
}

// Handler handles project deletion HTTP requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New creates a remove Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Delete a project
// @Tags Projects
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project id"
// @Success 200 {object} response.Response "Project deleted"
// @Failure 403 {object} response.ErrorResponse "Not the owner"
// @Failure 404 {object} response.ErrorResponse "Project not found"
// @Router /projects/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.project.remove"

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

	if err := h.service.Delete(r.Context(), projectID, userUID); err != nil {
		switch {
		case errors.Is(err, errs.ErrProjectNotFound):
			log.Error("project not found", slog.String("project_id", projectID))
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("project not found"))
		case errors.Is(err, errs.ErrForbidden):
			log.Error("access denied", slog.String("project_id", projectID))
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, response.Error("only the owner can delete a project"))
		default:
			log.Error("project deletion failed", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
		}
		return
	}

	log.Info("project deleted", slog.String("project_id", projectID))
	render.JSON(w, r, response.OK())
}
