// Package list implements the HTTP handler listing the documents attached
// to a project the user may read.
package list

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

// Service describes the document listing business logic.
type Service interface {
	ListDocuments(ctx context.Context, projectID, userUID string) ([]*models.Document, error)
}

// Handler handles document listing HTTP requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New creates a list Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary List project documents
// @Tags Documents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project id"
// @Success 200 {object} map[string]any "Documents"
// @Failure 403 {object} response.ErrorResponse "No access"
// @Failure 404 {object} response.ErrorResponse "Project not found"
// @Router /projects/{id}/documents [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.document.list"

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

	docs, err := h.service.ListDocuments(r.Context(), projectID, userUID)
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
			log.Error("failed to list documents", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
		}
		return
	}

	render.JSON(w, r, response.OKWithData(docs))
}
