// Package list implements the HTTP handler returning every project the
// authenticated user owns or collaborates on.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/edilconnect/platform/internal/http/middlewarectx"
	"github.com/edilconnect/platform/internal/http/response"
	"github.com/edilconnect/platform/internal/lib/sl"
	"github.com/edilconnect/platform/internal/models"
)

// Service describes the project listing business logic.
type Service interface {
	List(ctx context.Context, userUID string) ([]*models.Project, error)
}

// Handler handles project listing HTTP requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New creates a list Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary List own projects
// @Tags Projects
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Projects"
// @Failure 401 {object} response.ErrorResponse "Not authenticated"
// @Router /projects [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.project.list"

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

	list, err := h.service.List(r.Context(), userUID)
	if err != nil {
		log.Error("failed to list projects", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("projects listed", slog.Int("count", len(list)))
	render.JSON(w, r, response.OKWithData(list))
}
