// Package addcollaborator implements the HTTP handler granting another
// user read and task access to a project. Owner only.
package addcollaborator

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

// Request names the user to grant access to.
type Request struct {
	UserUID string `json:"user_uid" validate:"required,uuid"`
}

// Service describes the collaborator management business logic.
type Service interface {
	AddCollaborator(ctx context.Context, projectID, userUID, collaboratorUID string) error
}

// Handler handles collaborator HTTP requests.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New creates an addcollaborator Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Add a project collaborator
// @Tags Projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project id"
// @Param request body Request true "Collaborator uid"
// @Success 200 {object} response.Response "Collaborator added"
// @Failure 403 {object} response.ErrorResponse "Not the owner"
// @Failure 404 {object} response.ErrorResponse "Project not found"
// @Failure 409 {object} response.ErrorResponse "Already a collaborator"
// @Router /projects/{id}/collaborators [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.project.addcollaborator"

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

	if err := h.service.AddCollaborator(r.Context(), projectID, userUID, req.UserUID); err != nil {
		switch {
		case errors.Is(err, errs.ErrProjectNotFound):
			log.Error("project not found", slog.String("project_id", projectID))
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("project not found"))
		case errors.Is(err, errs.ErrForbidden):
			log.Error("access denied", slog.String("project_id", projectID))
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, response.Error("only the owner can add collaborators"))
		case errors.Is(err, errs.ErrAlreadyCollaborator):
			log.Error("already a collaborator")
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, response.Error("user is already a collaborator"))
		default:
			log.Error("failed to add collaborator", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
		}
		return
	}

	log.Info("collaborator added",
		slog.String("project_id", projectID), slog.String("collaborator", req.UserUID))
	render.JSON(w, r, response.OK())
}
