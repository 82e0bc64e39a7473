// Package remove implements the HTTP handler deleting a project document.
// Allowed for the project owner and the original uploader.
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

// Service describes the document removal business logic.
type Service interface {
	RemoveDocument(ctx context.Context, documentID, userUID string) error
}

// Handler handles document removal HTTP requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New creates a remove Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Delete a project document
// @Tags Documents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Document id"
// @Success 200 {object} response.Response "Document deleted"
// @Failure 403 {object} response.ErrorResponse "No access"
// @Failure 404 {object} response.ErrorResponse "Document not found"
// @Router /documents/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.document.remove"

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
	documentID := chi.URLParam(r, "id")

	if err := h.service.RemoveDocument(r.Context(), documentID, userUID); err != nil {
		switch {
		case errors.Is(err, errs.ErrDocumentNotFound), errors.Is(err, errs.ErrProjectNotFound):
			log.Error("document not found", slog.String("document_id", documentID))
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("document not found"))
		case errors.Is(err, errs.ErrForbidden):
			log.Error("access denied", slog.String("document_id", documentID))
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, response.Error("access denied"))
		default:
			log.Error("document deletion failed", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
		}
		return
	}

	log.Info("document deleted", slog.String("document_id", documentID))
	render.JSON(w, r, response.OK())
}
