// Package admindocremove implements the admin HTTP handler that deletes a
// credential document of an arbitrary user. Losing a document demotes an
// approved verification back to pending.
package admindocremove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/edilconnect/platform/internal/errs"
	"github.com/edilconnect/platform/internal/http/response"
	"github.com/edilconnect/platform/internal/lib/sl"
)

// Service describes the document removal business logic.
type Service interface {
	RemoveDocument(ctx context.Context, userUID, docType string) error
}

// Handler handles admin document removal HTTP requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New creates an admindocremove Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Remove a user's verification document
// @Tags Verification
// @Produce json
// @Security BearerAuth
// @Param uid path string true "User uid"
// @Param type path string true "Document type"
// @Success 200 {object} response.Response "Document removed"
// @Failure 400 {object} response.ErrorResponse "Unknown document type"
// @Failure 403 {object} response.ErrorResponse "Admin access required"
// @Failure 404 {object} response.ErrorResponse "Document not uploaded"
// @Router /admin/verification/{uid}/documents/{type} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.verification.admindocremove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID := chi.URLParam(r, "uid")
	docType := chi.URLParam(r, "type")

	if err := h.service.RemoveDocument(r.Context(), userUID, docType); err != nil {
		switch {
		case errors.Is(err, errs.ErrUnknownDocumentType):
			log.Error("unknown document type", slog.String("type", docType))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("unknown document type"))
		case errors.Is(err, errs.ErrDocumentNotFound):
			log.Error("document not uploaded")
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("document not uploaded"))
		default:
			log.Error("document removal failed", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
		}
		return
	}

	log.Info("document removed by admin",
		slog.String("uid", userUID), slog.String("type", docType))
	render.JSON(w, r, response.OK())
}
