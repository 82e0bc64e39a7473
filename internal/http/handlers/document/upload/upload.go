// Package upload implements the HTTP handler attaching a file to a
// project. The metadata record is written before the binary so a storage
// failure never leaves an unreachable object behind.
package upload

import (
	"context"
	"errors"
	"io"
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

// Service describes the document upload business logic.
type Service interface {
	UploadDocument(ctx context.Context, d models.Document, r io.Reader, userUID string) (string, error)
}

// Handler handles project document upload HTTP requests.
type Handler struct {
	log          *slog.Logger
	service      Service
	maxSizeBytes int64
	allowedMime  map[string]struct{}
}

// New creates an upload Handler enforcing the given size and MIME policy.
func New(log *slog.Logger, service Service, maxSizeBytes int64, allowedMimeTypes []string) *Handler {
	allowed := make(map[string]struct{}, len(allowedMimeTypes))
	for _, m := range allowedMimeTypes {
		allowed[m] = struct{}{}
	}
	return &Handler{
		log:          log,
		service:      service,
		maxSizeBytes: maxSizeBytes,
		allowedMime:  allowed,
	}
}

// ServeHTTP godoc
// @Summary Upload a project document
// @Tags Documents
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project id"
// @Param file formData file true "Document file"
// @Success 201 {object} map[string]any "Document stored"
// @Failure 403 {object} response.ErrorResponse "No access"
// @Failure 413 {object} response.ErrorResponse "File too large"
// @Failure 415 {object} response.ErrorResponse "Unsupported file type"
// @Router /projects/{id}/documents [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.document.upload"

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

	r.Body = http.MaxBytesReader(w, r.Body, h.maxSizeBytes)
	if err := r.ParseMultipartForm(h.maxSizeBytes); err != nil {
		log.Error("failed to parse multipart form", sl.Err(err))
		render.Status(r, http.StatusRequestEntityTooLarge)
		render.JSON(w, r, response.Error("file too large"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		log.Error("missing file part", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing file"))
		return
	}
	defer func() {
		_ = file.Close()
	}()

	contentType := header.Header.Get("Content-Type")
	if _, found := h.allowedMime[contentType]; !found {
		log.Error("unsupported file type", slog.String("content_type", contentType))
		render.Status(r, http.StatusUnsupportedMediaType)
		render.JSON(w, r, response.Error("unsupported file type"))
		return
	}
	if header.Size > h.maxSizeBytes {
		log.Error("file too large", slog.Int64("size", header.Size))
		render.Status(r, http.StatusRequestEntityTooLarge)
		render.JSON(w, r, response.Error("file too large"))
		return
	}

	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}
	doc := models.Document{
		ProjectID:    projectID,
		Name:         name,
		OriginalName: header.Filename,
		Size:         header.Size,
		MimeType:     contentType,
		Category:     r.FormValue("category"),
		Description:  r.FormValue("description"),
	}

	id, err := h.service.UploadDocument(r.Context(), doc, file, userUID)
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
			log.Error("document upload failed", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
		}
		return
	}

	log.Info("document uploaded",
		slog.String("project_id", projectID), slog.String("document_id", id))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{"id": id}))
}
