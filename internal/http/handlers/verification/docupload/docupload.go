// Package docupload implements the HTTP handler for submitting one
// credential document. The upload is a multipart form: the file part plus
// optional type-specific metadata fields. Re-uploading a document type
// replaces the previous file and resets its review.
package docupload

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/edilconnect/platform/internal/errs"
	"github.com/edilconnect/platform/internal/http/middlewarectx"
	"github.com/edilconnect/platform/internal/http/response"
	"github.com/edilconnect/platform/internal/lib/sl"
	"github.com/edilconnect/platform/internal/models"
)

// Service describes the document submission business logic.
type Service interface {
	SubmitDocument(ctx context.Context, userUID, docType string,
		r io.Reader, size int64, contentType string, metadata models.DocumentMetadata) error
}

// Handler handles document upload HTTP requests.
type Handler struct {
	log          *slog.Logger
	service      Service
	maxSizeBytes int64
	allowedMime  map[string]struct{}
}

// New creates a docupload Handler enforcing the given size and MIME policy.
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
// @Summary Upload a verification document
// @Description Stores one credential document of the given type for review.
// @Tags Verification
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param type path string true "Document type"
// @Param file formData file true "Document file"
// @Success 200 {object} response.Response "Document stored"
// @Failure 400 {object} response.ErrorResponse "Unknown type or missing file"
// @Failure 413 {object} response.ErrorResponse "File too large"
// @Failure 415 {object} response.ErrorResponse "Unsupported file type"
// @Router /verification/documents/{type} [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.verification.docupload"

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
	docType := chi.URLParam(r, "type")

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

	err = h.service.SubmitDocument(r.Context(), userUID, docType,
		file, header.Size, contentType, parseMetadata(r))
	if err != nil {
		if errors.Is(err, errs.ErrUnknownDocumentType) {
			log.Error("unknown document type", slog.String("type", docType))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("unknown document type"))
			return
		}
		log.Error("document submission failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("document submitted",
		slog.String("uid", userUID), slog.String("type", docType))
	render.JSON(w, r, response.OK())
}

// parseMetadata reads the optional type-specific form fields. Dates use the
// 2006-01-02 layout; malformed values are ignored.
func parseMetadata(r *http.Request) models.DocumentMetadata {
	md := models.DocumentMetadata{
		LicenseNumber:      r.FormValue("license_number"),
		RegistrationNumber: r.FormValue("registration_number"),
	}
	if v := r.FormValue("expiry_date"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			md.ExpiryDate = &t
		}
	}
	if v := r.FormValue("issue_date"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			md.IssueDate = &t
		}
	}
	return md
}
