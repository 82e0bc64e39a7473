// Package docreview implements the admin HTTP handler that marks one
// credential document verified or unverified. Approving the last
// outstanding uploaded document promotes the user to approved.
package docreview

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
	"github.com/edilconnect/platform/internal/models"
)

// Request carries the review verdict for one document and an optional
// reviewer note.
type Request struct {
	Verified *bool  `json:"verified" validate:"required"`
	Note     string `json:"note,omitempty"`
}

// Service describes the document review business logic.
type Service interface {
	ReviewDocument(ctx context.Context, userUID, docType string,
		verified bool, note, adminUID string) (*models.Verification, error)
}

// Handler handles document review HTTP requests.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New creates a docreview Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Review a verification document
// @Description Marks one document verified or unverified and returns the recomputed record.
// @Tags Verification
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param uid path string true "User uid"
// @Param type path string true "Document type"
// @Param request body Request true "Review verdict"
// @Success 200 {object} map[string]any "Updated verification record"
// @Failure 400 {object} response.ErrorResponse "Unknown document type"
// @Failure 403 {object} response.ErrorResponse "Admin access required"
// @Failure 404 {object} response.ErrorResponse "Document not uploaded"
// @Router /admin/verification/{uid}/documents/{type} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.verification.docreview"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	adminUID, _ := r.Context().Value(middlewarectx.UserUID).(string)
	userUID := chi.URLParam(r, "uid")
	docType := chi.URLParam(r, "type")

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

	rec, err := h.service.ReviewDocument(r.Context(), userUID, docType, *req.Verified, req.Note, adminUID)
	if err != nil {
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
			log.Error("review failed", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
		}
		return
	}

	log.Info("document reviewed",
		slog.String("uid", userUID), slog.String("type", docType),
		slog.Bool("verified", *req.Verified))
	render.JSON(w, r, response.OKWithData(rec))
}
