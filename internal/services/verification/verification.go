// Package services contains the business logic for the professional
// credential verification workflow.
package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/edilconnect/platform/internal/errs"
	"github.com/edilconnect/platform/internal/lib/sl"
	"github.com/edilconnect/platform/internal/models"
)

// VerificationRepository is the storage contract for the per-user document
// set, review notes and the aggregate status.
type VerificationRepository interface {
	GetVerification(ctx context.Context, userUID string) (*models.Verification, error)
	UpsertDocument(ctx context.Context, doc models.VerificationDocument) error
	SetDocumentVerified(ctx context.Context, userUID, docType string, verified bool) error
	RemoveDocument(ctx context.Context, userUID, docType string) (string, error)
	AddVerificationNote(ctx context.Context, userUID string, note models.VerificationNote) error
	SetVerificationStatus(ctx context.Context, userUID, status string, verifiedAt *time.Time, verifiedBy string) error
	ListVerificationRequests(ctx context.Context, statuses []string) ([]models.VerificationSummary, error)
}

// FileStore keeps the uploaded document binaries.
type FileStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, key string) error
}

// VerificationService drives the credential review workflow: document
// uploads, per-document admin review and the derived aggregate status.
type VerificationService struct {
	repo  VerificationRepository
	files FileStore
	log   *slog.Logger
}

// NewVerificationService creates a VerificationService.
func NewVerificationService(repo VerificationRepository, files FileStore, log *slog.Logger) *VerificationService {
	return &VerificationService{repo: repo, files: files, log: log}
}

// Get returns the full verification record for a user.
func (s *VerificationService) Get(ctx context.Context, userUID string) (*models.Verification, error) {
	const op = "verification.Get"
	rec, err := s.repo.GetVerification(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rec, nil
}

// SubmitDocument stores the binary and records the document unverified,
// replacing any previous upload of the same type. The aggregate status is
// left alone: only an admin review, a rejection or a document removal moves
// it.
func (s *VerificationService) SubmitDocument(ctx context.Context, userUID, docType string,
	r io.Reader, size int64, contentType string, metadata models.DocumentMetadata) error {
	const op = "verification.SubmitDocument"

	if !models.IsDocumentType(docType) {
		return fmt.Errorf("%s: %w", op, errs.ErrUnknownDocumentType)
	}

	key := fmt.Sprintf("verification/%s/%s", userUID, docType)
	if err := s.files.Put(ctx, key, r, size, contentType); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	doc := models.VerificationDocument{
		UserUID:    userUID,
		Type:       docType,
		FileKey:    key,
		UploadedAt: time.Now(),
		Metadata:   metadata,
	}
	if err := s.repo.UpsertDocument(ctx, doc); err != nil {
		// the binary is orphaned without its row, drop it again
		if rmErr := s.files.Remove(ctx, key); rmErr != nil {
			s.log.Warn("failed to remove orphaned file",
				slog.String("key", key), sl.Err(rmErr))
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ReviewDocument sets the reviewed flag on one document, appends an optional
// admin note and recomputes the aggregate: approval of the last outstanding
// uploaded document promotes the user to approved.
func (s *VerificationService) ReviewDocument(ctx context.Context, userUID, docType string,
	verified bool, note, adminUID string) (*models.Verification, error) {
	const op = "verification.ReviewDocument"

	if !models.IsDocumentType(docType) {
		return nil, fmt.Errorf("%s: %w", op, errs.ErrUnknownDocumentType)
	}
	if err := s.repo.SetDocumentVerified(ctx, userUID, docType, verified); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if note != "" {
		if err := s.repo.AddVerificationNote(ctx, userUID, models.VerificationNote{
			Note:      note,
			CreatedBy: adminUID,
			CreatedAt: time.Now(),
		}); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	if err := s.recomputeStatus(ctx, userUID, adminUID, nil); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rec, err := s.repo.GetVerification(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rec, nil
}

// Reject moves the user to rejected with an explanatory admin note. The
// reviewed documents keep their flags so the user only re-uploads what was
// actually refused.
func (s *VerificationService) Reject(ctx context.Context, userUID, adminUID, reason string) error {
	const op = "verification.Reject"

	if err := s.repo.AddVerificationNote(ctx, userUID, models.VerificationNote{
		Note:      reason,
		CreatedBy: adminUID,
		CreatedAt: time.Now(),
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.SetVerificationStatus(ctx, userUID, models.VerificationRejected, nil, adminUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RemoveDocument deletes a document row and its stored binary. Losing a
// document demotes an approved aggregate to pending.
func (s *VerificationService) RemoveDocument(ctx context.Context, userUID, docType string) error {
	const op = "verification.RemoveDocument"

	if !models.IsDocumentType(docType) {
		return fmt.Errorf("%s: %w", op, errs.ErrUnknownDocumentType)
	}
	fileKey, err := s.repo.RemoveDocument(ctx, userUID, docType)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.files.Remove(ctx, fileKey); err != nil {
		// the row is already gone, the leaked object is only a storage cost
		s.log.Warn("failed to remove stored document",
			slog.String("key", fileKey), sl.Err(err))
	}

	demote := models.VerificationPending
	if err := s.recomputeStatus(ctx, userUID, "", &demote); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListPending returns the review queue: users whose verification is still
// pending or was rejected.
func (s *VerificationService) ListPending(ctx context.Context) ([]models.VerificationSummary, error) {
	const op = "verification.ListPending"
	list, err := s.repo.ListVerificationRequests(ctx,
		[]string{models.VerificationPending, models.VerificationRejected})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// recomputeStatus derives the aggregate from the current document set.
// Every stored document carrying a true flag yields approved (an empty set
// does not); an approved record never reverts on its own unless onIncomplete
// forces a demotion (document removed).
func (s *VerificationService) recomputeStatus(ctx context.Context, userUID, adminUID string, onIncomplete *string) error {
	rec, err := s.repo.GetVerification(ctx, userUID)
	if err != nil {
		return err
	}

	if rec.AllDocumentsVerified() {
		if rec.Status == models.VerificationApproved {
			return nil
		}
		now := time.Now()
		return s.repo.SetVerificationStatus(ctx, userUID, models.VerificationApproved, &now, adminUID)
	}

	if rec.Status == models.VerificationApproved {
		if onIncomplete == nil {
			return nil
		}
		return s.repo.SetVerificationStatus(ctx, userUID, *onIncomplete, nil, "")
	}
	return nil
}
