package services_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edilconnect/platform/internal/errs"
	"github.com/edilconnect/platform/internal/models"
	services "github.com/edilconnect/platform/internal/services/verification"

	"log/slog"
)

type VerificationRepoMock struct {
	mock.Mock
}

func (m *VerificationRepoMock) GetVerification(ctx context.Context, userUID string) (*models.Verification, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Verification), args.Error(1)
}

func (m *VerificationRepoMock) UpsertDocument(ctx context.Context, doc models.VerificationDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *VerificationRepoMock) SetDocumentVerified(ctx context.Context, userUID, docType string, verified bool) error {
	args := m.Called(ctx, userUID, docType, verified)
	return args.Error(0)
}

func (m *VerificationRepoMock) RemoveDocument(ctx context.Context, userUID, docType string) (string, error) {
	args := m.Called(ctx, userUID, docType)
	return args.String(0), args.Error(1)
}

func (m *VerificationRepoMock) AddVerificationNote(ctx context.Context, userUID string, note models.VerificationNote) error {
	args := m.Called(ctx, userUID, note)
	return args.Error(0)
}

func (m *VerificationRepoMock) SetVerificationStatus(ctx context.Context, userUID, status string, verifiedAt *time.Time, verifiedBy string) error {
	args := m.Called(ctx, userUID, status, verifiedAt, verifiedBy)
	return args.Error(0)
}

func (m *VerificationRepoMock) ListVerificationRequests(ctx context.Context, statuses []string) ([]models.VerificationSummary, error) {
	args := m.Called(ctx, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.VerificationSummary), args.Error(1)
}

type FileStoreMock struct {
	mock.Mock
}

func (m *FileStoreMock) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, key, r, size, contentType)
	return args.Error(0)
}

func (m *FileStoreMock) Remove(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func record(status string, docs ...models.VerificationDocument) *models.Verification {
	return &models.Verification{UserUID: "uid-1", Status: status, Documents: docs}
}

func doc(docType string, verified bool) models.VerificationDocument {
	return models.VerificationDocument{UserUID: "uid-1", Type: docType, Verified: verified}
}

func TestVerificationService_SubmitDocument(t *testing.T) {
	content := []byte("%PDF-1.4 fake")

	t.Run("unknown document type", func(t *testing.T) {
		svc := services.NewVerificationService(new(VerificationRepoMock), new(FileStoreMock), newNoopLogger())

		err := svc.SubmitDocument(context.Background(), "uid-1", "passport",
			bytes.NewReader(content), int64(len(content)), "application/pdf", models.DocumentMetadata{})
		assert.ErrorIs(t, err, errs.ErrUnknownDocumentType)
	})

	t.Run("stores binary then row under a deterministic key", func(t *testing.T) {
		repo := new(VerificationRepoMock)
		files := new(FileStoreMock)
		svc := services.NewVerificationService(repo, files, newNoopLogger())

		wantKey := "verification/uid-1/identity_document"
		files.On("Put", mock.Anything, wantKey, mock.Anything, int64(len(content)), "application/pdf").
			Return(nil).Once()
		repo.On("UpsertDocument", mock.Anything, mock.MatchedBy(func(d models.VerificationDocument) bool {
			return d.UserUID == "uid-1" && d.Type == models.DocIdentity && d.FileKey == wantKey &&
				!d.UploadedAt.IsZero()
		})).Return(nil).Once()

		err := svc.SubmitDocument(context.Background(), "uid-1", models.DocIdentity,
			bytes.NewReader(content), int64(len(content)), "application/pdf", models.DocumentMetadata{})
		require.NoError(t, err)
		repo.AssertExpectations(t)
		files.AssertExpectations(t)
	})

	t.Run("row failure removes the orphaned binary", func(t *testing.T) {
		repo := new(VerificationRepoMock)
		files := new(FileStoreMock)
		svc := services.NewVerificationService(repo, files, newNoopLogger())

		wantKey := "verification/uid-1/identity_document"
		files.On("Put", mock.Anything, wantKey, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
		repo.On("UpsertDocument", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()
		files.On("Remove", mock.Anything, wantKey).Return(nil).Once()

		err := svc.SubmitDocument(context.Background(), "uid-1", models.DocIdentity,
			bytes.NewReader(content), int64(len(content)), "application/pdf", models.DocumentMetadata{})
		require.Error(t, err)
		files.AssertExpectations(t)
	})

	t.Run("re-upload leaves an approved aggregate alone", func(t *testing.T) {
		repo := new(VerificationRepoMock)
		files := new(FileStoreMock)
		svc := services.NewVerificationService(repo, files, newNoopLogger())

		files.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
		repo.On("UpsertDocument", mock.Anything, mock.Anything).Return(nil).Once()

		err := svc.SubmitDocument(context.Background(), "uid-1", models.DocIdentity,
			bytes.NewReader(content), int64(len(content)), "application/pdf", models.DocumentMetadata{})
		require.NoError(t, err)
		// only review, rejection or removal may move the aggregate
		repo.AssertNotCalled(t, "SetVerificationStatus",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		repo.AssertExpectations(t)
	})
}

func TestVerificationService_ReviewDocument(t *testing.T) {
	t.Run("last approval promotes to approved and stamps the reviewer", func(t *testing.T) {
		repo := new(VerificationRepoMock)
		svc := services.NewVerificationService(repo, new(FileStoreMock), newNoopLogger())

		full := record(models.VerificationPending,
			doc(models.DocIdentity, true),
			doc(models.DocProfessionalLicense, true),
			doc(models.DocCriminalRecord, true))

		repo.On("SetDocumentVerified", mock.Anything, "uid-1", models.DocCriminalRecord, true).Return(nil).Once()
		repo.On("GetVerification", mock.Anything, "uid-1").Return(full, nil).Twice()
		repo.On("SetVerificationStatus", mock.Anything, "uid-1", models.VerificationApproved,
			mock.MatchedBy(func(at *time.Time) bool { return at != nil }), "admin-1").Return(nil).Once()

		rec, err := svc.ReviewDocument(context.Background(), "uid-1", models.DocCriminalRecord, true, "", "admin-1")
		require.NoError(t, err)
		require.NotNil(t, rec)
		repo.AssertNotCalled(t, "AddVerificationNote", mock.Anything, mock.Anything, mock.Anything)
		repo.AssertExpectations(t)
	})

	t.Run("review note is appended with reviewer and timestamp", func(t *testing.T) {
		repo := new(VerificationRepoMock)
		svc := services.NewVerificationService(repo, new(FileStoreMock), newNoopLogger())

		partial := record(models.VerificationPending,
			doc(models.DocIdentity, false), doc(models.DocProfessionalLicense, false))

		repo.On("SetDocumentVerified", mock.Anything, "uid-1", models.DocIdentity, false).Return(nil).Once()
		repo.On("AddVerificationNote", mock.Anything, "uid-1", mock.MatchedBy(func(n models.VerificationNote) bool {
			return n.Note == "scan illeggibile" && n.CreatedBy == "admin-1" && !n.CreatedAt.IsZero()
		})).Return(nil).Once()
		repo.On("GetVerification", mock.Anything, "uid-1").Return(partial, nil).Twice()

		_, err := svc.ReviewDocument(context.Background(), "uid-1", models.DocIdentity, false, "scan illeggibile", "admin-1")
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("partial approval leaves the aggregate pending", func(t *testing.T) {
		repo := new(VerificationRepoMock)
		svc := services.NewVerificationService(repo, new(FileStoreMock), newNoopLogger())

		partial := record(models.VerificationPending,
			doc(models.DocIdentity, true),
			doc(models.DocProfessionalLicense, false))

		repo.On("SetDocumentVerified", mock.Anything, "uid-1", models.DocIdentity, true).Return(nil).Once()
		repo.On("GetVerification", mock.Anything, "uid-1").Return(partial, nil).Twice()

		_, err := svc.ReviewDocument(context.Background(), "uid-1", models.DocIdentity, true, "", "admin-1")
		require.NoError(t, err)
		repo.AssertNotCalled(t, "SetVerificationStatus",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("approved aggregate is not re-stamped on repeat review", func(t *testing.T) {
		repo := new(VerificationRepoMock)
		svc := services.NewVerificationService(repo, new(FileStoreMock), newNoopLogger())

		approved := record(models.VerificationApproved,
			doc(models.DocIdentity, true), doc(models.DocProfessionalLicense, true))

		repo.On("SetDocumentVerified", mock.Anything, "uid-1", models.DocIdentity, true).Return(nil).Once()
		repo.On("GetVerification", mock.Anything, "uid-1").Return(approved, nil).Twice()

		_, err := svc.ReviewDocument(context.Background(), "uid-1", models.DocIdentity, true, "", "admin-2")
		require.NoError(t, err)
		repo.AssertNotCalled(t, "SetVerificationStatus",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown document type", func(t *testing.T) {
		svc := services.NewVerificationService(new(VerificationRepoMock), new(FileStoreMock), newNoopLogger())
		_, err := svc.ReviewDocument(context.Background(), "uid-1", "passport", true, "", "admin-1")
		assert.ErrorIs(t, err, errs.ErrUnknownDocumentType)
	})
}

func TestVerificationService_Reject(t *testing.T) {
	repo := new(VerificationRepoMock)
	svc := services.NewVerificationService(repo, new(FileStoreMock), newNoopLogger())

	repo.On("AddVerificationNote", mock.Anything, "uid-1", mock.MatchedBy(func(n models.VerificationNote) bool {
		return n.Note == "license expired" && n.CreatedBy == "admin-1" && !n.CreatedAt.IsZero()
	})).Return(nil).Once()
	repo.On("SetVerificationStatus", mock.Anything, "uid-1", models.VerificationRejected,
		(*time.Time)(nil), "admin-1").Return(nil).Once()

	err := svc.Reject(context.Background(), "uid-1", "admin-1", "license expired")
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestVerificationService_RemoveDocument(t *testing.T) {
	t.Run("removal demotes an approved aggregate", func(t *testing.T) {
		repo := new(VerificationRepoMock)
		files := new(FileStoreMock)
		svc := services.NewVerificationService(repo, files, newNoopLogger())

		repo.On("RemoveDocument", mock.Anything, "uid-1", models.DocIdentity).
			Return("verification/uid-1/identity_document", nil).Once()
		files.On("Remove", mock.Anything, "verification/uid-1/identity_document").Return(nil).Once()
		repo.On("GetVerification", mock.Anything, "uid-1").
			Return(record(models.VerificationApproved), nil).Once()
		repo.On("SetVerificationStatus", mock.Anything, "uid-1", models.VerificationPending,
			(*time.Time)(nil), "").Return(nil).Once()

		err := svc.RemoveDocument(context.Background(), "uid-1", models.DocIdentity)
		require.NoError(t, err)
		repo.AssertExpectations(t)
		files.AssertExpectations(t)
	})

	t.Run("object store failure is tolerated after the row is gone", func(t *testing.T) {
		repo := new(VerificationRepoMock)
		files := new(FileStoreMock)
		svc := services.NewVerificationService(repo, files, newNoopLogger())

		repo.On("RemoveDocument", mock.Anything, "uid-1", models.DocIdentity).
			Return("verification/uid-1/identity_document", nil).Once()
		files.On("Remove", mock.Anything, mock.Anything).Return(errors.New("store down")).Once()
		repo.On("GetVerification", mock.Anything, "uid-1").
			Return(record(models.VerificationPending), nil).Once()

		err := svc.RemoveDocument(context.Background(), "uid-1", models.DocIdentity)
		assert.NoError(t, err)
	})

	t.Run("missing document", func(t *testing.T) {
		repo := new(VerificationRepoMock)
		svc := services.NewVerificationService(repo, new(FileStoreMock), newNoopLogger())

		repo.On("RemoveDocument", mock.Anything, "uid-1", models.DocIdentity).
			Return("", errs.ErrDocumentNotFound).Once()

		err := svc.RemoveDocument(context.Background(), "uid-1", models.DocIdentity)
		assert.ErrorIs(t, err, errs.ErrDocumentNotFound)
	})
}

func TestVerificationService_ListPending(t *testing.T) {
	repo := new(VerificationRepoMock)
	svc := services.NewVerificationService(repo, new(FileStoreMock), newNoopLogger())

	queue := []models.VerificationSummary{
		{UserUID: "uid-1", Name: "Mario Rossi", Status: models.VerificationPending},
		{UserUID: "uid-2", Name: "Luca Bianchi", Status: models.VerificationRejected},
	}
	repo.On("ListVerificationRequests", mock.Anything,
		[]string{models.VerificationPending, models.VerificationRejected}).Return(queue, nil).Once()

	got, err := svc.ListPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, queue, got)
	repo.AssertExpectations(t)
}
