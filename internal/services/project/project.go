// Package services contains the business logic for construction projects,
// their tasks, collaborators and attached documents.
package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/edilconnect/platform/internal/errs"
	"github.com/edilconnect/platform/internal/lib/sl"
	"github.com/edilconnect/platform/internal/models"
)

// ProjectRepository is the storage contract for projects, tasks,
// collaborators and project documents.
type ProjectRepository interface {
	CreateProject(ctx context.Context, p models.Project) (string, error)
	GetProject(ctx context.Context, id string) (*models.Project, error)
	ListProjectsForUser(ctx context.Context, userUID string) ([]*models.Project, error)
	UpdateProject(ctx context.Context, p models.Project) error
	DeleteProject(ctx context.Context, id string) error
	AddTask(ctx context.Context, t models.Task) (string, error)
	AddCollaborator(ctx context.Context, projectID, userUID string) error

	CreateDocument(ctx context.Context, d models.Document) (string, error)
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	ListDocumentsByProject(ctx context.Context, projectID string) ([]*models.Document, error)
	DeleteDocument(ctx context.Context, id string) (string, error)
}

// FileStore keeps the uploaded document binaries.
type FileStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, key string) error
}

// ProjectService enforces the ownership rules: reads and task creation are
// open to the owner and collaborators, mutation and collaborator management
// to the owner only.
type ProjectService struct {
	repo  ProjectRepository
	files FileStore
	log   *slog.Logger
}

// NewProjectService creates a ProjectService.
func NewProjectService(repo ProjectRepository, files FileStore, log *slog.Logger) *ProjectService {
	return &ProjectService{repo: repo, files: files, log: log}
}

// Create stores a new project owned by ownerUID.
func (s *ProjectService) Create(ctx context.Context, p models.Project, ownerUID string) (string, error) {
	const op = "project.Create"
	p.OwnerUID = ownerUID
	id, err := s.repo.CreateProject(ctx, p)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// List returns every project the user owns or collaborates on.
func (s *ProjectService) List(ctx context.Context, userUID string) ([]*models.Project, error) {
	const op = "project.List"
	list, err := s.repo.ListProjectsForUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// Get returns a project the user may read. Existing projects the user has
// no access to come back as errs.ErrForbidden, distinct from not found.
func (s *ProjectService) Get(ctx context.Context, id, userUID string) (*models.Project, error) {
	const op = "project.Get"
	p, err := s.loadReadable(ctx, id, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// Update replaces the editable project fields. Owner only.
func (s *ProjectService) Update(ctx context.Context, p models.Project, userUID string) error {
	const op = "project.Update"

	if _, err := s.loadOwned(ctx, p.ID, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.UpdateProject(ctx, p); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Delete removes a project with its tasks and document records, then the
// stored binaries. Owner only.
func (s *ProjectService) Delete(ctx context.Context, id, userUID string) error {
	const op = "project.Delete"

	if _, err := s.loadOwned(ctx, id, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	docs, err := s.repo.ListDocumentsByProject(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.DeleteProject(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for _, d := range docs {
		if err := s.files.Remove(ctx, d.FileKey); err != nil {
			s.log.Warn("failed to remove stored document",
				slog.String("key", d.FileKey), sl.Err(err))
		}
	}
	return nil
}

// AddTask creates a task inside a project the user may read.
func (s *ProjectService) AddTask(ctx context.Context, t models.Task, userUID string) (string, error) {
	const op = "project.AddTask"

	if _, err := s.loadReadable(ctx, t.ProjectID, userUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	id, err := s.repo.AddTask(ctx, t)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// AddCollaborator grants collaboratorUID read and task access. Owner only;
// adding an existing collaborator fails with errs.ErrAlreadyCollaborator.
func (s *ProjectService) AddCollaborator(ctx context.Context, projectID, userUID, collaboratorUID string) error {
	const op = "project.AddCollaborator"

	if _, err := s.loadOwned(ctx, projectID, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.AddCollaborator(ctx, projectID, collaboratorUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UploadDocument stores the binary and its metadata record for a project
// the user may read. The record is written first so a storage failure never
// leaves an unreachable binary behind.
func (s *ProjectService) UploadDocument(ctx context.Context, d models.Document,
	r io.Reader, userUID string) (string, error) {
	const op = "project.UploadDocument"

	if _, err := s.loadReadable(ctx, d.ProjectID, userUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	d.FileKey = fmt.Sprintf("projects/%s/%s", d.ProjectID, uuid.NewString())
	d.UploadedBy = userUID
	id, err := s.repo.CreateDocument(ctx, d)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := s.files.Put(ctx, d.FileKey, r, d.Size, d.MimeType); err != nil {
		if _, delErr := s.repo.DeleteDocument(ctx, id); delErr != nil {
			s.log.Error("failed to roll back document record",
				slog.String("document_id", id), sl.Err(delErr))
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ListDocuments returns the metadata records of a readable project.
func (s *ProjectService) ListDocuments(ctx context.Context, projectID, userUID string) ([]*models.Document, error) {
	const op = "project.ListDocuments"

	if _, err := s.loadReadable(ctx, projectID, userUID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	docs, err := s.repo.ListDocumentsByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return docs, nil
}

// RemoveDocument deletes a document record and its binary. Allowed for the
// project owner and the original uploader.
func (s *ProjectService) RemoveDocument(ctx context.Context, documentID, userUID string) error {
	const op = "project.RemoveDocument"

	doc, err := s.repo.GetDocument(ctx, documentID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	project, err := s.repo.GetProject(ctx, doc.ProjectID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if project.OwnerUID != userUID && doc.UploadedBy != userUID {
		return fmt.Errorf("%s: %w", op, errs.ErrForbidden)
	}

	fileKey, err := s.repo.DeleteDocument(ctx, documentID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.files.Remove(ctx, fileKey); err != nil {
		s.log.Warn("failed to remove stored document",
			slog.String("key", fileKey), sl.Err(err))
	}
	return nil
}

func (s *ProjectService) loadReadable(ctx context.Context, id, userUID string) (*models.Project, error) {
	p, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.CanAccess(userUID) {
		return nil, errs.ErrForbidden
	}
	return p, nil
}

func (s *ProjectService) loadOwned(ctx context.Context, id, userUID string) (*models.Project, error) {
	p, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.OwnerUID != userUID {
		return nil, errs.ErrForbidden
	}
	return p, nil
}
