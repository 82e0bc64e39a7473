package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/edilconnect/platform/internal/errs"
	"github.com/edilconnect/platform/internal/models"
)

// CreateDocument stores the metadata record for an uploaded project file.
func (s *Storage) CreateDocument(ctx context.Context, d models.Document) (string, error) {
	const op = "storage.CreateDocument"
	var id string
	query := `INSERT INTO documents (project_id, name, original_name, file_key, size,
	              mime_type, category, description, uploaded_by)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING id`
	if err := s.DB.QueryRowContext(ctx, query,
		d.ProjectID, d.Name, d.OriginalName, d.FileKey, d.Size,
		d.MimeType, d.Category, d.Description, d.UploadedBy).Scan(&id); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// GetDocument returns one document record.
func (s *Storage) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	const op = "storage.GetDocument"
	d := &models.Document{ID: id}
	err := s.DB.QueryRowContext(ctx,
		`SELECT project_id, name, original_name, file_key, size, mime_type,
		        category, description, uploaded_by, created_at
		 FROM documents WHERE id = $1`, id).Scan(
		&d.ProjectID, &d.Name, &d.OriginalName, &d.FileKey, &d.Size, &d.MimeType,
		&d.Category, &d.Description, &d.UploadedBy, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, errs.ErrDocumentNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return d, nil
}

// ListDocumentsByProject returns the documents of a project, newest first.
func (s *Storage) ListDocumentsByProject(ctx context.Context, projectID string) ([]*models.Document, error) {
	const op = "storage.ListDocumentsByProject"
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, project_id, name, original_name, file_key, size, mime_type,
		        category, description, uploaded_by, created_at
		 FROM documents WHERE project_id = $1
		 ORDER BY created_at DESC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Document
	for rows.Next() {
		d := &models.Document{}
		if err = rows.Scan(&d.ID, &d.ProjectID, &d.Name, &d.OriginalName, &d.FileKey,
			&d.Size, &d.MimeType, &d.Category, &d.Description, &d.UploadedBy,
			&d.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// DeleteDocument removes the metadata record and returns the object-store
// key of the binary.
func (s *Storage) DeleteDocument(ctx context.Context, id string) (string, error) {
	const op = "storage.DeleteDocument"
	var fileKey string
	err := s.DB.QueryRowContext(ctx,
		`DELETE FROM documents WHERE id = $1 RETURNING file_key`, id).Scan(&fileKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%s: %w", op, errs.ErrDocumentNotFound)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return fileKey, nil
}
