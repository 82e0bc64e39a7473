package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/edilconnect/platform/internal/errs"
	"github.com/edilconnect/platform/internal/models"
)

// GetVerification assembles the per-user verification state: aggregate
// status from the user row, document entries and review notes.
func (s *Storage) GetVerification(ctx context.Context, userUID string) (*models.Verification, error) {
	const op = "storage.GetVerification"

	v := &models.Verification{UserUID: userUID}
	var verifiedAt sql.NullTime
	var verifiedBy sql.NullString
	err := s.DB.QueryRowContext(ctx,
		`SELECT verification_status, verified_at, verified_by FROM users WHERE uid = $1`,
		userUID).Scan(&v.Status, &verifiedAt, &verifiedBy)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, errs.ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if verifiedAt.Valid {
		v.VerifiedAt = &verifiedAt.Time
	}
	if verifiedBy.Valid {
		v.VerifiedBy = verifiedBy.String
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT doc_type, file_key, verified, uploaded_at, metadata
		 FROM verification_documents
		 WHERE user_uid = $1
		 ORDER BY doc_type`, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	for rows.Next() {
		d := models.VerificationDocument{UserUID: userUID}
		var metadata []byte
		if err = rows.Scan(&d.Type, &d.FileKey, &d.Verified, &d.UploadedAt, &metadata); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if len(metadata) > 0 {
			if err = json.Unmarshal(metadata, &d.Metadata); err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
		}
		v.Documents = append(v.Documents, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	noteRows, err := s.DB.QueryContext(ctx,
		`SELECT note, created_by, created_at
		 FROM verification_notes
		 WHERE user_uid = $1
		 ORDER BY created_at`, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = noteRows.Close()
	}()
	for noteRows.Next() {
		var n models.VerificationNote
		if err = noteRows.Scan(&n.Note, &n.CreatedBy, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		v.Notes = append(v.Notes, n)
	}
	if err = noteRows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return v, nil
}

// UpsertDocument stores a newly submitted document entry, replacing any
// previous upload of the same type (re-submission resets verified to false).
func (s *Storage) UpsertDocument(ctx context.Context, doc models.VerificationDocument) error {
	const op = "storage.UpsertDocument"

	metadata, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	query := `INSERT INTO verification_documents (user_uid, doc_type, file_key, verified, uploaded_at, metadata)
	          VALUES ($1, $2, $3, false, $4, $5)
	          ON CONFLICT (user_uid, doc_type) DO UPDATE
	          SET file_key = EXCLUDED.file_key,
	              verified = false,
	              uploaded_at = EXCLUDED.uploaded_at,
	              metadata = EXCLUDED.metadata`
	if _, err := s.DB.ExecContext(ctx, query,
		doc.UserUID, doc.Type, doc.FileKey, doc.UploadedAt, metadata); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetDocumentVerified flips the review flag of one document entry.
func (s *Storage) SetDocumentVerified(ctx context.Context, userUID, docType string, verified bool) error {
	const op = "storage.SetDocumentVerified"
	query := `UPDATE verification_documents SET verified = $1
	          WHERE user_uid = $2 AND doc_type = $3`
	res, err := s.DB.ExecContext(ctx, query, verified, userUID, docType)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count == 0 {
		return fmt.Errorf("%s: %w", op, errs.ErrDocumentNotFound)
	}
	return nil
}

// RemoveDocument deletes a document entry and returns its object-store key
// so the caller can delete the binary.
func (s *Storage) RemoveDocument(ctx context.Context, userUID, docType string) (string, error) {
	const op = "storage.RemoveDocument"
	var fileKey string
	err := s.DB.QueryRowContext(ctx,
		`DELETE FROM verification_documents
		 WHERE user_uid = $1 AND doc_type = $2
		 RETURNING file_key`, userUID, docType).Scan(&fileKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%s: %w", op, errs.ErrDocumentNotFound)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return fileKey, nil
}

// AddVerificationNote appends one review note.
func (s *Storage) AddVerificationNote(ctx context.Context, userUID string, note models.VerificationNote) error {
	const op = "storage.AddVerificationNote"
	query := `INSERT INTO verification_notes (user_uid, note, created_by, created_at)
	          VALUES ($1, $2, $3, $4)`
	if _, err := s.DB.ExecContext(ctx, query,
		userUID, note.Note, note.CreatedBy, note.CreatedAt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetVerificationStatus updates the aggregate status. verifiedAt/verifiedBy
// are written only on the transition to approved and cleared otherwise.
func (s *Storage) SetVerificationStatus(ctx context.Context, userUID, status string, verifiedAt *time.Time, verifiedBy string) error {
	const op = "storage.SetVerificationStatus"
	query := `UPDATE users
	          SET verification_status = $1, verified_at = $2, verified_by = $3
	          WHERE uid = $4`
	if _, err := s.DB.ExecContext(ctx, query,
		status, verifiedAt, nullString(verifiedBy), userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListVerificationRequests returns the users whose verification is in one of
// the given statuses, newest first.
func (s *Storage) ListVerificationRequests(ctx context.Context, statuses []string) ([]models.VerificationSummary, error) {
	const op = "storage.ListVerificationRequests"
	rows, err := s.DB.QueryContext(ctx,
		`SELECT uid, name, email, role, verification_status, created_at
		 FROM users
		 WHERE verification_status = ANY($1)
		 ORDER BY created_at DESC`, statuses)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.VerificationSummary
	for rows.Next() {
		var v models.VerificationSummary
		if err = rows.Scan(&v.UserUID, &v.Name, &v.Email, &v.Role, &v.Status, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, v)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
