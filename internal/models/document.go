package models

import "time"

// Document is an uploaded file attached to a project. The binary lives in
// the object store under FileKey; this record only carries metadata.
type Document struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"project_id"`
	Name         string    `json:"name"`
	OriginalName string    `json:"original_name"`
	FileKey      string    `json:"-"`
	Size         int64     `json:"size"`
	MimeType     string    `json:"mime_type"`
	Category     string    `json:"category,omitempty"`
	Description  string    `json:"description,omitempty"`
	UploadedBy   string    `json:"uploaded_by"`
	CreatedAt    time.Time `json:"created_at"`
}
