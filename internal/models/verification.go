package models

import "time"

// Verification statuses. The aggregate becomes approved only when every
// stored document has been marked verified; removing a document always
// resets it to pending.
const (
	VerificationPending  = "pending"
	VerificationApproved = "approved"
	VerificationRejected = "rejected"
)

// The five fixed document types a professional may be asked to provide.
const (
	DocIdentity             = "identity_document"
	DocProfessionalLicense  = "professional_license"
	DocCriminalRecord       = "criminal_record"
	DocBusinessRegistration = "business_registration"
	DocVAT                  = "vat_document"
)

// DocumentTypes lists the recognized verification document types.
var DocumentTypes = []string{
	DocIdentity,
	DocProfessionalLicense,
	DocCriminalRecord,
	DocBusinessRegistration,
	DocVAT,
}

// IsDocumentType reports whether t is one of the fixed document types.
func IsDocumentType(t string) bool {
	for _, d := range DocumentTypes {
		if d == t {
			return true
		}
	}
	return false
}

// VerificationDocument is one uploaded credential document under review.
type VerificationDocument struct {
	UserUID    string           `json:"-"`
	Type       string           `json:"type"`
	FileKey    string           `json:"file_key"` // object-store reference
	Verified   bool             `json:"verified"`
	UploadedAt time.Time        `json:"uploaded_at"`
	Metadata   DocumentMetadata `json:"metadata"`
}

// DocumentMetadata carries the type-specific fields: license number and
// expiry for professional licenses, registration number for business
// registrations, issue date for criminal records.
type DocumentMetadata struct {
	LicenseNumber      string     `json:"license_number,omitempty"`
	ExpiryDate         *time.Time `json:"expiry_date,omitempty"`
	RegistrationNumber string     `json:"registration_number,omitempty"`
	IssueDate          *time.Time `json:"issue_date,omitempty"`
}

// VerificationNote is one append-only review note.
type VerificationNote struct {
	Note      string    `json:"note"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// Verification is the per-user credential verification state.
type Verification struct {
	UserUID    string                 `json:"user_uid"`
	Status     string                 `json:"status"`
	Documents  []VerificationDocument `json:"documents"`
	Notes      []VerificationNote     `json:"notes"`
	VerifiedAt *time.Time             `json:"verified_at,omitempty"`
	VerifiedBy string                 `json:"verified_by,omitempty"`
}

// VerificationSummary is the admin-facing listing row for verification
// requests awaiting review.
type VerificationSummary struct {
	UserUID   string    `json:"user_uid"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// AllDocumentsVerified reports whether every stored document has been
// reviewed and verified. An empty set does not count as verified.
func (v *Verification) AllDocumentsVerified() bool {
	if len(v.Documents) == 0 {
		return false
	}
	for _, d := range v.Documents {
		if !d.Verified {
			return false
		}
	}
	return true
}
