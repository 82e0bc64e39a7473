// Package models contains the domain entities of the platform: users with
// role-conditional profiles, professional verification, subscriptions,
// projects and documents. The structures are shared between the business
// layer and the storage layer.
package models

import "time"

// User roles. Admin privilege is carried by the IsAdmin flag; the role value
// "admin" is kept in sync with it at registration time and never inferred
// from it elsewhere.
const (
	RoleProfessional = "professional"
	RoleBusiness     = "business"
	RoleAdmin        = "admin"
)

// User is a registered account. PasswordHash is a bcrypt hash and must never
// be serialized back to callers; the same goes for the verification token
// and the session token list.
type User struct {
	UID                string
	Name               string
	Email              string // unique, lowercase-normalized
	PasswordHash       string
	Role               string
	IsAdmin            bool
	IsVerified         bool // gates login for non-admins
	VerificationToken  string
	VerificationExpiry *time.Time
	ContactInfo        ContactInfo
	ProfessionalInfo   *ProfessionalInfo // set iff Role == professional
	BusinessInfo       *BusinessInfo     // set iff Role == business
	SubscriptionActive bool
	CreatedAt          time.Time
}

// ContactInfo holds the contact block required at registration. PEC is the
// certified official mailbox address.
type ContactInfo struct {
	Phone            string `json:"phone"`
	PEC              string `json:"pec"`
	AlternativeEmail string `json:"alternative_email,omitempty"`
}

// ProfessionalInfo is the profile variant for role=professional.
type ProfessionalInfo struct {
	Profession            string     `json:"profession"`
	LicenseNumber         string     `json:"license_number"`
	ProfessionalOrder     string     `json:"professional_order"`
	OrderRegistrationDate *time.Time `json:"order_registration_date,omitempty"`
}

// BusinessInfo is the profile variant for role=business.
type BusinessInfo struct {
	CompanyName        string        `json:"company_name"`
	VATNumber          string        `json:"vat_number"`
	BusinessType       string        `json:"business_type"`
	RegistrationNumber string        `json:"registration_number,omitempty"`
	LegalAddress       *LegalAddress `json:"legal_address,omitempty"`
}

// LegalAddress is the optional registered address of a business account.
type LegalAddress struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// SessionToken is one access/refresh pair of a live session. A user holds
// one row per device; the stored set is the authoritative list of valid
// sessions.
type SessionToken struct {
	UserUID      string
	AccessToken  string
	RefreshToken string
	CreatedAt    time.Time
}

// Profile returns a serializable view of the user without secret material.
func (u *User) Profile() map[string]any {
	p := map[string]any{
		"uid":                 u.UID,
		"name":                u.Name,
		"email":               u.Email,
		"role":                u.Role,
		"is_admin":            u.IsAdmin,
		"is_verified":         u.IsVerified,
		"contact_info":        u.ContactInfo,
		"subscription_active": u.SubscriptionActive,
		"created_at":          u.CreatedAt,
	}
	if u.ProfessionalInfo != nil {
		p["professional_info"] = u.ProfessionalInfo
	}
	if u.BusinessInfo != nil {
		p["business_info"] = u.BusinessInfo
	}
	return p
}
