package models

// VerificationEmail is the message queued for the notification sender when
// a user must confirm their address.
type VerificationEmail struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	VerifyURL string `json:"verify_url"`
}
