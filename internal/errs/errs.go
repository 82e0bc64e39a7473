// Package errs defines the sentinel errors shared by services, storage and
// HTTP handlers. Services wrap them with operation context via fmt.Errorf and
// "%w"; handlers match them with errors.Is to pick a status code.
package errs

import "errors"

// Authentication and authorization.
var (
	ErrUnauthenticated     = errors.New("authentication required")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrTokenRevoked        = errors.New("token has been revoked")
	ErrForbidden           = errors.New("access denied")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAccountNotVerified  = errors.New("account not verified")
	ErrInvalidAdminCode    = errors.New("invalid admin code")
)

// Validation.
var (
	ErrUnknownDocumentType = errors.New("unknown document type")
	ErrUnknownPlan         = errors.New("unknown subscription plan")
	ErrEmailTaken          = errors.New("email already registered")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUnsupportedFileType = errors.New("unsupported file type")
)

// State machine.
var (
	ErrNoActiveSubscription = errors.New("no active subscription")
	ErrAlreadyCollaborator  = errors.New("user is already a collaborator")
)

// Lookup and infrastructure.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrDocumentNotFound     = errors.New("document not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrProjectNotFound      = errors.New("project not found")
	ErrVerificationToken    = errors.New("verification token invalid or expired")
	ErrExternalService      = errors.New("external service unavailable")
)
