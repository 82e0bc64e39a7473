// Package services contains the business logic for registration, session
// management and account verification.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/edilconnect/platform/internal/errs"
	"github.com/edilconnect/platform/internal/lib/jwt"
	"github.com/edilconnect/platform/internal/lib/password"
	"github.com/edilconnect/platform/internal/lib/random"
	"github.com/edilconnect/platform/internal/lib/sl"
	"github.com/edilconnect/platform/internal/models"
)

// UserRepository is the storage contract for user accounts.
type UserRepository interface {
	RegisterUser(ctx context.Context, user models.User) (string, error)
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByVerificationToken(ctx context.Context, token string) (*models.User, error)
	MarkEmailVerified(ctx context.Context, userUID string) error
	SetVerificationToken(ctx context.Context, userUID, token string, expiry time.Time) error
	UpdatePasswordHash(ctx context.Context, userUID, hash string) error
	UpdateUserProfile(ctx context.Context, userUID, name, phone string) error
}

// TokenRepository is the storage contract for the per-user session set.
type TokenRepository interface {
	AddSessionToken(ctx context.Context, pair models.SessionToken) error
	HasAccessToken(ctx context.Context, userUID, accessToken string) (bool, error)
	RemoveAccessToken(ctx context.Context, userUID, accessToken string) (int64, error)
	RotateSessionToken(ctx context.Context, userUID, oldRefresh string, newPair models.SessionToken) error
}

// EmailPublisher hands verification emails to the notification queue.
type EmailPublisher interface {
	Publish(message any) error
}

// AuthService implements registration, login, token validation, refresh
// rotation, logout and the email-confirmation flow.
type AuthService struct {
	users         UserRepository
	tokens        TokenRepository
	jwtMaker      jwt.Maker
	emails        EmailPublisher
	adminCode     string
	emailTokenTTL time.Duration
	verifyBaseURL string
	log           *slog.Logger
}

// NewAuthService creates an AuthService. adminCode is the server-held
// admin-enrollment secret; verifyBaseURL is the public prefix of the
// email-confirmation link.
func NewAuthService(users UserRepository, tokens TokenRepository, jwtMaker jwt.Maker,
	emails EmailPublisher, adminCode string, emailTokenTTL time.Duration,
	verifyBaseURL string, log *slog.Logger) *AuthService {
	return &AuthService{
		users:         users,
		tokens:        tokens,
		jwtMaker:      jwtMaker,
		emails:        emails,
		adminCode:     adminCode,
		emailTokenTTL: emailTokenTTL,
		verifyBaseURL: verifyBaseURL,
		log:           log,
	}
}

// RegisterParams carries the registration input after handler-level
// validation. Exactly one of ProfessionalInfo/BusinessInfo must be set
// according to Role; AdminCode is optional.
type RegisterParams struct {
	Name             string
	Email            string
	Password         string
	Role             string
	AdminCode        string
	ContactInfo      models.ContactInfo
	ProfessionalInfo *models.ProfessionalInfo
	BusinessInfo     *models.BusinessInfo
}

// Register creates a new account. A valid admin code sets role=admin,
// is_admin and is_verified together and skips email confirmation; otherwise
// the role-matching profile variant is required and a confirmation email is
// queued. Returns the new UID with a freshly issued token pair.
func (s *AuthService) Register(ctx context.Context, params RegisterParams) (string, *models.SessionToken, error) {
	const op = "auth.Register"

	user := models.User{
		Name:             strings.TrimSpace(params.Name),
		Email:            strings.ToLower(strings.TrimSpace(params.Email)),
		Role:             params.Role,
		ContactInfo:      params.ContactInfo,
		ProfessionalInfo: params.ProfessionalInfo,
		BusinessInfo:     params.BusinessInfo,
	}

	if params.AdminCode != "" {
		if params.AdminCode != s.adminCode {
			return "", nil, fmt.Errorf("%s: %w", op, errs.ErrInvalidAdminCode)
		}
		// role and is_admin are dual signals of the same privilege and are
		// only ever written together, here.
		user.Role = models.RoleAdmin
		user.IsAdmin = true
		user.IsVerified = true
		user.ProfessionalInfo = nil
		user.BusinessInfo = nil
	} else {
		if err := validateProfile(&user); err != nil {
			return "", nil, fmt.Errorf("%s: %w", op, err)
		}
		token, err := random.Token()
		if err != nil {
			return "", nil, fmt.Errorf("%s: %w", op, err)
		}
		expiry := time.Now().Add(s.emailTokenTTL)
		user.VerificationToken = token
		user.VerificationExpiry = &expiry
	}

	hashed, err := password.GetHash(params.Password)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	user.PasswordHash = hashed

	uid, err := s.users.RegisterUser(ctx, user)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}

	if !user.IsAdmin {
		s.queueVerificationEmail(user.Email, user.Name, user.VerificationToken)
	}

	pair, err := s.issuePair(ctx, uid)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return uid, pair, nil
}

// Login checks credentials and the verification gate, then issues and
// persists a new session-token pair. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (*models.User, *models.SessionToken, error) {
	const op = "auth.Login"

	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, errs.ErrInvalidCredentials)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, errs.ErrInvalidCredentials)
	}
	if !user.IsVerified && !user.IsAdmin {
		return nil, nil, fmt.Errorf("%s: %w", op, errs.ErrAccountNotVerified)
	}

	pair, err := s.issuePair(ctx, user.UID)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, pair, nil
}

// ValidateToken verifies the access token's signature and expiry, resolves
// the user and requires the presented token to still be a member of the
// stored session set. A validly signed token that has been rotated or
// logged out fails with errs.ErrTokenRevoked.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*models.User, error) {
	const op = "auth.ValidateToken"

	claims, err := s.jwtMaker.ParseAccessToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, errs.ErrInvalidToken)
	}
	user, err := s.users.GetUser(ctx, claims.UserUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, errs.ErrUserNotFound)
	}
	member, err := s.tokens.HasAccessToken(ctx, user.UID, token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !member {
		return nil, fmt.Errorf("%s: %w", op, errs.ErrTokenRevoked)
	}
	return user, nil
}

// Refresh exchanges a refresh token for a new pair. The stored pair is
// consumed atomically, so each refresh token works at most once; the second
// of two concurrent calls gets errs.ErrInvalidRefreshToken and no mutation.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.SessionToken, error) {
	const op = "auth.Refresh"

	claims, err := s.jwtMaker.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, errs.ErrInvalidRefreshToken)
	}

	pair, err := s.newPair(claims.UserUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.tokens.RotateSessionToken(ctx, claims.UserUID, refreshToken, *pair); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return pair, nil
}

// Logout removes the session holding the presented access token. Removing
// an already absent token is not an error.
func (s *AuthService) Logout(ctx context.Context, userUID, accessToken string) error {
	const op = "auth.Logout"
	if _, err := s.tokens.RemoveAccessToken(ctx, userUID, accessToken); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// VerifyEmail consumes a one-time confirmation token, marking the account
// verified and clearing the token.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	const op = "auth.VerifyEmail"

	user, err := s.users.GetUserByVerificationToken(ctx, token)
	if err != nil {
		return fmt.Errorf("%s: %w", op, errs.ErrVerificationToken)
	}
	if err := s.users.MarkEmailVerified(ctx, user.UID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ResendVerification issues a fresh confirmation token for an unverified
// account and queues the email again.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	const op = "auth.ResendVerification"

	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return fmt.Errorf("%s: %w", op, errs.ErrUserNotFound)
	}
	if user.IsVerified {
		return fmt.Errorf("%s: %w", op, errs.ErrUserNotFound)
	}

	token, err := random.Token()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.SetVerificationToken(ctx, user.UID, token, time.Now().Add(s.emailTokenTTL)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.queueVerificationEmail(user.Email, user.Name, token)
	return nil
}

// ChangePassword re-hashes after checking the current password.
func (s *AuthService) ChangePassword(ctx context.Context, userUID, currentPassword, newPassword string) error {
	const op = "auth.ChangePassword"

	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, currentPassword); err != nil {
		return fmt.Errorf("%s: %w", op, errs.ErrInvalidCredentials)
	}
	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.UpdatePasswordHash(ctx, userUID, hashed); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Profile returns the user behind uid for the profile endpoint.
func (s *AuthService) Profile(ctx context.Context, userUID string) (*models.User, error) {
	const op = "auth.Profile"
	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// UpdateProfile changes the editable profile fields. Empty values leave the
// stored ones untouched.
func (s *AuthService) UpdateProfile(ctx context.Context, userUID, name, phone string) error {
	const op = "auth.UpdateProfile"
	if err := s.users.UpdateUserProfile(ctx, userUID, name, phone); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *AuthService) issuePair(ctx context.Context, userUID string) (*models.SessionToken, error) {
	pair, err := s.newPair(userUID)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.AddSessionToken(ctx, *pair); err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *AuthService) newPair(userUID string) (*models.SessionToken, error) {
	access, err := s.jwtMaker.GenerateAccessToken(userUID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.jwtMaker.GenerateRefreshToken(userUID)
	if err != nil {
		return nil, err
	}
	return &models.SessionToken{
		UserUID:      userUID,
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// queueVerificationEmail publishes the confirmation email. Registration is
// not rolled back when the queue is unavailable; the user can ask for a
// resend.
func (s *AuthService) queueVerificationEmail(email, name, token string) {
	msg := models.VerificationEmail{
		Email:     email,
		Name:      name,
		VerifyURL: s.verifyBaseURL + "/verify-email?token=" + token,
	}
	if err := s.emails.Publish(msg); err != nil {
		s.log.Warn("failed to queue verification email",
			slog.String("email", email), sl.Err(err))
	}
}

// validateProfile enforces the role-conditional profile variant: exactly
// the one matching the role must be populated.
func validateProfile(u *models.User) error {
	switch u.Role {
	case models.RoleProfessional:
		if u.ProfessionalInfo == nil || u.BusinessInfo != nil {
			return fmt.Errorf("professional profile required for role %q: %w",
				u.Role, errs.ErrInvalidCredentials)
		}
	case models.RoleBusiness:
		if u.BusinessInfo == nil || u.ProfessionalInfo != nil {
			return fmt.Errorf("business profile required for role %q: %w",
				u.Role, errs.ErrInvalidCredentials)
		}
	default:
		return fmt.Errorf("unknown role %q: %w", u.Role, errs.ErrInvalidCredentials)
	}
	return nil
}
