package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/edilconnect/platform/internal/errs"
	"github.com/edilconnect/platform/internal/models"
)

const uniqueViolation = "23505"

// RegisterUser stores a new user and returns the generated UID. A duplicate
// email surfaces as errs.ErrEmailTaken.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"

	contactInfo, err := json.Marshal(user.ContactInfo)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	professionalInfo, businessInfo, err := marshalProfiles(&user)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var newUID string
	query := `INSERT INTO users (name, email, password_hash, role, is_admin, is_verified,
	              verification_token, verification_expiry, contact_info,
	              professional_info, business_info)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	          RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Name, user.Email, user.PasswordHash, user.Role, user.IsAdmin, user.IsVerified,
		nullString(user.VerificationToken), user.VerificationExpiry, contactInfo,
		professionalInfo, businessInfo).Scan(&newUID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return "", fmt.Errorf("%s: %w", op, errs.ErrEmailTaken)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

const userColumns = `uid, name, email, password_hash, role, is_admin, is_verified,
	              verification_token, verification_expiry, contact_info,
	              professional_info, business_info, subscription_active, created_at`

// GetUserByEmail returns a user by normalized email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return s.scanUser(op, s.DB.QueryRowContext(ctx, query, email))
}

// GetUser returns a user by UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1`
	return s.scanUser(op, s.DB.QueryRowContext(ctx, query, userUID))
}

// GetUserByVerificationToken returns the not-yet-verified user holding an
// unexpired email-confirmation token.
func (s *Storage) GetUserByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	const op = "storage.GetUserByVerificationToken"
	query := `SELECT ` + userColumns + ` FROM users
	          WHERE verification_token = $1
	            AND verification_expiry > now()
	            AND is_verified = false`
	return s.scanUser(op, s.DB.QueryRowContext(ctx, query, token))
}

// MarkEmailVerified flips is_verified and clears the one-time token.
func (s *Storage) MarkEmailVerified(ctx context.Context, userUID string) error {
	const op = "storage.MarkEmailVerified"
	query := `UPDATE users
	          SET is_verified = true, verification_token = NULL, verification_expiry = NULL
	          WHERE uid = $1`
	if _, err := s.DB.ExecContext(ctx, query, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetVerificationToken stores a fresh email-confirmation token and expiry.
func (s *Storage) SetVerificationToken(ctx context.Context, userUID, token string, expiry time.Time) error {
	const op = "storage.SetVerificationToken"
	query := `UPDATE users SET verification_token = $1, verification_expiry = $2 WHERE uid = $3`
	if _, err := s.DB.ExecContext(ctx, query, token, expiry, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdatePasswordHash replaces the stored password hash.
func (s *Storage) UpdatePasswordHash(ctx context.Context, userUID, hash string) error {
	const op = "storage.UpdatePasswordHash"
	query := `UPDATE users SET password_hash = $1 WHERE uid = $2`
	if _, err := s.DB.ExecContext(ctx, query, hash, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateUserProfile patches the whitelisted profile fields. Empty values
// leave the column unchanged.
func (s *Storage) UpdateUserProfile(ctx context.Context, userUID, name, phone string) error {
	const op = "storage.UpdateUserProfile"
	query := `UPDATE users
	          SET name = COALESCE(NULLIF($1, ''), name),
	              contact_info = jsonb_set(contact_info, '{phone}',
	                  to_jsonb(COALESCE(NULLIF($2, ''), contact_info->>'phone')))
	          WHERE uid = $3`
	if _, err := s.DB.ExecContext(ctx, query, name, phone, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Storage) scanUser(op string, row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var verificationToken sql.NullString
	var verificationExpiry sql.NullTime
	var contactInfo []byte
	var professionalInfo, businessInfo []byte

	if err := row.Scan(&u.UID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.IsAdmin,
		&u.IsVerified, &verificationToken, &verificationExpiry, &contactInfo,
		&professionalInfo, &businessInfo, &u.SubscriptionActive, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, errs.ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if verificationToken.Valid {
		u.VerificationToken = verificationToken.String
	}
	if verificationExpiry.Valid {
		u.VerificationExpiry = &verificationExpiry.Time
	}
	if err := json.Unmarshal(contactInfo, &u.ContactInfo); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(professionalInfo) > 0 {
		u.ProfessionalInfo = &models.ProfessionalInfo{}
		if err := json.Unmarshal(professionalInfo, u.ProfessionalInfo); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	if len(businessInfo) > 0 {
		u.BusinessInfo = &models.BusinessInfo{}
		if err := json.Unmarshal(businessInfo, u.BusinessInfo); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	return u, nil
}

func marshalProfiles(u *models.User) (professional, business []byte, err error) {
	if u.ProfessionalInfo != nil {
		professional, err = json.Marshal(u.ProfessionalInfo)
		if err != nil {
			return nil, nil, err
		}
	}
	if u.BusinessInfo != nil {
		business, err = json.Marshal(u.BusinessInfo)
		if err != nil {
			return nil, nil, err
		}
	}
	return professional, business, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
