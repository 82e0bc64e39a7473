package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/edilconnect/platform/internal/errs"
	"github.com/edilconnect/platform/internal/models"
)

// AddSessionToken appends a token pair to the user's session set. Multiple
// rows per user are how multi-device sessions are represented.
func (s *Storage) AddSessionToken(ctx context.Context, pair models.SessionToken) error {
	const op = "storage.AddSessionToken"
	query := `INSERT INTO session_tokens (user_uid, access_token, refresh_token)
	          VALUES ($1, $2, $3)`
	if _, err := s.DB.ExecContext(ctx, query,
		pair.UserUID, pair.AccessToken, pair.RefreshToken); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// HasAccessToken reports whether the presented access token is still part of
// the user's stored session set.
func (s *Storage) HasAccessToken(ctx context.Context, userUID, accessToken string) (bool, error) {
	const op = "storage.HasAccessToken"
	query := `SELECT EXISTS (
	              SELECT 1 FROM session_tokens
	              WHERE user_uid = $1 AND access_token = $2
	          )`
	var exists bool
	if err := s.DB.QueryRowContext(ctx, query, userUID, accessToken).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// RemoveAccessToken removes the session holding the given access token and
// returns the number of removed rows.
func (s *Storage) RemoveAccessToken(ctx context.Context, userUID, accessToken string) (int64, error) {
	const op = "storage.RemoveAccessToken"
	query := `DELETE FROM session_tokens WHERE user_uid = $1 AND access_token = $2`
	res, err := s.DB.ExecContext(ctx, query, userUID, accessToken)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// RotateSessionToken atomically consumes the stored pair holding oldRefresh
// and inserts the replacement pair. The DELETE targets the refresh-token
// value directly, so concurrent double-use of the same refresh token lets
// exactly one caller through; the loser gets errs.ErrInvalidRefreshToken
// and no mutation happens.
func (s *Storage) RotateSessionToken(ctx context.Context, userUID, oldRefresh string, newPair models.SessionToken) error {
	const op = "storage.RotateSessionToken"

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var id int64
	err = tx.QueryRowContext(ctx,
		`DELETE FROM session_tokens
		 WHERE user_uid = $1 AND refresh_token = $2
		 RETURNING id`, userUID, oldRefresh).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s: %w", op, errs.ErrInvalidRefreshToken)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO session_tokens (user_uid, access_token, refresh_token)
		 VALUES ($1, $2, $3)`,
		newPair.UserUID, newPair.AccessToken, newPair.RefreshToken); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
