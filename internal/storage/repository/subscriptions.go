package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/edilconnect/platform/internal/errs"
	"github.com/edilconnect/platform/internal/models"
)

const subscriptionColumns = `user_uid, status, plan, amount, currency, start_date, end_date,
	              provider_customer_id, provider_subscription_id, auto_renew,
	              created_at, updated_at`

// GetSubscription returns the subscription of a user, if any.
func (s *Storage) GetSubscription(ctx context.Context, userUID string) (*models.Subscription, error) {
	const op = "storage.GetSubscription"
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE user_uid = $1`
	return scanSubscription(op, s.DB.QueryRowContext(ctx, query, userUID))
}

// GetSubscriptionByProviderID looks a subscription up by the external
// provider's subscription identifier.
func (s *Storage) GetSubscriptionByProviderID(ctx context.Context, providerSubscriptionID string) (*models.Subscription, error) {
	const op = "storage.GetSubscriptionByProviderID"
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE provider_subscription_id = $1`
	return scanSubscription(op, s.DB.QueryRowContext(ctx, query, providerSubscriptionID))
}

// ActivateSubscription upserts the subscription record keyed by user UID,
// appends the payment-history entry and mirrors subscription_active onto the
// user row, all in one transaction. The upsert plus the payment-id conflict
// guard make webhook replays converge on the same state.
func (s *Storage) ActivateSubscription(ctx context.Context, sub models.Subscription, payment models.Payment) error {
	const op = "storage.ActivateSubscription"

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO subscriptions (user_uid, status, plan, amount, currency, start_date,
		     end_date, provider_customer_id, provider_subscription_id, auto_renew)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, true)
		 ON CONFLICT (user_uid) DO UPDATE
		 SET status = EXCLUDED.status,
		     plan = EXCLUDED.plan,
		     amount = EXCLUDED.amount,
		     currency = EXCLUDED.currency,
		     start_date = EXCLUDED.start_date,
		     end_date = EXCLUDED.end_date,
		     provider_customer_id = EXCLUDED.provider_customer_id,
		     provider_subscription_id = EXCLUDED.provider_subscription_id,
		     auto_renew = true,
		     updated_at = now()`,
		sub.UserUID, sub.Status, sub.Plan, sub.Amount, sub.Currency, sub.StartDate,
		sub.EndDate, sub.ProviderCustomerID, sub.ProviderSubscriptionID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if payment.PaymentID != "" {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO payments (payment_id, user_uid, amount, currency, status, date)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (payment_id) DO NOTHING`,
			payment.PaymentID, payment.UserUID, payment.Amount, payment.Currency,
			payment.Status, payment.Date); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET subscription_active = true WHERE uid = $1`,
		sub.UserUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeactivateSubscription sets the subscription status and clears the user's
// activation flag in one transaction. autoRenew is forced off when the new
// status is cancelled.
func (s *Storage) DeactivateSubscription(ctx context.Context, userUID, status string) error {
	const op = "storage.DeactivateSubscription"

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx,
		`UPDATE subscriptions
		 SET status = $1,
		     auto_renew = CASE WHEN $1 = 'cancelled' THEN false ELSE auto_renew END,
		     updated_at = now()
		 WHERE user_uid = $2`, status, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET subscription_active = false WHERE uid = $1`, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListPayments returns the user's payment history, newest first.
func (s *Storage) ListPayments(ctx context.Context, userUID string) ([]models.Payment, error) {
	const op = "storage.ListPayments"
	rows, err := s.DB.QueryContext(ctx,
		`SELECT payment_id, user_uid, amount, currency, status, date
		 FROM payments
		 WHERE user_uid = $1
		 ORDER BY date DESC`, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Payment
	for rows.Next() {
		var p models.Payment
		if err = rows.Scan(&p.PaymentID, &p.UserUID, &p.Amount, &p.Currency, &p.Status, &p.Date); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func scanSubscription(op string, row *sql.Row) (*models.Subscription, error) {
	sub := &models.Subscription{}
	var startDate, endDate sql.NullTime
	var customerID, subscriptionID sql.NullString
	if err := row.Scan(&sub.UserUID, &sub.Status, &sub.Plan, &sub.Amount, &sub.Currency,
		&startDate, &endDate, &customerID, &subscriptionID, &sub.AutoRenew,
		&sub.CreatedAt, &sub.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, errs.ErrSubscriptionNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if startDate.Valid {
		sub.StartDate = &startDate.Time
	}
	if endDate.Valid {
		sub.EndDate = &endDate.Time
	}
	if customerID.Valid {
		sub.ProviderCustomerID = customerID.String
	}
	if subscriptionID.Valid {
		sub.ProviderSubscriptionID = subscriptionID.String
	}
	return sub, nil
}
