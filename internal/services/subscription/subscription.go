// Package services contains the business logic for the paid-subscription
// lifecycle: checkout, webhook-driven state changes and cancellation.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/edilconnect/platform/internal/billing"
	"github.com/edilconnect/platform/internal/errs"
	"github.com/edilconnect/platform/internal/lib/sl"
	"github.com/edilconnect/platform/internal/models"
)

// SubscriptionRepository is the storage contract for subscriptions and the
// payment log. ActivateSubscription and DeactivateSubscription also flip
// the user's subscription_active mirror flag in the same transaction.
type SubscriptionRepository interface {
	GetSubscription(ctx context.Context, userUID string) (*models.Subscription, error)
	GetSubscriptionByProviderID(ctx context.Context, providerSubID string) (*models.Subscription, error)
	ActivateSubscription(ctx context.Context, sub models.Subscription, payment models.Payment) error
	DeactivateSubscription(ctx context.Context, userUID, status string) error
	ListPayments(ctx context.Context, userUID string) ([]models.Payment, error)
}

// UserGetter resolves a user account, needed when registering the user as
// a provider customer.
type UserGetter interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// BillingClient talks to the external payment provider.
type BillingClient interface {
	CreateCustomer(ctx context.Context, req billing.CreateCustomerRequest) (*billing.Customer, error)
	CreateCheckoutSession(ctx context.Context, req billing.CreateCheckoutSessionRequest) (*billing.CheckoutSession, error)
	CancelSubscription(ctx context.Context, providerSubID string) error
}

// StatusCache caches the subscription-status payload per user.
type StatusCache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

const statusCacheTTL = time.Minute

// SubscriptionService drives the subscription lifecycle. All state
// transitions after checkout arrive through provider webhooks.
type SubscriptionService struct {
	repo       SubscriptionRepository
	users      UserGetter
	billing    BillingClient
	cache      StatusCache
	successURL string
	cancelURL  string
	log        *slog.Logger
}

// NewSubscriptionService creates a SubscriptionService.
func NewSubscriptionService(repo SubscriptionRepository, users UserGetter, billingClient BillingClient,
	cache StatusCache, successURL, cancelURL string, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:       repo,
		users:      users,
		billing:    billingClient,
		cache:      cache,
		successURL: successURL,
		cancelURL:  cancelURL,
		log:        log,
	}
}

// ListPlans returns the available plans.
func (s *SubscriptionService) ListPlans() []models.Plan {
	plans := make([]models.Plan, 0, len(models.Plans))
	for _, name := range []string{models.PlanMonthly, models.PlanAnnual} {
		plans = append(plans, models.Plans[name])
	}
	return plans
}

// StartCheckout creates a provider checkout session for the chosen plan.
// The provider customer is reused when the user already has one from an
// earlier subscription.
func (s *SubscriptionService) StartCheckout(ctx context.Context, userUID, planName string) (*billing.CheckoutSession, error) {
	const op = "subscription.StartCheckout"

	plan, ok := models.Plans[planName]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, errs.ErrUnknownPlan)
	}

	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	customerID, err := s.resolveCustomerID(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	session, err := s.billing.CreateCheckoutSession(ctx, billing.CreateCheckoutSessionRequest{
		CustomerID: customerID,
		Amount:     plan.Amount,
		Currency:   plan.Currency,
		Interval:   plan.Interval,
		SuccessURL: s.successURL,
		CancelURL:  s.cancelURL,
		Metadata: map[string]string{
			"user_uid": user.UID,
			"plan":     plan.ID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return session, nil
}

// HandleWebhook dispatches a verified provider event. Unknown event types
// are acknowledged without action so the provider stops retrying them.
func (s *SubscriptionService) HandleWebhook(ctx context.Context, event billing.Event) error {
	const op = "subscription.HandleWebhook"

	switch event.Type {
	case billing.EventCheckoutCompleted:
		if err := s.handleCheckoutCompleted(ctx, event.Object); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	case billing.EventPaymentFailed:
		if err := s.handlePaymentFailed(ctx, event.Object); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	default:
		s.log.Info("ignoring webhook event", slog.String("type", event.Type))
	}
	return nil
}

// handleCheckoutCompleted activates the subscription named in the event.
// The subscription row is keyed by user and the payment by its provider id,
// so a redelivered event settles into the same state it first produced.
func (s *SubscriptionService) handleCheckoutCompleted(ctx context.Context, obj billing.EventObject) error {
	userUID := obj.Metadata["user_uid"]
	planName := obj.Metadata["plan"]
	if userUID == "" {
		return fmt.Errorf("checkout event without user_uid metadata: %w", errs.ErrExternalService)
	}
	plan, ok := models.Plans[planName]
	if !ok {
		return fmt.Errorf("checkout event with plan %q: %w", planName, errs.ErrUnknownPlan)
	}

	now := time.Now()
	endDate := now.AddDate(0, 0, plan.Days)
	sub := models.Subscription{
		UserUID:                userUID,
		Status:                 models.SubscriptionActive,
		Plan:                   plan.ID,
		Amount:                 plan.Amount,
		Currency:               plan.Currency,
		StartDate:              &now,
		EndDate:                &endDate,
		ProviderCustomerID:     obj.CustomerID,
		ProviderSubscriptionID: obj.SubscriptionID,
		AutoRenew:              true,
	}
	// PaymentID may be empty when the provider reports the charge in a
	// separate event; the repository skips the payment row in that case.
	payment := models.Payment{
		PaymentID: obj.PaymentID,
		UserUID:   userUID,
		Amount:    plan.Amount,
		Currency:  plan.Currency,
		Status:    "succeeded",
		Date:      now,
	}
	if err := s.repo.ActivateSubscription(ctx, sub, payment); err != nil {
		return err
	}
	s.invalidateStatus(userUID)
	return nil
}

// handlePaymentFailed marks the subscription inactive and withdraws the
// user's premium access. An event for an unknown subscription is logged
// and acknowledged.
func (s *SubscriptionService) handlePaymentFailed(ctx context.Context, obj billing.EventObject) error {
	sub, err := s.repo.GetSubscriptionByProviderID(ctx, obj.SubscriptionID)
	if err != nil {
		if errors.Is(err, errs.ErrSubscriptionNotFound) {
			s.log.Warn("payment failure for unknown subscription",
				slog.String("provider_subscription_id", obj.SubscriptionID))
			return nil
		}
		return err
	}
	if err := s.repo.DeactivateSubscription(ctx, sub.UserUID, models.SubscriptionInactive); err != nil {
		return err
	}
	s.invalidateStatus(sub.UserUID)
	return nil
}

// Status reports whether the user currently has premium access, serving
// from the cache when possible. A user with no subscription row reports an
// inactive status rather than an error.
func (s *SubscriptionService) Status(ctx context.Context, userUID string) (*models.SubscriptionStatus, error) {
	const op = "subscription.Status"

	key := "subscription:status:" + userUID
	var cached models.SubscriptionStatus
	found, err := s.cache.Get(key, &cached)
	if err != nil {
		s.log.Warn("status cache read failed", sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	status := models.SubscriptionStatus{Status: models.SubscriptionNone}
	sub, err := s.repo.GetSubscription(ctx, userUID)
	switch {
	case err == nil:
		status = models.SubscriptionStatus{
			Active:    sub.Status == models.SubscriptionActive && sub.EndDate != nil && sub.EndDate.After(time.Now()),
			Status:    sub.Status,
			Plan:      sub.Plan,
			EndDate:   sub.EndDate,
			AutoRenew: sub.AutoRenew,
		}
	case errors.Is(err, errs.ErrSubscriptionNotFound):
	default:
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cache.Set(key, status, statusCacheTTL); err != nil {
		s.log.Warn("status cache write failed", sl.Err(err))
	}
	return &status, nil
}

// Cancel ends the user's subscription at the provider and locally, turning
// off auto-renew and premium access.
func (s *SubscriptionService) Cancel(ctx context.Context, userUID string) error {
	const op = "subscription.Cancel"

	sub, err := s.repo.GetSubscription(ctx, userUID)
	if err != nil {
		if errors.Is(err, errs.ErrSubscriptionNotFound) {
			return fmt.Errorf("%s: %w", op, errs.ErrNoActiveSubscription)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if sub.Status != models.SubscriptionActive {
		return fmt.Errorf("%s: %w", op, errs.ErrNoActiveSubscription)
	}

	if sub.ProviderSubscriptionID != "" {
		if err := s.billing.CancelSubscription(ctx, sub.ProviderSubscriptionID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	if err := s.repo.DeactivateSubscription(ctx, userUID, models.SubscriptionCancelled); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidateStatus(userUID)
	return nil
}

// Payments returns the user's payment history.
func (s *SubscriptionService) Payments(ctx context.Context, userUID string) ([]models.Payment, error) {
	const op = "subscription.Payments"
	list, err := s.repo.ListPayments(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// resolveCustomerID reuses the provider customer from a previous
// subscription or registers a new one.
func (s *SubscriptionService) resolveCustomerID(ctx context.Context, user *models.User) (string, error) {
	sub, err := s.repo.GetSubscription(ctx, user.UID)
	if err == nil && sub.ProviderCustomerID != "" {
		return sub.ProviderCustomerID, nil
	}
	if err != nil && !errors.Is(err, errs.ErrSubscriptionNotFound) {
		return "", err
	}

	customer, err := s.billing.CreateCustomer(ctx, billing.CreateCustomerRequest{
		Email: user.Email,
		Name:  user.Name,
	})
	if err != nil {
		return "", err
	}
	return customer.ID, nil
}

func (s *SubscriptionService) invalidateStatus(userUID string) {
	if err := s.cache.Invalidate("subscription:status:" + userUID); err != nil {
		s.log.Warn("status cache invalidate failed", sl.Err(err))
	}
}
