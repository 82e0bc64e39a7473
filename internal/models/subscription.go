package models

import "time"

// Subscription statuses. SubscriptionNone is a synthetic status reported
// for users with no billing record at all.
const (
	SubscriptionPending   = "pending"
	SubscriptionActive    = "active"
	SubscriptionInactive  = "inactive"
	SubscriptionCancelled = "cancelled"
	SubscriptionNone      = "none"
)

// Plan identifiers.
const (
	PlanMonthly = "monthly"
	PlanAnnual  = "annual"
)

// Plan describes one purchasable subscription plan. Amounts are in the
// smallest currency unit.
type Plan struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Interval string `json:"interval"`
	Days     int    `json:"-"` // entitlement length granted per payment
}

// Plans is the fixed plan catalogue.
var Plans = map[string]Plan{
	PlanMonthly: {
		ID:       PlanMonthly,
		Name:     "Abbonamento Mensile",
		Amount:   2999,
		Currency: "EUR",
		Interval: "month",
		Days:     30,
	},
	PlanAnnual: {
		ID:       PlanAnnual,
		Name:     "Abbonamento Annuale",
		Amount:   29900,
		Currency: "EUR",
		Interval: "year",
		Days:     365,
	},
}

// Subscription is the per-user billing record. At most one exists per user;
// Status mirrors into User.SubscriptionActive on every transition.
type Subscription struct {
	UserUID                string     `json:"user_uid"`
	Status                 string     `json:"status"`
	Plan                   string     `json:"plan"`
	Amount                 int64      `json:"amount"`
	Currency               string     `json:"currency"`
	StartDate              *time.Time `json:"start_date,omitempty"`
	EndDate                *time.Time `json:"end_date,omitempty"`
	ProviderCustomerID     string     `json:"-"`
	ProviderSubscriptionID string     `json:"-"`
	AutoRenew              bool       `json:"auto_renew"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// SubscriptionStatus is the client-facing status view. It is what the
// status endpoint returns and what gets cached.
type SubscriptionStatus struct {
	Active    bool       `json:"active"`
	Status    string     `json:"status"`
	Plan      string     `json:"plan,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	AutoRenew bool       `json:"auto_renew"`
}

// Payment is one append-only payment-history entry, keyed by the provider
// payment id so webhook replays cannot duplicate it.
type Payment struct {
	PaymentID string    `json:"payment_id"`
	UserUID   string    `json:"user_uid"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status"`
	Date      time.Time `json:"date"`
}
