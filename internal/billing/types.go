package billing

// Webhook event types the platform reacts to. Everything else is ignored.
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventPaymentFailed     = "invoice.payment_failed"
)

// CreateCustomerRequest registers a platform user with the provider.
type CreateCustomerRequest struct {
	Email    string            `json:"email"`
	Name     string            `json:"name,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Customer is the provider's customer record.
type Customer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// CreateCheckoutSessionRequest asks the provider for a hosted checkout page.
type CreateCheckoutSessionRequest struct {
	CustomerID  string            `json:"customer"`
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Interval    string            `json:"interval"`
	Description string            `json:"description"`
	SuccessURL  string            `json:"success_url"`
	CancelURL   string            `json:"cancel_url"`
	Metadata    map[string]string `json:"metadata"`
}

// CheckoutSession is the provider's response to a session request. URL is
// the redirect target for the client.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Event is the envelope of a webhook delivery. The raw body must be
// signature-checked before this structure is populated.
type Event struct {
	Type   string      `json:"type"`
	Object EventObject `json:"object"`
}

// EventObject carries the provider-side identifiers and the metadata the
// platform attached at checkout time (user_uid, plan_id).
type EventObject struct {
	ID             string            `json:"id"`
	CustomerID     string            `json:"customer"`
	SubscriptionID string            `json:"subscription"`
	PaymentID      string            `json:"payment_intent"`
	Metadata       map[string]string `json:"metadata"`
}
