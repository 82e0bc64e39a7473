// Package billing implements the client for the external payment provider
// and the verification of its webhook signatures. The provider's billing
// engine itself is opaque: the platform only creates customers and checkout
// sessions, cancels subscriptions and consumes webhook events.
package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/edilconnect/platform/internal/config"
	"github.com/edilconnect/platform/internal/errs"
)

// Client is a thin REST client with a bounded request timeout. Failures and
// timeouts surface as errs.ErrExternalService so callers can treat them as
// retryable.
type Client struct {
	apiURL     string
	secretKey  string
	httpClient *http.Client
}

// NewClient creates a provider client from the billing configuration.
func NewClient(cfg config.Billing) *Client {
	return &Client{
		apiURL:     cfg.APIURL,
		secretKey:  cfg.SecretKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	const op = "billing.do"
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, &buf)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, errs.ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("%s: %w: unexpected status %s", op, errs.ErrExternalService, resp.Status)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s: %w: %w", op, errs.ErrExternalService, err)
		}
	}
	return nil
}

// CreateCustomer registers a customer record with the provider.
func (c *Client) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*Customer, error) {
	var customer Customer
	if err := c.do(ctx, http.MethodPost, "/customers", req, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// CreateCheckoutSession requests a hosted checkout session and returns the
// redirect target.
func (c *Client) CreateCheckoutSession(ctx context.Context, req CreateCheckoutSessionRequest) (*CheckoutSession, error) {
	var session CheckoutSession
	if err := c.do(ctx, http.MethodPost, "/checkout/sessions", req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// CancelSubscription asks the provider to stop billing the subscription.
func (c *Client) CancelSubscription(ctx context.Context, subscriptionID string) error {
	return c.do(ctx, http.MethodDelete, "/subscriptions/"+subscriptionID, nil, nil)
}
