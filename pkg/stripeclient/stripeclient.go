// Package stripeclient wraps the Stripe Checkout API and webhook signature
// verification behind a small interface the order flow can depend on.
package stripeclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"
)

// Metadata keys written on every checkout session.
const (
	MetadataCustomerID = "customer_id"
	MetadataOrderIDs   = "order_ids"
	MetadataOrderID    = "order_id"

	orderIDSeparator = "_"
)

// EventCheckoutSessionCompleted is the only event type that settles orders.
const EventCheckoutSessionCompleted = "checkout.session.completed"

// ErrInvalidSignature is returned when a webhook payload fails verification.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// Config holds the Stripe credentials and redirect targets.
type Config struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
	Currency      string
	// APIURL overrides the Stripe API base URL; empty means api.stripe.com.
	APIURL string
}

// LineItem is one purchasable line of a checkout session.
type LineItem struct {
	OrderID   uint
	Name      string
	ImageURL  string
	UnitPrice decimal.Decimal
	Quantity  int64
}

// SessionRequest describes a checkout session covering several orders.
type SessionRequest struct {
	CustomerID uint
	OrderIDs   []uint
	LineItems  []LineItem
}

// Session is the created checkout session.
type Session struct {
	ID  string
	URL string
}

// WebhookEvent is the verified part of a webhook delivery the order flow
// cares about.
type WebhookEvent struct {
	ID              string
	Type            string
	SessionID       string
	PaymentIntentID string
	Metadata        map[string]string
}

// Client talks to Stripe.
type Client struct {
	cfg      Config
	sessions session.Client
}

// New creates a Client. Network retries are disabled so a failed session
// creation surfaces immediately.
func New(cfg Config) *Client {
	backendCfg := &stripe.BackendConfig{
		MaxNetworkRetries: stripe.Int64(0),
	}
	if cfg.APIURL != "" {
		backendCfg.URL = stripe.String(cfg.APIURL)
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg)

	return &Client{
		cfg:      cfg,
		sessions: session.Client{B: backend, Key: cfg.SecretKey},
	}
}

// CreateCheckoutSession creates a payment-mode session with one line item
// per order. Each line carries its order id in product metadata, and the
// session carries the customer id and all order ids.
func (c *Client) CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(c.cfg.SuccessURL),
		CancelURL:  stripe.String(c.cfg.CancelURL),
	}
	params.Context = ctx
	params.AddMetadata(MetadataCustomerID, strconv.FormatUint(uint64(req.CustomerID), 10))
	params.AddMetadata(MetadataOrderIDs, EncodeOrderIDs(req.OrderIDs))

	for _, li := range req.LineItems {
		product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(li.Name),
			Metadata: map[string]string{
				MetadataOrderID: strconv.FormatUint(uint64(li.OrderID), 10),
			},
		}
		if li.ImageURL != "" {
			product.Images = []*string{stripe.String(li.ImageURL)}
		}
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(li.Quantity),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(c.cfg.Currency),
				UnitAmount:  stripe.Int64(MinorUnits(li.UnitPrice)),
				ProductData: product,
			},
		})
	}

	s, err := c.sessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session creation failed: %w", err)
	}
	return &Session{ID: s.ID, URL: s.URL}, nil
}

// ParseWebhookEvent verifies the Stripe-Signature header and decodes the
// event. Checkout session events also carry the session id, payment intent
// and metadata.
func (c *Client) ParseWebhookEvent(payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, c.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &WebhookEvent{ID: event.ID, Type: string(event.Type)}
	if !strings.HasPrefix(out.Type, "checkout.session.") || event.Data == nil {
		return out, nil
	}

	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
		return nil, fmt.Errorf("failed to decode checkout session of event %s: %w", event.ID, err)
	}
	out.SessionID = cs.ID
	out.Metadata = cs.Metadata
	if cs.PaymentIntent != nil {
		out.PaymentIntentID = cs.PaymentIntent.ID
	}
	return out, nil
}

// MinorUnits converts a decimal amount into integer cents, truncating any
// fraction beyond two places.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).IntPart()
}

// EncodeOrderIDs joins order ids into the composite metadata value.
func EncodeOrderIDs(ids []uint) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatUint(uint64(id), 10))
	}
	return strings.Join(parts, orderIDSeparator)
}

// DecodeOrderIDs parses the composite metadata value. Every segment must be
// a positive integer.
func DecodeOrderIDs(s string) ([]uint, error) {
	if strings.TrimSpace(s) == "" {
		return nil, errors.New("empty order id list")
	}
	parts := strings.Split(s, orderIDSeparator)
	ids := make([]uint, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("invalid order id %q", p)
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}
