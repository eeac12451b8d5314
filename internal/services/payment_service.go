package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"

	"phsar/internal/models"
	"phsar/internal/repositories"
	"phsar/pkg/metrics"
	"phsar/pkg/rabbitmq"
	"phsar/pkg/stripeclient"
)

// PaymentStatus is the aggregated state of all orders in one session.
type PaymentStatus string

const (
	PaymentStatusNotFound PaymentStatus = "NOT_FOUND"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusSuccess  PaymentStatus = "SUCCESS"
	PaymentStatusPending  PaymentStatus = "PENDING"
)

// ClientWeb selects the browser redirect target; any other client value
// gets the mobile app scheme.
const ClientWeb = "web"

// RedirectConfig holds the return targets for the mobile app and the web
// client.
type RedirectConfig struct {
	AppScheme  string
	WebBaseURL string
}

// WebhookResult describes what a webhook delivery did.
type WebhookResult struct {
	EventID          string
	Ignored          bool
	Duplicate        bool
	PaidOrderIDs     []uint
	CartItemsCleared int64
}

// PaymentService settles orders from gateway webhooks and reports payment
// status to returning clients.
type PaymentService struct {
	store     repositories.Store
	gateway   PaymentGateway
	ledger    EventLedger
	publisher EventPublisher
	metrics   *metrics.ServerMetrics
	redirects RedirectConfig
}

// NewPaymentService creates a new PaymentService. ledger, publisher and m
// may be nil.
func NewPaymentService(store repositories.Store, gateway PaymentGateway, ledger EventLedger, publisher EventPublisher, m *metrics.ServerMetrics, redirects RedirectConfig) *PaymentService {
	return &PaymentService{
		store:     store,
		gateway:   gateway,
		ledger:    ledger,
		publisher: publisher,
		metrics:   m,
		redirects: redirects,
	}
}

// HandleWebhook verifies and applies a gateway event. Only completed checkout
// sessions change state: each referenced PENDING order becomes PAID and, if
// any order moved, the customer's cart is emptied. Redeliveries change
// nothing.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	event, err := s.gateway.ParseWebhookEvent(payload, signature)
	if err != nil {
		if errors.Is(err, stripeclient.ErrInvalidSignature) {
			s.metrics.WebhookOutcome(metrics.WebhookRejected)
			return nil, fmt.Errorf("%w: %v", ErrSignature, err)
		}
		s.metrics.WebhookOutcome(metrics.WebhookRejected)
		return nil, fmt.Errorf("%w: %v", ErrMalformedMetadata, err)
	}

	result := &WebhookResult{EventID: event.ID}
	if event.Type != stripeclient.EventCheckoutSessionCompleted {
		log.Printf("Ignoring webhook event %s of type %s", event.ID, event.Type)
		result.Ignored = true
		s.metrics.WebhookOutcome(metrics.WebhookIgnored)
		return result, nil
	}

	if s.ledger != nil {
		seen, err := s.ledger.Seen(ctx, event.ID)
		if err != nil {
			log.Printf("Warning: event ledger lookup failed for %s: %v", event.ID, err)
		} else if seen {
			log.Printf("Webhook event %s already processed", event.ID)
			result.Duplicate = true
			s.metrics.WebhookOutcome(metrics.WebhookDuplicate)
			return result, nil
		}
	}

	orderIDs, customerID, err := parseSessionMetadata(event.Metadata)
	if err != nil {
		log.Printf("Webhook event %s (session %s) has bad metadata: %v", event.ID, event.SessionID, err)
		s.metrics.WebhookOutcome(metrics.WebhookRejected)
		return nil, fmt.Errorf("event %s: %w", event.ID, err)
	}

	var paid []models.Order
	err = s.store.Transaction(ctx, func(repos repositories.Repositories) error {
		paid = nil
		for _, id := range orderIDs {
			moved, err := repos.Orders.MarkPaidIfPending(id, event.PaymentIntentID)
			if err != nil {
				return err
			}
			if !moved {
				log.Printf("Order %d from session %s is missing or not PENDING; skipping", id, event.SessionID)
				continue
			}
			order, err := repos.Orders.GetByID(id)
			if err != nil {
				return err
			}
			paid = append(paid, *order)
		}
		if len(paid) == 0 {
			return nil
		}
		cleared, err := repos.Carts.ClearByCustomerID(customerID)
		if err != nil {
			return err
		}
		result.CartItemsCleared = cleared
		return nil
	})
	if err != nil {
		s.metrics.WebhookOutcome(metrics.WebhookFailed)
		return nil, fmt.Errorf("failed to apply webhook event %s: %w", event.ID, err)
	}

	if s.ledger != nil {
		if err := s.ledger.Mark(ctx, event.ID); err != nil {
			log.Printf("Warning: failed to record webhook event %s: %v", event.ID, err)
		}
	}
	for i := range paid {
		result.PaidOrderIDs = append(result.PaidOrderIDs, paid[i].ID)
		publish(s.publisher, rabbitmq.EventOrderPaid, newOrderEvent(&paid[i]))
	}
	s.metrics.OrdersMarkedPaid(len(paid))
	s.metrics.WebhookOutcome(metrics.WebhookProcessed)

	log.Printf("Webhook event %s: orders %v paid, %d cart lines cleared for customer %d",
		event.ID, result.PaidOrderIDs, result.CartItemsCleared, customerID)
	return result, nil
}

func parseSessionMetadata(md map[string]string) ([]uint, uint, error) {
	rawOrderIDs, ok := md[stripeclient.MetadataOrderIDs]
	if !ok {
		return nil, 0, fmt.Errorf("missing %s: %w", stripeclient.MetadataOrderIDs, ErrMalformedMetadata)
	}
	orderIDs, err := stripeclient.DecodeOrderIDs(rawOrderIDs)
	if err != nil {
		return nil, 0, fmt.Errorf("%v: %w", err, ErrMalformedMetadata)
	}

	rawCustomerID, ok := md[stripeclient.MetadataCustomerID]
	if !ok {
		return nil, 0, fmt.Errorf("missing %s: %w", stripeclient.MetadataCustomerID, ErrMalformedMetadata)
	}
	customerID, err := strconv.ParseUint(strings.TrimSpace(rawCustomerID), 10, 64)
	if err != nil || customerID == 0 {
		return nil, 0, fmt.Errorf("invalid %s %q: %w", stripeclient.MetadataCustomerID, rawCustomerID, ErrMalformedMetadata)
	}
	return orderIDs, uint(customerID), nil
}

// PaymentStatus aggregates the orders of a session: none is NOT_FOUND, any
// FAILED or CANCELLED is FAILED, all PAID is SUCCESS, anything else PENDING.
func (s *PaymentService) PaymentStatus(ctx context.Context, sessionID string) (PaymentStatus, error) {
	orders, err := s.store.Repos(ctx).Orders.ListBySessionID(sessionID)
	if err != nil {
		return "", err
	}
	return aggregatePaymentStatus(orders), nil
}

func aggregatePaymentStatus(orders []models.Order) PaymentStatus {
	if len(orders) == 0 {
		return PaymentStatusNotFound
	}
	allPaid := true
	for _, o := range orders {
		switch o.Status {
		case models.OrderStatusFailed, models.OrderStatusCancelled:
			return PaymentStatusFailed
		case models.OrderStatusPaid:
		default:
			allPaid = false
		}
	}
	if allPaid {
		return PaymentStatusSuccess
	}
	return PaymentStatusPending
}

// ReturnURL is where the gateway's success redirect forwards the client.
func (s *PaymentService) ReturnURL(sessionID, client string) string {
	return s.redirectURL("checkout/status", client, url.Values{"session_id": {sessionID}})
}

// CancelURL is where the gateway's cancel redirect forwards the client.
func (s *PaymentService) CancelURL(client string) string {
	return s.redirectURL("checkout/cancel", client, nil)
}

func (s *PaymentService) redirectURL(path, client string, query url.Values) string {
	var target string
	if strings.EqualFold(client, ClientWeb) {
		target = strings.TrimRight(s.redirects.WebBaseURL, "/") + "/#/" + path
	} else {
		target = s.redirects.AppScheme + path
	}
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return target
}
