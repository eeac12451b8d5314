package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"phsar/internal/models"
	"phsar/internal/repositories"
	"phsar/pkg/metrics"
	"phsar/pkg/rabbitmq"
	"phsar/pkg/stripeclient"
)

// CheckoutResult is returned after a successful checkout.
type CheckoutResult struct {
	SessionURL      string `json:"sessionUrl"`
	SessionID       string `json:"sessionId"`
	CreatedOrderIDs []uint `json:"createdOrderIds"`
}

// OrderEvent is the payload of the order events published to the broker.
type OrderEvent struct {
	OrderID     uint               `json:"orderId"`
	CustomerID  uint               `json:"customerId"`
	Status      models.OrderStatus `json:"status"`
	TotalAmount string             `json:"totalAmount"`
	SessionID   string             `json:"sessionId,omitempty"`
}

func newOrderEvent(o *models.Order) OrderEvent {
	return OrderEvent{
		OrderID:     o.ID,
		CustomerID:  o.CustomerID,
		Status:      o.Status,
		TotalAmount: o.TotalAmount.StringFixed(2),
		SessionID:   o.StripeSessionID,
	}
}

// CheckoutService turns a cart into pending orders and a payment session.
type CheckoutService struct {
	store     repositories.Store
	gateway   PaymentGateway
	publisher EventPublisher
	metrics   *metrics.ServerMetrics
	now       func() time.Time
}

// NewCheckoutService creates a new CheckoutService. publisher and m may be nil.
func NewCheckoutService(store repositories.Store, gateway PaymentGateway, publisher EventPublisher, m *metrics.ServerMetrics) *CheckoutService {
	return &CheckoutService{
		store:     store,
		gateway:   gateway,
		publisher: publisher,
		metrics:   m,
		now:       time.Now,
	}
}

// Checkout creates one PENDING order per cart line and a single payment
// session covering all of them. When the gateway call fails the orders stay
// PENDING without a session id and ErrGateway is returned.
func (s *CheckoutService) Checkout(ctx context.Context, customerID uint) (*CheckoutResult, error) {
	var (
		orders     []models.Order
		session    *stripeclient.Session
		gatewayErr error
	)

	err := s.store.Transaction(ctx, func(repos repositories.Repositories) error {
		cart, err := repos.Carts.GetByCustomerID(customerID)
		if err != nil {
			if isNotFound(err) {
				return fmt.Errorf("customer %d has no cart: %w", customerID, ErrEmptyCart)
			}
			return err
		}
		if len(cart.Items) == 0 {
			return fmt.Errorf("customer %d: %w", customerID, ErrEmptyCart)
		}

		orderDate := s.now().UTC()
		req := stripeclient.SessionRequest{CustomerID: customerID}
		for _, line := range cart.Items {
			order := models.Order{
				CustomerID:  customerID,
				OrderDate:   orderDate,
				Status:      models.OrderStatusPending,
				TotalAmount: line.LineTotal(),
				Items: []models.OrderItem{{
					ItemID:    line.ItemID,
					Quantity:  line.Quantity,
					UnitPrice: line.Item.Price,
				}},
			}
			if err := repos.Orders.Create(&order); err != nil {
				return err
			}
			orders = append(orders, order)

			req.OrderIDs = append(req.OrderIDs, order.ID)
			req.LineItems = append(req.LineItems, stripeclient.LineItem{
				OrderID:   order.ID,
				Name:      line.Item.Name,
				ImageURL:  line.Item.ImageURL,
				UnitPrice: line.Item.Price,
				Quantity:  int64(line.Quantity),
			})
		}

		session, gatewayErr = s.gateway.CreateCheckoutSession(ctx, req)
		if gatewayErr != nil {
			// Commit the pending orders without a session.
			return nil
		}
		if err := repos.Orders.SetSessionID(req.OrderIDs, session.ID); err != nil {
			return err
		}
		for i := range orders {
			orders[i].StripeSessionID = session.ID
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrEmptyCart) {
			s.metrics.CheckoutResult("empty_cart")
		} else {
			s.metrics.CheckoutResult("error")
		}
		return nil, fmt.Errorf("checkout failed: %w", err)
	}

	for i := range orders {
		publish(s.publisher, rabbitmq.EventOrderCreated, newOrderEvent(&orders[i]))
	}

	ids := make([]uint, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}

	if gatewayErr != nil {
		log.Printf("Checkout for customer %d left orders %v pending: %v", customerID, ids, gatewayErr)
		s.metrics.CheckoutResult("gateway_error")
		return nil, fmt.Errorf("%w: %v", ErrGateway, gatewayErr)
	}

	log.Printf("Checkout session %s created for customer %d, orders %v", session.ID, customerID, ids)
	s.metrics.CheckoutResult("success")
	return &CheckoutResult{
		SessionURL:      session.URL,
		SessionID:       session.ID,
		CreatedOrderIDs: ids,
	}, nil
}
