package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"phsar/internal/models"
	"phsar/internal/repositories"
	"phsar/pkg/metrics"
	"phsar/pkg/rabbitmq"
)

// sellerTabs maps the seller dashboard tabs onto order statuses. The pending
// tab lists paid orders awaiting fulfilment.
var sellerTabs = map[string]models.OrderStatus{
	"pending":    models.OrderStatusPaid,
	"processing": models.OrderStatusProcessing,
	"delivering": models.OrderStatusDelivering,
	"delivered":  models.OrderStatusDelivered,
}

// OrderService handles the seller order workflow and customer order history.
type OrderService struct {
	store     repositories.Store
	publisher EventPublisher
	metrics   *metrics.ServerMetrics
}

// NewOrderService creates a new OrderService. publisher and m may be nil.
func NewOrderService(store repositories.Store, publisher EventPublisher, m *metrics.ServerMetrics) *OrderService {
	return &OrderService{
		store:     store,
		publisher: publisher,
		metrics:   m,
	}
}

// UpdateStatus moves an order to newStatus on behalf of the seller owning its
// item. The order row is locked for the duration of the check and write.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, sellerID uint, newStatus string) (*models.OrderSummary, error) {
	status, err := models.ParseOrderStatus(newStatus)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrValidation)
	}

	var updated *models.Order
	err = s.store.Transaction(ctx, func(repos repositories.Repositories) error {
		order, err := repos.Orders.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if len(order.Items) == 0 {
			return fmt.Errorf("order %d has no items: %w", orderID, ErrInvalidTransition)
		}

		ownerID, err := repos.Catalog.GetSellerIDByItemID(order.Items[0].ItemID)
		if err != nil {
			return err
		}
		if ownerID != sellerID {
			return fmt.Errorf("seller %d does not own order %d: %w", sellerID, orderID, ErrAccessDenied)
		}

		// TODO: decide whether sellers may move orders backwards (e.g. DELIVERED
		// to PROCESSING); any non-PAID target is accepted today.
		if status == models.OrderStatusPaid {
			return fmt.Errorf("order %d cannot be set to PAID by a seller: %w", orderID, ErrInvalidTransition)
		}

		if err := repos.Orders.UpdateStatus(orderID, status); err != nil {
			return err
		}
		order.Status = status
		updated = order
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update status of order %d: %w", orderID, err)
	}

	log.Printf("Seller %d moved order %d to %s", sellerID, orderID, status)
	publish(s.publisher, rabbitmq.EventOrderStatusChanged, newOrderEvent(updated))
	s.metrics.StatusChanged(string(status))

	summary := models.NewOrderSummary(updated)
	return &summary, nil
}

// SellerOrders lists orders containing the seller's items for a dashboard tab.
func (s *OrderService) SellerOrders(ctx context.Context, sellerID uint, tab string) ([]models.OrderSummary, error) {
	status, ok := sellerTabs[strings.ToLower(tab)]
	if !ok {
		return nil, fmt.Errorf("unknown order tab %q: %w", tab, ErrValidation)
	}
	orders, err := s.store.Repos(ctx).Orders.ListBySellerAndStatus(sellerID, status)
	if err != nil {
		return nil, err
	}
	return models.NewOrderSummaries(orders), nil
}

// CustomerOrders returns the customer's order history, newest first.
func (s *OrderService) CustomerOrders(ctx context.Context, customerID uint) ([]models.OrderSummary, error) {
	orders, err := s.store.Repos(ctx).Orders.ListByCustomer(customerID)
	if err != nil {
		return nil, err
	}
	return models.NewOrderSummaries(orders), nil
}
