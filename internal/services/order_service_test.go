package services_test

import (
	"context"
	"testing"
	"time"

	"phsar/internal/models"
	"phsar/internal/services"
	"phsar/pkg/rabbitmq"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createOrder(t *testing.T, db *gorm.DB, customerID uint, item models.Item, status models.OrderStatus, date time.Time) models.Order {
	t.Helper()
	order := models.Order{
		CustomerID:  customerID,
		OrderDate:   date,
		Status:      status,
		TotalAmount: item.Price,
		Items: []models.OrderItem{{
			ItemID:    item.ID,
			Quantity:  1,
			UnitPrice: item.Price,
		}},
	}
	require.NoError(t, db.Create(&order).Error)
	return order
}

func TestOrderService_UpdateStatus(t *testing.T) {
	db, store := setupTestDB(t)
	f := seedCatalog(t, db)
	publisher := &recordingPublisher{}
	svc := services.NewOrderService(store, publisher, nil)
	ctx := context.Background()

	order := createOrder(t, db, f.buyer.ID, f.itemA, models.OrderStatusPaid, time.Now())

	summary, err := svc.UpdateStatus(ctx, order.ID, f.seller.ID, "delivering")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivering, summary.Status)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, "Item A", summary.Items[0].Name)
	assert.Equal(t, "N/A", summary.ShippingAddressSummary)
	assert.Equal(t, 1, publisher.count(rabbitmq.EventOrderStatusChanged))

	var stored models.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	assert.Equal(t, models.OrderStatusDelivering, stored.Status)

	// Any non-PAID status is accepted from any state.
	_, err = svc.UpdateStatus(ctx, order.ID, f.seller.ID, "PENDING")
	assert.NoError(t, err)
}

func TestOrderService_UpdateStatusRejections(t *testing.T) {
	db, store := setupTestDB(t)
	f := seedCatalog(t, db)
	svc := services.NewOrderService(store, nil, nil)
	ctx := context.Background()

	order := createOrder(t, db, f.buyer.ID, f.itemA, models.OrderStatusPaid, time.Now())

	_, err := svc.UpdateStatus(ctx, order.ID, f.buyer.ID, "DELIVERING")
	assert.ErrorIs(t, err, services.ErrAccessDenied)

	_, err = svc.UpdateStatus(ctx, order.ID, f.seller.ID, "PAID")
	assert.ErrorIs(t, err, services.ErrInvalidTransition)

	_, err = svc.UpdateStatus(ctx, order.ID, f.seller.ID, "SHIPPED")
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = svc.UpdateStatus(ctx, 424242, f.seller.ID, "DELIVERING")
	assert.ErrorIs(t, err, services.ErrNotFound)

	empty := models.Order{CustomerID: f.buyer.ID, Status: models.OrderStatusPaid, TotalAmount: decimal.Zero}
	require.NoError(t, db.Create(&empty).Error)
	_, err = svc.UpdateStatus(ctx, empty.ID, f.seller.ID, "DELIVERING")
	assert.ErrorIs(t, err, services.ErrInvalidTransition)

	var stored models.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	assert.Equal(t, models.OrderStatusPaid, stored.Status)
}

func TestOrderService_SellerOrders(t *testing.T) {
	db, store := setupTestDB(t)
	f := seedCatalog(t, db)
	svc := services.NewOrderService(store, nil, nil)
	ctx := context.Background()

	paid := createOrder(t, db, f.buyer.ID, f.itemA, models.OrderStatusPaid, time.Now())
	createOrder(t, db, f.buyer.ID, f.itemB, models.OrderStatusPending, time.Now())
	processing := createOrder(t, db, f.buyer.ID, f.itemB, models.OrderStatusProcessing, time.Now())

	pending, err := svc.SellerOrders(ctx, f.seller.ID, "pending")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, paid.ID, pending[0].ID)

	inProgress, err := svc.SellerOrders(ctx, f.seller.ID, "processing")
	require.NoError(t, err)
	require.Len(t, inProgress, 1)
	assert.Equal(t, processing.ID, inProgress[0].ID)

	none, err := svc.SellerOrders(ctx, f.buyer.ID, "pending")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = svc.SellerOrders(ctx, f.seller.ID, "returned")
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestOrderService_CustomerOrdersNewestFirst(t *testing.T) {
	db, store := setupTestDB(t)
	f := seedCatalog(t, db)
	svc := services.NewOrderService(store, nil, nil)

	older := createOrder(t, db, f.buyer.ID, f.itemA, models.OrderStatusPaid, time.Now().Add(-time.Hour))
	newer := createOrder(t, db, f.buyer.ID, f.itemB, models.OrderStatusPending, time.Now())

	history, err := svc.CustomerOrders(context.Background(), f.buyer.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, newer.ID, history[0].ID)
	assert.Equal(t, older.ID, history[1].ID)
}
