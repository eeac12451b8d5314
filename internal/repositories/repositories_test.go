package repositories_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"phsar/internal/config"
	"phsar/internal/database"
	"phsar/internal/models"
	"phsar/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*gorm.DB, repositories.Repositories, *repositories.GORMStore) {
	t.Helper()
	db, err := database.Setup(&config.Config{
		DBDriver:    "sqlite",
		DatabaseDSN: fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	store := repositories.NewGORMStore(db)
	return db, store.Repos(context.Background()), store
}

func seedListing(t *testing.T, db *gorm.DB, sellerID uint) models.Item {
	t.Helper()
	var active models.ListingStatus
	require.NoError(t, db.First(&active, "name = ?", models.ListingStatusActive).Error)
	listing := models.Listing{
		SellerID: sellerID,
		Title:    "Lot",
		StatusID: active.ID,
		Items:    []models.Item{{Name: "Thing", Price: decimal.RequireFromString("4.25")}},
	}
	require.NoError(t, db.Omit("Status", "Category").Create(&listing).Error)
	return listing.Items[0]
}

func TestOrderRepository_MarkPaidIfPending(t *testing.T) {
	db, repos, _ := setup(t)
	item := seedListing(t, db, 2)

	order := &models.Order{
		CustomerID:  1,
		OrderDate:   time.Now(),
		Status:      models.OrderStatusPending,
		TotalAmount: item.Price,
		Items:       []models.OrderItem{{ItemID: item.ID, Quantity: 1, UnitPrice: item.Price}},
	}
	require.NoError(t, repos.Orders.Create(order))
	require.NotZero(t, order.ID)
	require.Len(t, order.Items, 1)
	assert.Equal(t, order.ID, order.Items[0].OrderID)

	moved, err := repos.Orders.MarkPaidIfPending(order.ID, "pi_1")
	require.NoError(t, err)
	assert.True(t, moved)

	moved, err = repos.Orders.MarkPaidIfPending(order.ID, "pi_2")
	require.NoError(t, err)
	assert.False(t, moved)

	moved, err = repos.Orders.MarkPaidIfPending(9999, "pi_3")
	require.NoError(t, err)
	assert.False(t, moved)

	stored, err := repos.Orders.GetByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, stored.Status)
	assert.Equal(t, "pi_1", stored.PaymentIntentID)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "Thing", stored.Items[0].Item.Name)
}

func TestOrderRepository_SessionAndSellerQueries(t *testing.T) {
	db, repos, _ := setup(t)
	mine := seedListing(t, db, 2)
	theirs := seedListing(t, db, 3)

	var ids []uint
	for _, item := range []models.Item{mine, theirs} {
		o := &models.Order{
			CustomerID:  1,
			OrderDate:   time.Now(),
			Status:      models.OrderStatusPaid,
			TotalAmount: item.Price,
			Items:       []models.OrderItem{{ItemID: item.ID, Quantity: 1, UnitPrice: item.Price}},
		}
		require.NoError(t, repos.Orders.Create(o))
		ids = append(ids, o.ID)
	}
	require.NoError(t, repos.Orders.SetSessionID(ids, "cs_1"))

	bySession, err := repos.Orders.ListBySessionID("cs_1")
	require.NoError(t, err)
	assert.Len(t, bySession, 2)

	sellerOrders, err := repos.Orders.ListBySellerAndStatus(2, models.OrderStatusPaid)
	require.NoError(t, err)
	require.Len(t, sellerOrders, 1)
	assert.Equal(t, ids[0], sellerOrders[0].ID)

	sellerID, err := repos.Catalog.GetSellerIDByItemID(theirs.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(3), sellerID)

	_, err = repos.Catalog.GetSellerIDByItemID(4242)
	assert.True(t, errors.Is(err, repositories.ErrNotFound))

	_, err = repos.Orders.GetByIDForUpdate(4242)
	assert.True(t, errors.Is(err, repositories.ErrNotFound))
}

func TestCartRepository_Lines(t *testing.T) {
	db, repos, _ := setup(t)
	item := seedListing(t, db, 2)
	require.NoError(t, repos.Customers.Create(&models.Customer{ID: 1}))

	_, err := repos.Carts.GetByCustomerID(1)
	assert.True(t, errors.Is(err, repositories.ErrNotFound))

	cart := &models.Cart{CustomerID: 1}
	require.NoError(t, repos.Carts.Create(cart))
	require.NoError(t, repos.Carts.CreateLine(&models.CartItem{CartID: cart.ID, ItemID: item.ID, Quantity: 2}))

	// (cart, item) is unique.
	assert.Error(t, repos.Carts.CreateLine(&models.CartItem{CartID: cart.ID, ItemID: item.ID, Quantity: 1}))

	loaded, err := repos.Carts.GetByCustomerID(1)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.True(t, loaded.Total().Equal(decimal.RequireFromString("8.50")))

	cleared, err := repos.Carts.ClearByCustomerID(1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cleared)

	err = repos.Carts.DeleteLine(cart.ID, item.ID)
	assert.True(t, errors.Is(err, repositories.ErrNotFound))
}

func TestGORMStore_TransactionRollsBack(t *testing.T) {
	_, repos, store := setup(t)

	boom := errors.New("boom")
	err := store.Transaction(context.Background(), func(tx repositories.Repositories) error {
		require.NoError(t, tx.Customers.Create(&models.Customer{ID: 55}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = repos.Customers.GetByID(55)
	assert.True(t, errors.Is(err, repositories.ErrNotFound))
}
