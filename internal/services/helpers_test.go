package services_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"phsar/internal/config"
	"phsar/internal/database"
	"phsar/internal/models"
	"phsar/internal/repositories"
	"phsar/pkg/stripeclient"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) (*gorm.DB, *repositories.GORMStore) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Setup(&config.Config{
		DBDriver:    "sqlite",
		DatabaseDSN: fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db, repositories.NewGORMStore(db)
}

type fixture struct {
	buyer  models.Customer
	seller models.Customer
	itemA  models.Item
	itemB  models.Item
}

// seedCatalog creates a buyer, a seller and one listing with two items
// priced 5.00 and 3.00.
func seedCatalog(t *testing.T, db *gorm.DB) fixture {
	t.Helper()
	f := fixture{
		buyer:  models.Customer{ID: 100},
		seller: models.Customer{ID: 200, IsSeller: true},
	}
	require.NoError(t, db.Create(&f.buyer).Error)
	require.NoError(t, db.Create(&f.seller).Error)

	var active models.ListingStatus
	require.NoError(t, db.First(&active, "name = ?", models.ListingStatusActive).Error)

	listing := models.Listing{
		SellerID: f.seller.ID,
		Title:    "Vintage lot",
		StatusID: active.ID,
		Items: []models.Item{
			{Name: "Item A", Price: decimal.RequireFromString("5.00")},
			{Name: "Item B", Price: decimal.RequireFromString("3.00")},
		},
	}
	require.NoError(t, db.Omit("Status", "Category").Create(&listing).Error)
	f.itemA = listing.Items[0]
	f.itemB = listing.Items[1]
	return f
}

// fillCart puts itemA x2 and itemB x1 into the buyer's cart.
func fillCart(t *testing.T, db *gorm.DB, f fixture) {
	t.Helper()
	cart := models.Cart{CustomerID: f.buyer.ID}
	require.NoError(t, db.Where(cart).FirstOrCreate(&cart).Error)
	require.NoError(t, db.Create(&models.CartItem{CartID: cart.ID, ItemID: f.itemA.ID, Quantity: 2}).Error)
	require.NoError(t, db.Create(&models.CartItem{CartID: cart.ID, ItemID: f.itemB.ID, Quantity: 1}).Error)
}

func countCartLines(t *testing.T, db *gorm.DB, customerID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.CartItem{}).
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("carts.customer_id = ?", customerID).
		Count(&n).Error)
	return n
}

// MockGateway is a mock implementation of services.PaymentGateway.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateCheckoutSession(ctx context.Context, req stripeclient.SessionRequest) (*stripeclient.Session, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripeclient.Session), args.Error(1)
}

func (m *MockGateway) ParseWebhookEvent(payload []byte, signature string) (*stripeclient.WebhookEvent, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripeclient.WebhookEvent), args.Error(1)
}

// recordingPublisher collects published event types.
type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) PublishEvent(eventType string, _ interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return nil
}

func (p *recordingPublisher) count(eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e == eventType {
			n++
		}
	}
	return n
}

// memoryLedger is an in-process EventLedger.
type memoryLedger struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{seen: map[string]bool{}}
}

func (l *memoryLedger) Seen(_ context.Context, id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seen[id], nil
}

func (l *memoryLedger) Mark(_ context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen[id] = true
	return nil
}
