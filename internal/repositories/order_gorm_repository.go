package repositories

import (
	"errors"
	"fmt"

	"phsar/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

func (r *GORMOrderRepository) withItems(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id") }).
		Preload("Items.Item").
		Preload("ShippingAddress")
}

func (r *GORMOrderRepository) Create(order *models.Order) error {
	items := order.Items
	order.Items = nil
	if err := r.db.Omit(clause.Associations).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	if len(items) > 0 {
		if err := r.db.Omit(clause.Associations).Create(&items).Error; err != nil {
			return fmt.Errorf("failed to create items for order %d: %w", order.ID, err)
		}
	}
	order.Items = items
	return nil
}

func (r *GORMOrderRepository) GetByID(id uint) (*models.Order, error) {
	return r.get(r.db, id)
}

func (r *GORMOrderRepository) GetByIDForUpdate(id uint) (*models.Order, error) {
	return r.get(r.db.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GORMOrderRepository) get(db *gorm.DB, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.withItems(db).First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with ID %d not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %d: %w", id, err)
	}
	return &order, nil
}

func (r *GORMOrderRepository) SetSessionID(orderIDs []uint, sessionID string) error {
	if len(orderIDs) == 0 {
		return nil
	}
	err := r.db.Model(&models.Order{}).
		Where("id IN ?", orderIDs).
		Update("stripe_session_id", sessionID).Error
	if err != nil {
		return fmt.Errorf("failed to set session %s on orders: %w", sessionID, err)
	}
	return nil
}

func (r *GORMOrderRepository) MarkPaidIfPending(id uint, paymentIntentID string) (bool, error) {
	res := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, string(models.OrderStatusPending)).
		Updates(map[string]interface{}{
			"status":            string(models.OrderStatusPaid),
			"payment_intent_id": paymentIntentID,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark order %d paid: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *GORMOrderRepository) UpdateStatus(id uint, status models.OrderStatus) error {
	res := r.db.Model(&models.Order{}).Where("id = ?", id).Update("status", string(status))
	if res.Error != nil {
		return fmt.Errorf("failed to update status of order %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %d not found for status update: %w", id, ErrNotFound)
	}
	return nil
}

func (r *GORMOrderRepository) ListBySessionID(sessionID string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Where("stripe_session_id = ?", sessionID).Order("id").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders for session %s: %w", sessionID, err)
	}
	return orders, nil
}

func (r *GORMOrderRepository) ListByCustomer(customerID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.withItems(r.db).
		Where("customer_id = ?", customerID).
		Order("order_date DESC, id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for customer %d: %w", customerID, err)
	}
	return orders, nil
}

// ListBySellerAndStatus joins order_items -> items -> listings to find the
// orders containing the seller's items.
func (r *GORMOrderRepository) ListBySellerAndStatus(sellerID uint, status models.OrderStatus) ([]models.Order, error) {
	sellerOrderIDs := r.db.Table("order_items").
		Select("order_items.order_id").
		Joins("JOIN items ON items.id = order_items.item_id").
		Joins("JOIN listings ON listings.id = items.listing_id").
		Where("listings.seller_id = ?", sellerID)

	var orders []models.Order
	err := r.withItems(r.db).
		Where("status = ? AND id IN (?)", string(status), sellerOrderIDs).
		Order("order_date DESC, id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list %s orders for seller %d: %w", status, sellerID, err)
	}
	return orders, nil
}
