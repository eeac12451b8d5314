package repositories

import (
	"errors"
	"fmt"

	"phsar/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

func (r *GORMCartRepository) GetByCustomerID(customerID uint) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("cart_items.id") }).
		Preload("Items.Item").
		First(&cart, "customer_id = ?", customerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart for customer %d not found: %w", customerID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart for customer %d: %w", customerID, err)
	}
	return &cart, nil
}

func (r *GORMCartRepository) Create(cart *models.Cart) error {
	if err := r.db.Omit(clause.Associations).Create(cart).Error; err != nil {
		return fmt.Errorf("failed to create cart: %w", err)
	}
	return nil
}

func (r *GORMCartRepository) GetLine(cartID, itemID uint) (*models.CartItem, error) {
	var line models.CartItem
	if err := r.db.First(&line, "cart_id = ? AND item_id = ?", cartID, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("item %d not in cart %d: %w", itemID, cartID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart line: %w", err)
	}
	return &line, nil
}

func (r *GORMCartRepository) CreateLine(line *models.CartItem) error {
	if err := r.db.Omit(clause.Associations).Create(line).Error; err != nil {
		return fmt.Errorf("failed to create cart line: %w", err)
	}
	return nil
}

func (r *GORMCartRepository) UpdateLineQuantity(lineID uint, quantity int) error {
	res := r.db.Model(&models.CartItem{}).Where("id = ?", lineID).Update("quantity", quantity)
	if res.Error != nil {
		return fmt.Errorf("failed to update cart line %d: %w", lineID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart line %d not found for update: %w", lineID, ErrNotFound)
	}
	return nil
}

func (r *GORMCartRepository) DeleteLine(cartID, itemID uint) error {
	res := r.db.Where("cart_id = ? AND item_id = ?", cartID, itemID).Delete(&models.CartItem{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete cart line: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("item %d not in cart %d: %w", itemID, cartID, ErrNotFound)
	}
	return nil
}

func (r *GORMCartRepository) ClearByCustomerID(customerID uint) (int64, error) {
	cartIDs := r.db.Model(&models.Cart{}).Select("id").Where("customer_id = ?", customerID)
	res := r.db.Where("cart_id IN (?)", cartIDs).Delete(&models.CartItem{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to clear cart for customer %d: %w", customerID, res.Error)
	}
	return res.RowsAffected, nil
}
