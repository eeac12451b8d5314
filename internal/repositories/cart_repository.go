package repositories

import "phsar/internal/models"

// CartRepository defines the interface for cart data access.
type CartRepository interface {
	// GetByCustomerID loads the cart with its lines and their items.
	GetByCustomerID(customerID uint) (*models.Cart, error)
	Create(cart *models.Cart) error

	GetLine(cartID, itemID uint) (*models.CartItem, error)
	CreateLine(line *models.CartItem) error
	UpdateLineQuantity(lineID uint, quantity int) error
	DeleteLine(cartID, itemID uint) error
	// ClearByCustomerID deletes every line of the customer's cart and reports
	// how many were removed.
	ClearByCustomerID(customerID uint) (int64, error)
}
