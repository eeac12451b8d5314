package repositories

import "phsar/internal/models"

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// Create inserts the order and its item snapshots.
	Create(order *models.Order) error
	GetByID(id uint) (*models.Order, error)
	// GetByIDForUpdate loads the order and takes a row lock where the
	// database supports it. Only meaningful inside a transaction.
	GetByIDForUpdate(id uint) (*models.Order, error)

	SetSessionID(orderIDs []uint, sessionID string) error
	// MarkPaidIfPending moves a PENDING order to PAID in one conditional
	// update and reports whether this call performed the transition.
	MarkPaidIfPending(id uint, paymentIntentID string) (bool, error)
	UpdateStatus(id uint, status models.OrderStatus) error

	ListBySessionID(sessionID string) ([]models.Order, error)
	ListByCustomer(customerID uint) ([]models.Order, error)
	ListBySellerAndStatus(sellerID uint, status models.OrderStatus) ([]models.Order, error)
}
