package repositories

import "phsar/internal/models"

// CustomerRepository defines the interface for customer data access.
type CustomerRepository interface {
	GetByID(id uint) (*models.Customer, error)
	Create(customer *models.Customer) error
	// SetSeller flags the customer as a seller.
	SetSeller(id uint) error
}

// AddressRepository defines the interface for shipping address data access.
type AddressRepository interface {
	ListByCustomer(customerID uint) ([]models.ShippingAddress, error)
	GetByID(id uint) (*models.ShippingAddress, error)
	Create(address *models.ShippingAddress) error
	Update(address *models.ShippingAddress) error
	Delete(id uint) error
	// ClearDefault unsets the default flag on every address of the customer
	// except exceptID.
	ClearDefault(customerID, exceptID uint) error
}
