package repositories

import (
	"errors"
	"fmt"

	"phsar/internal/models"

	"gorm.io/gorm"
)

// GORMCustomerRepository is a GORM implementation of CustomerRepository.
type GORMCustomerRepository struct {
	db *gorm.DB
}

// NewGORMCustomerRepository creates a new instance of GORMCustomerRepository.
func NewGORMCustomerRepository(db *gorm.DB) *GORMCustomerRepository {
	return &GORMCustomerRepository{db: db}
}

// GetByID retrieves a customer by ID.
func (r *GORMCustomerRepository) GetByID(id uint) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.First(&customer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("customer with ID %d not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get customer by ID %d: %w", id, err)
	}
	return &customer, nil
}

// Create inserts a customer with its externally assigned ID.
func (r *GORMCustomerRepository) Create(customer *models.Customer) error {
	if err := r.db.Create(customer).Error; err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

func (r *GORMCustomerRepository) SetSeller(id uint) error {
	res := r.db.Model(&models.Customer{}).Where("id = ?", id).Update("is_seller", true)
	if res.Error != nil {
		return fmt.Errorf("failed to flag customer %d as seller: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("customer with ID %d not found: %w", id, ErrNotFound)
	}
	return nil
}

// GORMAddressRepository is a GORM implementation of AddressRepository.
type GORMAddressRepository struct {
	db *gorm.DB
}

// NewGORMAddressRepository creates a new instance of GORMAddressRepository.
func NewGORMAddressRepository(db *gorm.DB) *GORMAddressRepository {
	return &GORMAddressRepository{db: db}
}

func (r *GORMAddressRepository) ListByCustomer(customerID uint) ([]models.ShippingAddress, error) {
	var addresses []models.ShippingAddress
	if err := r.db.Where("customer_id = ?", customerID).Order("id").Find(&addresses).Error; err != nil {
		return nil, fmt.Errorf("failed to list addresses for customer %d: %w", customerID, err)
	}
	return addresses, nil
}

func (r *GORMAddressRepository) GetByID(id uint) (*models.ShippingAddress, error) {
	var address models.ShippingAddress
	if err := r.db.First(&address, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("address with ID %d not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get address by ID %d: %w", id, err)
	}
	return &address, nil
}

func (r *GORMAddressRepository) Create(address *models.ShippingAddress) error {
	if err := r.db.Create(address).Error; err != nil {
		return fmt.Errorf("failed to create address: %w", err)
	}
	return nil
}

func (r *GORMAddressRepository) Update(address *models.ShippingAddress) error {
	res := r.db.Save(address)
	if res.Error != nil {
		return fmt.Errorf("failed to update address: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("address with ID %d not found for update: %w", address.ID, ErrNotFound)
	}
	return nil
}

func (r *GORMAddressRepository) Delete(id uint) error {
	res := r.db.Delete(&models.ShippingAddress{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete address: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("address with ID %d not found for deletion: %w", id, ErrNotFound)
	}
	return nil
}

func (r *GORMAddressRepository) ClearDefault(customerID, exceptID uint) error {
	err := r.db.Model(&models.ShippingAddress{}).
		Where("customer_id = ? AND id <> ? AND is_default = ?", customerID, exceptID, true).
		Update("is_default", false).Error
	if err != nil {
		return fmt.Errorf("failed to clear default address for customer %d: %w", customerID, err)
	}
	return nil
}
