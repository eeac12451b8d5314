package services

import (
	"context"
	"errors"
	"fmt"

	"phsar/internal/models"
	"phsar/internal/repositories"
)

// CustomerService manages customer profiles and shipping addresses.
type CustomerService struct {
	store repositories.Store
}

// NewCustomerService creates a new CustomerService.
func NewCustomerService(store repositories.Store) *CustomerService {
	return &CustomerService{store: store}
}

// EnsureProfile returns the customer, creating an empty profile the first
// time an authenticated principal is seen.
func (s *CustomerService) EnsureProfile(ctx context.Context, customerID uint) (*models.Customer, error) {
	return ensureCustomer(s.store.Repos(ctx).Customers, customerID)
}

func ensureCustomer(customers repositories.CustomerRepository, customerID uint) (*models.Customer, error) {
	customer, err := customers.GetByID(customerID)
	if err == nil {
		return customer, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	customer = &models.Customer{ID: customerID}
	if createErr := customers.Create(customer); createErr != nil {
		// A concurrent request may have created it first.
		if existing, getErr := customers.GetByID(customerID); getErr == nil {
			return existing, nil
		}
		return nil, createErr
	}
	return customer, nil
}

// Addresses lists the customer's shipping addresses.
func (s *CustomerService) Addresses(ctx context.Context, customerID uint) ([]models.ShippingAddress, error) {
	return s.store.Repos(ctx).Addresses.ListByCustomer(customerID)
}

// SaveAddress stores a new address. When it is marked default, the previous
// default is unset in the same transaction.
func (s *CustomerService) SaveAddress(ctx context.Context, customerID uint, address models.ShippingAddress) (*models.ShippingAddress, error) {
	address.ID = 0
	address.CustomerID = customerID

	err := s.store.Transaction(ctx, func(repos repositories.Repositories) error {
		if _, err := ensureCustomer(repos.Customers, customerID); err != nil {
			return err
		}
		if err := repos.Addresses.Create(&address); err != nil {
			return err
		}
		if address.IsDefault {
			return repos.Addresses.ClearDefault(customerID, address.ID)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save address: %w", err)
	}
	return &address, nil
}

// UpdateAddress replaces the fields of an address the customer owns.
func (s *CustomerService) UpdateAddress(ctx context.Context, customerID, addressID uint, update models.ShippingAddress) (*models.ShippingAddress, error) {
	var saved *models.ShippingAddress
	err := s.store.Transaction(ctx, func(repos repositories.Repositories) error {
		existing, err := ownedAddress(repos.Addresses, customerID, addressID)
		if err != nil {
			return err
		}

		update.ID = existing.ID
		update.CustomerID = customerID
		if err := repos.Addresses.Update(&update); err != nil {
			return err
		}
		if update.IsDefault {
			if err := repos.Addresses.ClearDefault(customerID, update.ID); err != nil {
				return err
			}
		}
		saved = &update
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update address %d: %w", addressID, err)
	}
	return saved, nil
}

// DeleteAddress removes an address the customer owns.
func (s *CustomerService) DeleteAddress(ctx context.Context, customerID, addressID uint) error {
	err := s.store.Transaction(ctx, func(repos repositories.Repositories) error {
		if _, err := ownedAddress(repos.Addresses, customerID, addressID); err != nil {
			return err
		}
		return repos.Addresses.Delete(addressID)
	})
	if err != nil {
		return fmt.Errorf("failed to delete address %d: %w", addressID, err)
	}
	return nil
}

// SetDefaultAddress marks one address as default and unsets the others.
func (s *CustomerService) SetDefaultAddress(ctx context.Context, customerID, addressID uint) (*models.ShippingAddress, error) {
	var address *models.ShippingAddress
	err := s.store.Transaction(ctx, func(repos repositories.Repositories) error {
		a, err := ownedAddress(repos.Addresses, customerID, addressID)
		if err != nil {
			return err
		}
		if err := repos.Addresses.ClearDefault(customerID, a.ID); err != nil {
			return err
		}
		a.IsDefault = true
		if err := repos.Addresses.Update(a); err != nil {
			return err
		}
		address = a
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set default address %d: %w", addressID, err)
	}
	return address, nil
}

func ownedAddress(addresses repositories.AddressRepository, customerID, addressID uint) (*models.ShippingAddress, error) {
	a, err := addresses.GetByID(addressID)
	if err != nil {
		return nil, err
	}
	if a.CustomerID != customerID {
		return nil, fmt.Errorf("address %d does not belong to customer %d: %w", addressID, customerID, ErrAccessDenied)
	}
	return a, nil
}
