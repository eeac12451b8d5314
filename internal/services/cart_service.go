package services

import (
	"context"
	"errors"
	"fmt"

	"phsar/internal/models"
	"phsar/internal/repositories"

	"github.com/shopspring/decimal"
)

// CartService manages the single cart of each customer.
type CartService struct {
	store repositories.Store
}

// NewCartService creates a new CartService.
func NewCartService(store repositories.Store) *CartService {
	return &CartService{store: store}
}

// GetOrCreateCart returns the customer's cart with its lines and item data,
// creating an empty cart when the customer has none.
func (s *CartService) GetOrCreateCart(ctx context.Context, customerID uint) (*models.Cart, error) {
	var cart *models.Cart
	err := s.store.Transaction(ctx, func(repos repositories.Repositories) error {
		c, err := getOrCreateCart(repos, customerID)
		cart = c
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load cart for customer %d: %w", customerID, err)
	}
	return cart, nil
}

func getOrCreateCart(repos repositories.Repositories, customerID uint) (*models.Cart, error) {
	cart, err := repos.Carts.GetByCustomerID(customerID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	if _, err := repos.Customers.GetByID(customerID); err != nil {
		return nil, err
	}
	cart = &models.Cart{CustomerID: customerID}
	if err := repos.Carts.Create(cart); err != nil {
		return nil, err
	}
	cart.Items = []models.CartItem{}
	return cart, nil
}

// AddItem adds quantity of the item, merging into an existing line.
func (s *CartService) AddItem(ctx context.Context, customerID, itemID uint, quantity int) (*models.Cart, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d: %w", quantity, ErrValidation)
	}

	err := s.store.Transaction(ctx, func(repos repositories.Repositories) error {
		cart, err := getOrCreateCart(repos, customerID)
		if err != nil {
			return err
		}
		if _, err := repos.Catalog.GetItemByID(itemID); err != nil {
			return err
		}

		line, err := repos.Carts.GetLine(cart.ID, itemID)
		switch {
		case err == nil:
			return repos.Carts.UpdateLineQuantity(line.ID, line.Quantity+quantity)
		case errors.Is(err, repositories.ErrNotFound):
			return repos.Carts.CreateLine(&models.CartItem{CartID: cart.ID, ItemID: itemID, Quantity: quantity})
		default:
			return err
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add item %d to cart: %w", itemID, err)
	}
	return s.reload(ctx, customerID)
}

// UpdateQuantity sets the quantity of an existing line. A quantity of zero
// or less removes the line.
func (s *CartService) UpdateQuantity(ctx context.Context, customerID, itemID uint, quantity int) (*models.Cart, error) {
	err := s.store.Transaction(ctx, func(repos repositories.Repositories) error {
		cart, err := getOrCreateCart(repos, customerID)
		if err != nil {
			return err
		}
		line, err := repos.Carts.GetLine(cart.ID, itemID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return fmt.Errorf("item %d: %w", itemID, ErrItemNotInCart)
			}
			return err
		}
		if quantity <= 0 {
			return repos.Carts.DeleteLine(cart.ID, itemID)
		}
		return repos.Carts.UpdateLineQuantity(line.ID, quantity)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update cart quantity: %w", err)
	}
	return s.reload(ctx, customerID)
}

// RemoveItem deletes the line for itemID.
func (s *CartService) RemoveItem(ctx context.Context, customerID, itemID uint) (*models.Cart, error) {
	err := s.store.Transaction(ctx, func(repos repositories.Repositories) error {
		cart, err := getOrCreateCart(repos, customerID)
		if err != nil {
			return err
		}
		if err := repos.Carts.DeleteLine(cart.ID, itemID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return fmt.Errorf("item %d: %w", itemID, ErrItemNotInCart)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to remove item from cart: %w", err)
	}
	return s.reload(ctx, customerID)
}

// Total sums price times quantity over the cart lines.
func (s *CartService) Total(ctx context.Context, customerID uint) (decimal.Decimal, error) {
	cart, err := s.GetOrCreateCart(ctx, customerID)
	if err != nil {
		return decimal.Zero, err
	}
	return cart.Total(), nil
}

func (s *CartService) reload(ctx context.Context, customerID uint) (*models.Cart, error) {
	cart, err := s.store.Repos(ctx).Carts.GetByCustomerID(customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload cart: %w", err)
	}
	return cart, nil
}
