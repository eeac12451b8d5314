package services

import (
	"context"
	"errors"
	"fmt"

	"phsar/internal/models"
	"phsar/internal/repositories"

	"github.com/shopspring/decimal"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ItemRequest describes one item of a new listing.
type ItemRequest struct {
	Name     string          `json:"name" validate:"required,max=200"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"imageUrl" validate:"omitempty,max=500"`
}

// ListingRequest is the payload for creating a listing.
type ListingRequest struct {
	Title      string        `json:"title" validate:"required,max=200"`
	Image      string        `json:"image" validate:"omitempty,max=500"`
	Tags       []string      `json:"tags" validate:"omitempty,dive,max=50"`
	CategoryID *uint         `json:"categoryId"`
	StatusID   *uint         `json:"statusId"`
	Items      []ItemRequest `json:"items" validate:"required,min=1,dive"`
}

// ListingPage is one page of public listings.
type ListingPage struct {
	Listings []models.Listing `json:"listings"`
	Page     int              `json:"page"`
	Size     int              `json:"size"`
	Total    int64            `json:"total"`
}

// CatalogService handles listings, items and categories.
type CatalogService struct {
	store repositories.Store
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(store repositories.Store) *CatalogService {
	return &CatalogService{store: store}
}

// CreateListing publishes a listing with its items for the seller. The
// seller's profile is created if needed and flagged as a seller.
func (s *CatalogService) CreateListing(ctx context.Context, sellerID uint, req ListingRequest) (*models.Listing, error) {
	for i, item := range req.Items {
		if !item.Price.IsPositive() {
			return nil, fmt.Errorf("item %d price must be positive: %w", i, ErrValidation)
		}
	}

	var listingID uint
	err := s.store.Transaction(ctx, func(repos repositories.Repositories) error {
		seller, err := ensureCustomer(repos.Customers, sellerID)
		if err != nil {
			return err
		}
		if !seller.IsSeller {
			if err := repos.Customers.SetSeller(sellerID); err != nil {
				return err
			}
		}

		if req.CategoryID != nil {
			if _, err := repos.Catalog.GetCategoryByID(*req.CategoryID); err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return fmt.Errorf("category %d not found: %w", *req.CategoryID, ErrValidation)
				}
				return err
			}
		}

		status, err := s.resolveStatus(repos.Catalog, req.StatusID)
		if err != nil {
			return err
		}

		listing := &models.Listing{
			SellerID:   sellerID,
			Title:      req.Title,
			Image:      req.Image,
			Tags:       req.Tags,
			StatusID:   status.ID,
			CategoryID: req.CategoryID,
		}
		for _, item := range req.Items {
			listing.Items = append(listing.Items, models.Item{
				Name:     item.Name,
				Price:    item.Price.Round(2),
				ImageURL: item.ImageURL,
			})
		}
		if err := repos.Catalog.CreateListing(listing); err != nil {
			return err
		}
		listingID = listing.ID
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}
	return s.store.Repos(ctx).Catalog.GetListingByID(listingID)
}

// resolveStatus returns the requested status when it exists, otherwise the
// active status.
func (s *CatalogService) resolveStatus(catalog repositories.CatalogRepository, statusID *uint) (*models.ListingStatus, error) {
	if statusID != nil {
		status, err := catalog.GetStatusByID(*statusID)
		if err == nil {
			return status, nil
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
	}
	return catalog.GetStatusByName(models.ListingStatusActive)
}

// PublicListings returns a zero-based page of listings, newest first.
func (s *CatalogService) PublicListings(ctx context.Context, page, size int) (*ListingPage, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	listings, total, err := s.store.Repos(ctx).Catalog.ListListings(page*size, size)
	if err != nil {
		return nil, err
	}
	return &ListingPage{Listings: listings, Page: page, Size: size, Total: total}, nil
}

func (s *CatalogService) Listing(ctx context.Context, id uint) (*models.Listing, error) {
	return s.store.Repos(ctx).Catalog.GetListingByID(id)
}

func (s *CatalogService) SellerListings(ctx context.Context, sellerID uint) ([]models.Listing, error) {
	return s.store.Repos(ctx).Catalog.ListListingsBySeller(sellerID)
}

func (s *CatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	return s.store.Repos(ctx).Catalog.ListCategories()
}

// CreateCategory adds a category; used to seed the catalog.
func (s *CatalogService) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	category := &models.Category{Name: name}
	if err := s.store.Repos(ctx).Catalog.CreateCategory(category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CatalogService) Item(ctx context.Context, id uint) (*models.Item, error) {
	return s.store.Repos(ctx).Catalog.GetItemByID(id)
}
