package repositories

import (
	"errors"
	"fmt"

	"phsar/internal/models"

	"gorm.io/gorm"
)

// GORMCatalogRepository is a GORM implementation of CatalogRepository.
type GORMCatalogRepository struct {
	db *gorm.DB
}

// NewGORMCatalogRepository creates a new instance of GORMCatalogRepository.
func NewGORMCatalogRepository(db *gorm.DB) *GORMCatalogRepository {
	return &GORMCatalogRepository{db: db}
}

func (r *GORMCatalogRepository) withListingAssociations() *gorm.DB {
	return r.db.
		Preload("Status").
		Preload("Category").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("items.id") })
}

// CreateListing inserts a listing together with its items.
func (r *GORMCatalogRepository) CreateListing(listing *models.Listing) error {
	if err := r.db.Omit("Status", "Category").Create(listing).Error; err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}
	return nil
}

// GetListingByID retrieves a listing with status, category and items.
func (r *GORMCatalogRepository) GetListingByID(id uint) (*models.Listing, error) {
	var listing models.Listing
	if err := r.withListingAssociations().First(&listing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("listing with ID %d not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get listing by ID %d: %w", id, err)
	}
	return &listing, nil
}

// ListListings returns one page of listings, newest first, and the total count.
func (r *GORMCatalogRepository) ListListings(offset, limit int) ([]models.Listing, int64, error) {
	var total int64
	if err := r.db.Model(&models.Listing{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count listings: %w", err)
	}

	var listings []models.Listing
	err := r.withListingAssociations().
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&listings).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list listings: %w", err)
	}
	return listings, total, nil
}

func (r *GORMCatalogRepository) ListListingsBySeller(sellerID uint) ([]models.Listing, error) {
	var listings []models.Listing
	err := r.withListingAssociations().
		Where("seller_id = ?", sellerID).
		Order("id DESC").
		Find(&listings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list listings for seller %d: %w", sellerID, err)
	}
	return listings, nil
}

func (r *GORMCatalogRepository) GetItemByID(id uint) (*models.Item, error) {
	var item models.Item
	if err := r.db.First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("item with ID %d not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get item by ID %d: %w", id, err)
	}
	return &item, nil
}

func (r *GORMCatalogRepository) GetSellerIDByItemID(itemID uint) (uint, error) {
	var sellerIDs []uint
	err := r.db.Table("items").
		Joins("JOIN listings ON listings.id = items.listing_id").
		Where("items.id = ?", itemID).
		Pluck("listings.seller_id", &sellerIDs).Error
	if err != nil {
		return 0, fmt.Errorf("failed to resolve seller for item %d: %w", itemID, err)
	}
	if len(sellerIDs) == 0 {
		return 0, fmt.Errorf("seller for item %d not found: %w", itemID, ErrNotFound)
	}
	return sellerIDs[0], nil
}

func (r *GORMCatalogRepository) GetCategoryByID(id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("category with ID %d not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get category by ID %d: %w", id, err)
	}
	return &category, nil
}

func (r *GORMCatalogRepository) ListCategories() ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.Order("name").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (r *GORMCatalogRepository) CreateCategory(category *models.Category) error {
	if err := r.db.Create(category).Error; err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *GORMCatalogRepository) GetStatusByID(id uint) (*models.ListingStatus, error) {
	var status models.ListingStatus
	if err := r.db.First(&status, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("listing status with ID %d not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get listing status by ID %d: %w", id, err)
	}
	return &status, nil
}

func (r *GORMCatalogRepository) GetStatusByName(name string) (*models.ListingStatus, error) {
	var status models.ListingStatus
	if err := r.db.First(&status, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("listing status %s not found: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get listing status %s: %w", name, err)
	}
	return &status, nil
}
