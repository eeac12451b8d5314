package repositories

import "phsar/internal/models"

// CatalogRepository defines the interface for listing, item, category and
// listing status data access.
type CatalogRepository interface {
	CreateListing(listing *models.Listing) error
	GetListingByID(id uint) (*models.Listing, error)
	ListListings(offset, limit int) ([]models.Listing, int64, error)
	ListListingsBySeller(sellerID uint) ([]models.Listing, error)

	GetItemByID(id uint) (*models.Item, error)
	// GetSellerIDByItemID resolves item -> listing -> seller with one join.
	GetSellerIDByItemID(itemID uint) (uint, error)

	GetCategoryByID(id uint) (*models.Category, error)
	ListCategories() ([]models.Category, error)
	CreateCategory(category *models.Category) error

	GetStatusByID(id uint) (*models.ListingStatus, error)
	GetStatusByName(name string) (*models.ListingStatus, error)
}
