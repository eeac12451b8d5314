package services_test

import (
	"context"
	"fmt"
	"testing"

	"phsar/internal/models"
	"phsar/internal/repositories"
	"phsar/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func listingRequest(price string) services.ListingRequest {
	return services.ListingRequest{
		Title: "Camera bundle",
		Tags:  []string{"camera", "film"},
		Items: []services.ItemRequest{
			{Name: "Body", Price: decimal.RequireFromString(price)},
			{Name: "Lens", Price: decimal.RequireFromString("42.50")},
		},
	}
}

func TestCatalogService_CreateListing(t *testing.T) {
	db, store := setupTestDB(t)
	svc := services.NewCatalogService(store)
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, "Electronics")
	require.NoError(t, err)

	req := listingRequest("120.00")
	req.CategoryID = &category.ID
	listing, err := svc.CreateListing(ctx, 300, req)
	require.NoError(t, err)

	assert.Equal(t, uint(300), listing.SellerID)
	assert.Equal(t, models.ListingStatusActive, listing.Status.Name)
	require.NotNil(t, listing.Category)
	assert.Equal(t, "Electronics", listing.Category.Name)
	assert.Equal(t, []string{"camera", "film"}, listing.Tags)
	require.Len(t, listing.Items, 2)
	assert.True(t, listing.Items[1].Price.Equal(decimal.RequireFromString("42.50")))

	var seller models.Customer
	require.NoError(t, db.First(&seller, 300).Error)
	assert.True(t, seller.IsSeller)

	mine, err := svc.SellerListings(ctx, 300)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestCatalogService_CreateListingValidation(t *testing.T) {
	_, store := setupTestDB(t)
	svc := services.NewCatalogService(store)
	ctx := context.Background()

	_, err := svc.CreateListing(ctx, 300, listingRequest("0"))
	assert.ErrorIs(t, err, services.ErrValidation)

	req := listingRequest("10")
	missing := uint(999)
	req.CategoryID = &missing
	_, err = svc.CreateListing(ctx, 300, req)
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestCatalogService_UnknownStatusFallsBackToActive(t *testing.T) {
	_, store := setupTestDB(t)
	svc := services.NewCatalogService(store)

	req := listingRequest("10")
	unknown := uint(77)
	req.StatusID = &unknown
	listing, err := svc.CreateListing(context.Background(), 300, req)
	require.NoError(t, err)
	assert.Equal(t, models.ListingStatusActive, listing.Status.Name)
}

func TestCatalogService_PublicListingsPaging(t *testing.T) {
	_, store := setupTestDB(t)
	svc := services.NewCatalogService(store)
	ctx := context.Background()

	var ids []uint
	for i := 0; i < 3; i++ {
		req := listingRequest("10")
		req.Title = fmt.Sprintf("Listing %d", i)
		l, err := svc.CreateListing(ctx, 300, req)
		require.NoError(t, err)
		ids = append(ids, l.ID)
	}

	page, err := svc.PublicListings(ctx, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	require.Len(t, page.Listings, 2)
	assert.Equal(t, ids[2], page.Listings[0].ID)

	page, err = svc.PublicListings(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, page.Listings, 1)
	assert.Equal(t, ids[0], page.Listings[0].ID)

	page, err = svc.PublicListings(ctx, -1, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, page.Page)
	assert.Equal(t, 20, page.Size)
}

// MockCatalogRepository is a mock implementation of repositories.CatalogRepository.
type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) CreateListing(l *models.Listing) error {
	return m.Called(l).Error(0)
}

func (m *MockCatalogRepository) GetListingByID(id uint) (*models.Listing, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockCatalogRepository) ListListings(offset, limit int) ([]models.Listing, int64, error) {
	args := m.Called(offset, limit)
	return args.Get(0).([]models.Listing), args.Get(1).(int64), args.Error(2)
}

func (m *MockCatalogRepository) ListListingsBySeller(sellerID uint) ([]models.Listing, error) {
	args := m.Called(sellerID)
	return args.Get(0).([]models.Listing), args.Error(1)
}

func (m *MockCatalogRepository) GetItemByID(id uint) (*models.Item, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockCatalogRepository) GetSellerIDByItemID(itemID uint) (uint, error) {
	args := m.Called(itemID)
	return args.Get(0).(uint), args.Error(1)
}

func (m *MockCatalogRepository) GetCategoryByID(id uint) (*models.Category, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCatalogRepository) ListCategories() ([]models.Category, error) {
	args := m.Called()
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockCatalogRepository) CreateCategory(c *models.Category) error {
	return m.Called(c).Error(0)
}

func (m *MockCatalogRepository) GetStatusByID(id uint) (*models.ListingStatus, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ListingStatus), args.Error(1)
}

func (m *MockCatalogRepository) GetStatusByName(name string) (*models.ListingStatus, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ListingStatus), args.Error(1)
}

// catalogOnlyStore serves a single mocked catalog repository.
type catalogOnlyStore struct {
	catalog repositories.CatalogRepository
}

func (s catalogOnlyStore) Repos(context.Context) repositories.Repositories {
	return repositories.Repositories{Catalog: s.catalog}
}

func (s catalogOnlyStore) Transaction(ctx context.Context, fn func(repositories.Repositories) error) error {
	return fn(s.Repos(ctx))
}

func TestCatalogService_ItemAndCategoriesWithMockRepository(t *testing.T) {
	mockRepo := new(MockCatalogRepository)
	svc := services.NewCatalogService(catalogOnlyStore{catalog: mockRepo})
	ctx := context.Background()

	expected := &models.Item{ID: 1, Name: "Lamp", Price: decimal.RequireFromString("9.99")}
	mockRepo.On("GetItemByID", uint(1)).Return(expected, nil).Once()
	item, err := svc.Item(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, expected, item)

	mockRepo.On("GetItemByID", uint(99)).
		Return(nil, fmt.Errorf("item with ID 99 not found: %w", repositories.ErrNotFound)).Once()
	item, err = svc.Item(ctx, 99)
	assert.Nil(t, item)
	assert.ErrorIs(t, err, services.ErrNotFound)

	categories := []models.Category{{ID: 1, Name: "Books"}, {ID: 2, Name: "Toys"}}
	mockRepo.On("ListCategories").Return(categories, nil).Once()
	got, err := svc.Categories(ctx)
	assert.NoError(t, err)
	assert.Equal(t, categories, got)

	mockRepo.AssertExpectations(t)
}
