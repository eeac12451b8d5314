package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Repositories bundles every repository bound to one database handle, which
// may be a transaction.
type Repositories struct {
	Customers CustomerRepository
	Addresses AddressRepository
	Catalog   CatalogRepository
	Carts     CartRepository
	Orders    OrderRepository
}

// Store hands out repositories, either standalone or inside a transaction.
type Store interface {
	Repos(ctx context.Context) Repositories
	Transaction(ctx context.Context, fn func(repos Repositories) error) error
}

// GORMStore is the GORM implementation of Store.
type GORMStore struct {
	db *gorm.DB
}

// NewGORMStore creates a new GORMStore.
func NewGORMStore(db *gorm.DB) *GORMStore {
	return &GORMStore{db: db}
}

// Repos returns repositories that run each call in its own implicit transaction.
func (s *GORMStore) Repos(ctx context.Context) Repositories {
	return newGORMRepositories(s.db.WithContext(ctx))
}

// Transaction runs fn inside a single database transaction. Returning an error
// from fn rolls everything back.
func (s *GORMStore) Transaction(ctx context.Context, fn func(repos Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newGORMRepositories(tx))
	})
}

func newGORMRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Customers: NewGORMCustomerRepository(db),
		Addresses: NewGORMAddressRepository(db),
		Catalog:   NewGORMCatalogRepository(db),
		Carts:     NewGORMCartRepository(db),
		Orders:    NewGORMOrderRepository(db),
	}
}
