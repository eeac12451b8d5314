package database

import (
	"errors"
	"fmt"
	"log"

	"phsar/internal/config"
	"phsar/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the database selected by cfg.DBDriver.
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseDSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.DBDriver, err)
	}
	return db, nil
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Customer{},
		&models.ShippingAddress{},
		&models.ListingStatus{},
		&models.Category{},
		&models.Listing{},
		&models.Item{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return nil
}

// SeedListingStatuses inserts the default listing statuses that are missing.
func SeedListingStatuses(db *gorm.DB) error {
	for _, status := range models.DefaultListingStatuses() {
		var existing models.ListingStatus
		err := db.Where("name = ?", status.Name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up listing status %s: %w", status.Name, err)
		}
		if err := db.Create(&status).Error; err != nil {
			return fmt.Errorf("failed to seed listing status %s: %w", status.Name, err)
		}
		log.Printf("Seeded listing status: %s", status.Name)
	}
	return nil
}

// Setup opens, migrates and seeds the database in one call.
func Setup(cfg *config.Config) (*gorm.DB, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	if err := SeedListingStatuses(db); err != nil {
		return nil, err
	}
	return db, nil
}
