package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Listing status names seeded at startup.
const (
	ListingStatusActive    = "active"
	ListingStatusReviewing = "reviewing"
	ListingStatusArchived  = "archived"
	ListingStatusBanned    = "banned"
)

// ListingStatus is a lookup row describing a listing's visibility.
type ListingStatus struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"uniqueIndex;type:varchar(32);not null"`
	Description string `json:"description" gorm:"type:varchar(255)"`
}

// DefaultListingStatuses is the seed set for the listing_statuses table.
func DefaultListingStatuses() []ListingStatus {
	return []ListingStatus{
		{Name: ListingStatusActive, Description: "Listing is visible and tradable."},
		{Name: ListingStatusReviewing, Description: "Listing is pending manual verification."},
		{Name: ListingStatusArchived, Description: "Listing has been voluntarily hidden by seller."},
		{Name: ListingStatusBanned, Description: "Listing has been removed due to policy violation."},
	}
}

// Category groups listings.
type Category struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;type:varchar(100);not null" validate:"required,min=2,max=100"`
}

// Listing is a seller's published collection of sellable items.
type Listing struct {
	ID         uint          `json:"id" gorm:"primaryKey"`
	SellerID   uint          `json:"sellerId" gorm:"index;not null"`
	Title      string        `json:"title" gorm:"type:varchar(200);not null"`
	Image      string        `json:"image" gorm:"type:varchar(500)"`
	Tags       []string      `json:"tags" gorm:"serializer:json;type:text"`
	StatusID   uint          `json:"statusId" gorm:"not null"`
	Status     ListingStatus `json:"status" gorm:"foreignKey:StatusID"`
	CategoryID *uint         `json:"categoryId,omitempty"`
	Category   *Category     `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Items      []Item        `json:"items" gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

// Item is a single product unit within a listing. Orders copy its price, so
// later price edits never rewrite order history.
type Item struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	ListingID uint            `json:"listingId" gorm:"index;not null"`
	Name      string          `json:"name" gorm:"type:varchar(200);not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	ImageURL  string          `json:"imageUrl" gorm:"type:varchar(500)"`
}
