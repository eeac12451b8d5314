package models

import "time"

// Customer is a buyer or seller account. The ID is the principal issued by the
// external identity provider, so it is never generated here.
type Customer struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Phone     string    `json:"phone" gorm:"type:varchar(32)" validate:"omitempty,max=32"`
	IsSeller  bool      `json:"isSeller" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ShippingAddress belongs to a customer. At most one address per customer is
// marked as default.
type ShippingAddress struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	CustomerID    uint   `json:"customerId" gorm:"index;not null"`
	RecipientName string `json:"recipientName" gorm:"type:varchar(120)" validate:"required,max=120"`
	StreetAddress string `json:"streetAddress" gorm:"type:varchar(255)" validate:"required,max=255"`
	City          string `json:"city" gorm:"type:varchar(100)" validate:"required,max=100"`
	Province      string `json:"province" gorm:"type:varchar(100)" validate:"omitempty,max=100"`
	ZipCode       string `json:"zipCode" gorm:"type:varchar(20)" validate:"omitempty,max=20"`
	Country       string `json:"country" gorm:"type:varchar(100)" validate:"required,max=100"`
	IsDefault     bool   `json:"isDefault" gorm:"not null;default:false"`
}

// Summary renders the address the way order summaries show it.
func (a *ShippingAddress) Summary() string {
	if a == nil {
		return "N/A"
	}
	return a.Province + ", " + a.City + ", " + a.StreetAddress
}
