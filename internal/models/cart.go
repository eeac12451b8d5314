package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is the single mutable basket of a customer.
type Cart struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	CustomerID uint       `json:"customerId" gorm:"uniqueIndex;not null"`
	Items      []CartItem `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// CartItem is one cart line. (CartID, ItemID) is unique and Quantity is always
// positive.
type CartItem struct {
	ID       uint `json:"id" gorm:"primaryKey"`
	CartID   uint `json:"cartId" gorm:"uniqueIndex:idx_cart_items_cart_item;not null"`
	ItemID   uint `json:"itemId" gorm:"uniqueIndex:idx_cart_items_cart_item;not null"`
	Item     Item `json:"item" gorm:"foreignKey:ItemID"`
	Quantity int  `json:"quantity" gorm:"not null"`
}

// LineTotal is the item price multiplied by the quantity.
func (ci CartItem) LineTotal() decimal.Decimal {
	return ci.Item.Price.Mul(decimal.NewFromInt(int64(ci.Quantity)))
}

// Total sums every line of the cart.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Items {
		total = total.Add(line.LineTotal())
	}
	return total
}
