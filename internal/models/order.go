package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusPaid       OrderStatus = "PAID"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusDelivering OrderStatus = "DELIVERING"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
	OrderStatusFailed     OrderStatus = "FAILED"
)

var orderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPaid,
	OrderStatusProcessing,
	OrderStatusDelivering,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusFailed,
}

// ParseOrderStatus maps a case-insensitive name onto a known status.
func ParseOrderStatus(s string) (OrderStatus, error) {
	for _, status := range orderStatuses {
		if strings.EqualFold(s, string(status)) {
			return status, nil
		}
	}
	return "", fmt.Errorf("invalid order status: %s", s)
}

// Order is one purchase. Checkout creates one order per cart line, all
// sharing the same payment session id.
type Order struct {
	ID                uint             `json:"id" gorm:"primaryKey"`
	CustomerID        uint             `json:"customerId" gorm:"index;not null"`
	ShippingAddressID *uint            `json:"shippingAddressId,omitempty"`
	ShippingAddress   *ShippingAddress `json:"shippingAddress,omitempty" gorm:"foreignKey:ShippingAddressID"`
	OrderDate         time.Time        `json:"orderDate" gorm:"not null"`
	Status            OrderStatus      `json:"status" gorm:"type:varchar(20);not null;default:'PENDING';index"`
	TotalAmount       decimal.Decimal  `json:"totalAmount" gorm:"type:decimal(12,2);not null"`
	StripeSessionID   string           `json:"stripeSessionId,omitempty" gorm:"type:varchar(255);index"`
	PaymentIntentID   string           `json:"paymentIntentId,omitempty" gorm:"type:varchar(255)"`
	Items             []OrderItem      `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

// OrderItem is an immutable snapshot of an item at purchase time.
type OrderItem struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	OrderID   uint            `json:"orderId" gorm:"index;not null"`
	ItemID    uint            `json:"itemId" gorm:"index;not null"`
	Item      Item            `json:"item" gorm:"foreignKey:ItemID"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	UnitPrice decimal.Decimal `json:"unitPrice" gorm:"type:decimal(12,2);not null"`
}

// OrderSummary is the outward view of an order returned to buyers and sellers.
type OrderSummary struct {
	ID                     uint               `json:"id"`
	CustomerID             uint               `json:"customerId"`
	OrderDate              time.Time          `json:"orderDate"`
	Status                 OrderStatus        `json:"status"`
	TotalAmount            decimal.Decimal    `json:"totalAmount"`
	Items                  []OrderItemSummary `json:"items"`
	ShippingAddressSummary string             `json:"shippingAddressSummary"`
}

// OrderItemSummary describes a purchased item with its snapshot price.
type OrderItemSummary struct {
	ID        uint            `json:"id"`
	ItemID    uint            `json:"itemId"`
	Name      string          `json:"name"`
	ImageURL  string          `json:"imageUrl"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// NewOrderSummary builds the summary from an order loaded with its items.
func NewOrderSummary(o *Order) OrderSummary {
	items := make([]OrderItemSummary, 0, len(o.Items))
	for _, oi := range o.Items {
		items = append(items, OrderItemSummary{
			ID:        oi.ID,
			ItemID:    oi.ItemID,
			Name:      oi.Item.Name,
			ImageURL:  oi.Item.ImageURL,
			Quantity:  oi.Quantity,
			UnitPrice: oi.UnitPrice,
		})
	}
	return OrderSummary{
		ID:                     o.ID,
		CustomerID:             o.CustomerID,
		OrderDate:              o.OrderDate,
		Status:                 o.Status,
		TotalAmount:            o.TotalAmount,
		Items:                  items,
		ShippingAddressSummary: o.ShippingAddress.Summary(),
	}
}

// NewOrderSummaries maps a slice of orders.
func NewOrderSummaries(orders []Order) []OrderSummary {
	out := make([]OrderSummary, 0, len(orders))
	for i := range orders {
		out = append(out, NewOrderSummary(&orders[i]))
	}
	return out
}
