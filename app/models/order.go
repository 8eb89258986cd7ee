package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderPending   = "pending"
	OrderFulfilled = "fulfilled"
	OrderShipped   = "shipped"
)

// Order is placed by a buyer. Orders are read-only here; they come from
// the seeder or an external checkout.
type Order struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderNumber string          `gorm:"size:64;uniqueIndex;not null" json:"order_number"`
	BuyerID     uint            `gorm:"not null;index" json:"buyer_id"`
	Status      string          `gorm:"size:32;not null;default:pending;index" json:"status"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"subtotal"`
	Tax         decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"tax"`
	Shipping    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"shipping"`
	Total       decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"total"`
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	Buyer *User       `gorm:"foreignKey:BuyerID" json:"buyer,omitempty"`
	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// OrderItem is one line of an order. SellerID, UnitPrice and Total are a
// snapshot taken when the order was recorded; ProductID carries no foreign
// key so deleting a product leaves its sales history intact.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"not null;index" json:"order_id"`
	ProductID uint            `gorm:"not null;index" json:"product_id"`
	SellerID  uint            `gorm:"not null;index" json:"seller_id"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Total     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewOrderItem prices a line at unitPrice, fixing Total = quantity × unitPrice.
func NewOrderItem(orderID, productID, sellerID uint, quantity int, unitPrice decimal.Decimal) OrderItem {
	return OrderItem{
		OrderID:   orderID,
		ProductID: productID,
		SellerID:  sellerID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Total:     unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
	}
}
