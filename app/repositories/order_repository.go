package repositories

import (
	"context"
	"time"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/pkg/orm"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderRepository is the read-only view over orders and their lines.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// OrderLine is one order item joined to its order and the order's buyer.
type OrderLine struct {
	OrderID     uint
	OrderNumber string
	Status      string
	CreatedAt   time.Time
	BuyerName   *string // nil when the buyer row is gone
	Quantity    int
	Total       decimal.Decimal
}

// LineItems returns the order items visible through scope, newest order
// first. Lines of the same order are adjacent, in item id order.
func (r *OrderRepository) LineItems(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]OrderLine, error) {
	lines := []OrderLine{}
	err := r.db.WithContext(ctx).
		Table("order_items").
		Select("orders.id AS order_id, orders.order_number, orders.status, orders.created_at, " +
			"buyers.name AS buyer_name, order_items.quantity, order_items.total").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("LEFT JOIN users AS buyers ON buyers.id = orders.buyer_id").
		Scopes(scope).
		Order("orders.created_at DESC, orders.id DESC, order_items.id ASC").
		Scan(&lines).Error
	return lines, err
}

// Find loads an order with its buyer and the items visible through scope.
func (r *OrderRepository) Find(ctx context.Context, id uint, scope func(*gorm.DB) *gorm.DB) (models.Order, error) {
	var order models.Order
	err := orm.New(r.db).WithContext(ctx).
		Preload("Buyer").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Scopes(scope).Order("order_items.id ASC")
		}).
		Where("orders.id = ?", id).
		First(&order)
	return order, err
}
