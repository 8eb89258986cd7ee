package migrations

import (
	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/pkg/migration"
	"gorm.io/gorm"
)

func init() {
	migration.Register("20260101000000_create_users_table", &CreateUsersTable{})
	migration.Register("20260101000001_create_products_table", &CreateProductsTable{})
	migration.Register("20260101000002_create_product_images_table", &CreateProductImagesTable{})
	migration.Register("20260101000003_create_orders_table", &CreateOrdersTable{})
	migration.Register("20260101000004_create_order_items_table", &CreateOrderItemsTable{})
}

// -------- 0001: users --------

type CreateUsersTable struct{}

func (m *CreateUsersTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{})
}

func (m *CreateUsersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("users")
}

// -------- 0002: products --------

type CreateProductsTable struct{}

func (m *CreateProductsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Product{})
}

func (m *CreateProductsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("products")
}

// -------- 0003: product_images --------

type CreateProductImagesTable struct{}

func (m *CreateProductImagesTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.ProductImage{})
}

func (m *CreateProductImagesTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("product_images")
}

// -------- 0004: orders --------

type CreateOrdersTable struct{}

func (m *CreateOrdersTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Order{})
}

func (m *CreateOrdersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("orders")
}

// -------- 0005: order_items --------

// order_items.product_id has no foreign key: sales history outlives the
// product it was sold from.
type CreateOrderItemsTable struct{}

func (m *CreateOrderItemsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.OrderItem{})
}

func (m *CreateOrderItemsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("order_items")
}
