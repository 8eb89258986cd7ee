package seeders

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/pkg/auth"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func init() {
	Register("marketplace", SeedMarketplace)
}

// DemoPassword is the password of every seeded account.
const DemoPassword = "password"

var (
	categories = []string{"Audio", "Home", "Accessories", "Grocery", "Fitness"}
	extraTags  = []string{"new", "popular", "eco", "premium", "bundle"}
	words      = []string{"smart", "classic", "compact", "deluxe", "travel", "bamboo", "wireless", "ceramic", "steel", "organic"}
	nouns      = []string{"bottle", "speaker", "mat", "kettle", "charger", "journal", "blanket", "tumbler", "stand", "band"}
	statuses   = []string{models.OrderPending, models.OrderFulfilled, models.OrderShipped}
)

// SeedMarketplace creates one user per role, four fixed products, six
// random ones and six orders placed by the buyer.
func SeedMarketplace(db *gorm.DB) error {
	hash, err := auth.HashPassword(DemoPassword)
	if err != nil {
		return err
	}

	users := map[string]*models.User{
		auth.RoleAdmin:     {Name: "Admin User", Email: "admin@example.com", Role: auth.RoleAdmin},
		auth.RoleSeller:    {Name: "Seller One", Email: "seller@example.com", Role: auth.RoleSeller},
		auth.RoleShopOwner: {Name: "Shop Owner", Email: "owner@example.com", Role: auth.RoleShopOwner},
		auth.RoleBuyer:     {Name: "Buyer One", Email: "buyer@example.com", Role: auth.RoleBuyer},
	}
	for _, role := range []string{auth.RoleAdmin, auth.RoleSeller, auth.RoleShopOwner, auth.RoleBuyer} {
		u := users[role]
		u.Password = hash
		if err := db.Create(u).Error; err != nil {
			return fmt.Errorf("user %s: %w", u.Email, err)
		}
	}
	seller, owner, buyer := users[auth.RoleSeller], users[auth.RoleShopOwner], users[auth.RoleBuyer]

	products := []models.Product{
		fixedProduct("SKU-HEADPHONE", "Studio Headphones", "Closed-back headphones with deep bass and crisp detail.",
			"149.99", "Audio", 18, "4.6", seller.ID, "audio", "headphones", "studio"),
		fixedProduct("SKU-LAMP", "Minimal Desk Lamp", "Warm LED lamp with adjustable neck and touch dimmer.",
			"59.00", "Home", 24, "4.2", seller.ID, "home", "lighting", "desk"),
		fixedProduct("SKU-BACKPACK", "Urban Backpack", "Water-resistant backpack with laptop sleeve.",
			"89.50", "Accessories", 32, "4.4", owner.ID, "bags", "travel", "lifestyle"),
		fixedProduct("SKU-COFFEE", "Single Origin Coffee", "Medium roast beans with notes of chocolate and citrus.",
			"18.75", "Grocery", 60, "4.8", owner.ID, "coffee", "grocery"),
	}
	for i := 0; i < 6; i++ {
		products = append(products, randomProduct([]uint{seller.ID, owner.ID}))
	}
	for i := range products {
		if err := db.Omit("Owner", "Images").Create(&products[i]).Error; err != nil {
			return fmt.Errorf("product %s: %w", products[i].Name, err)
		}
	}

	for i := 0; i < 6; i++ {
		if err := seedOrder(db, buyer.ID, products); err != nil {
			return err
		}
	}
	return nil
}

func fixedProduct(sku, name, desc, price, category string, stock int, rating string, owner uint, tags ...string) models.Product {
	return models.Product{
		SKU:         &sku,
		UserID:      owner,
		Name:        name,
		Description: desc,
		Price:       decimal.RequireFromString(price),
		Category:    category,
		Stock:       stock,
		Rating:      decimal.RequireFromString(rating),
		Tags:        datatypes.JSONSlice[string](tags),
	}
}

func randomProduct(owners []uint) models.Product {
	sku := "SKU-" + randomCode(6)
	return models.Product{
		SKU:         &sku,
		UserID:      pick(owners),
		Name:        pick(words) + " " + pick(nouns),
		Description: fmt.Sprintf("A %s %s built for everyday use.", pick(words), pick(nouns)),
		Price:       decimal.New(int64(1200+rand.IntN(20801)), -2), // 12.00 – 220.00
		Category:    pick(categories),
		Stock:       3 + rand.IntN(43),
		Rating:      decimal.New(int64(35+rand.IntN(16)), -1), // 3.5 – 5.0
		Tags:        datatypes.JSONSlice[string](pickN(extraTags, 2)),
	}
}

// seedOrder records an order of one to three distinct products. Each line
// snapshots the product's owner and price; the order total is their sum.
func seedOrder(db *gorm.DB, buyerID uint, products []models.Product) error {
	createdAt := time.Now().UTC().AddDate(0, 0, -rand.IntN(15))
	order := models.Order{
		OrderNumber: "ORD-" + randomCode(8),
		BuyerID:     buyerID,
		Status:      pick(statuses),
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	if err := db.Omit("Buyer", "Items").Create(&order).Error; err != nil {
		return fmt.Errorf("order %s: %w", order.OrderNumber, err)
	}

	subtotal := decimal.Zero
	for _, p := range pickN(products, 1+rand.IntN(3)) {
		item := models.NewOrderItem(order.ID, p.ID, p.UserID, 1+rand.IntN(3), p.Price)
		item.CreatedAt, item.UpdatedAt = createdAt, createdAt
		if err := db.Create(&item).Error; err != nil {
			return fmt.Errorf("order %s item: %w", order.OrderNumber, err)
		}
		subtotal = subtotal.Add(item.Total)
	}

	return db.Model(&order).Updates(map[string]interface{}{
		"subtotal": subtotal,
		"total":    subtotal,
	}).Error
}

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randomCode(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteByte(codeAlphabet[rand.IntN(len(codeAlphabet))])
	}
	return b.String()
}

func pick[T any](s []T) T {
	return s[rand.IntN(len(s))]
}

// pickN returns n distinct elements of s in random order.
func pickN[T any](s []T, n int) []T {
	idx := rand.Perm(len(s))
	if n > len(s) {
		n = len(s)
	}
	out := make([]T, n)
	for i := 0; i < n; i++ {
		out[i] = s[idx[i]]
	}
	return out
}
