package repositories

import (
	"strings"

	"github.com/shashiranjanraj/bazaar/pkg/auth"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OwnedBy limits products to those owned by p. Admins see everything.
func OwnedBy(p auth.Principal) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if p.IsAdmin() {
			return db
		}
		return db.Where("products.user_id = ?", p.ID)
	}
}

// SoldBy limits order items to those sold by p. Admins see everything.
func SoldBy(p auth.Principal) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if p.IsAdmin() {
			return db
		}
		return db.Where("order_items.seller_id = ?", p.ID)
	}
}

// Product list sort keys.
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
	SortNameAsc   = "name-asc"
	SortNameDesc  = "name-desc"
	SortRating    = "rating"
)

var sortClauses = map[string]string{
	SortNewest:    "products.created_at DESC, products.id DESC",
	SortPriceAsc:  "products.price ASC, products.id DESC",
	SortPriceDesc: "products.price DESC, products.id DESC",
	SortNameAsc:   "products.name ASC, products.id DESC",
	SortNameDesc:  "products.name DESC, products.id DESC",
	SortRating:    "products.rating DESC, products.id DESC",
}

// ProductFilter narrows and orders a product listing. Zero values match
// everything, newest first.
type ProductFilter struct {
	Category string
	Search   string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sort     string
}

// ValidSort reports whether s is a known sort key.
func ValidSort(s string) bool {
	_, ok := sortClauses[s]
	return ok
}

func (f ProductFilter) Scope(db *gorm.DB) *gorm.DB {
	if f.Category != "" {
		db = db.Where("products.category = ?", f.Category)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		db = db.Where("(LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ?)", like, like)
	}
	if f.MinPrice != nil {
		db = db.Where("products.price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		db = db.Where("products.price <= ?", *f.MaxPrice)
	}
	return db
}

func (f ProductFilter) orderClause() string {
	if c, ok := sortClauses[f.Sort]; ok {
		return c
	}
	return sortClauses[SortNewest]
}
