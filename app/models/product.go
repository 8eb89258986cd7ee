package models

import (
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func init() {
	// Money goes out as JSON numbers, matching the storefront's types.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product is a listing owned by one user. SKU is the optional external
// product_id; it is unique when set.
type Product struct {
	ID          uint                        `gorm:"primaryKey" json:"id"`
	SKU         *string                     `gorm:"column:product_id;size:255;uniqueIndex" json:"product_id"`
	UserID      uint                        `gorm:"not null;index" json:"user_id"`
	Name        string                      `gorm:"size:255;not null" json:"name"`
	Description string                      `gorm:"type:text;not null" json:"description"`
	Price       decimal.Decimal             `gorm:"type:decimal(10,2);not null;default:0" json:"price"`
	Image       *string                     `gorm:"size:255" json:"image"`
	Category    string                      `gorm:"size:255;not null;index" json:"category"`
	Stock       int                         `gorm:"not null;default:0" json:"stock"`
	Rating      decimal.Decimal             `gorm:"type:decimal(2,1);not null;default:0" json:"rating"`
	Tags        datatypes.JSONSlice[string] `gorm:"not null" json:"tags"`
	CreatedAt   time.Time                   `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`

	Owner  *User          `gorm:"foreignKey:UserID" json:"owner,omitempty"`
	Images []ProductImage `gorm:"foreignKey:ProductID" json:"images"`
}

// BeforeSave keeps the tags column a JSON array, never null.
func (p *Product) BeforeSave(*gorm.DB) error {
	if p.Tags == nil {
		p.Tags = datatypes.JSONSlice[string]{}
	}
	return nil
}

// ProductImage is one uploaded image. URL is derived from Path every time
// the row is read and is never stored.
type ProductImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	Path      string    `gorm:"size:255;not null" json:"path"`
	URL       string    `gorm:"-" json:"url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var imageURL atomic.Value // func(string) string

// SetImageURLResolver installs the function that turns a stored path into
// a public URL, normally storage.BlobStore.URL.
func SetImageURLResolver(fn func(path string) string) {
	imageURL.Store(fn)
}

func resolveURL(path string) string {
	if fn, ok := imageURL.Load().(func(string) string); ok && fn != nil {
		return fn(path)
	}
	return path
}

func (i *ProductImage) AfterFind(*gorm.DB) error {
	i.URL = resolveURL(i.Path)
	return nil
}

func (i *ProductImage) AfterCreate(*gorm.DB) error {
	i.URL = resolveURL(i.Path)
	return nil
}
