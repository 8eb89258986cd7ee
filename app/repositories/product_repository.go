package repositories

import (
	"context"
	"time"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/pkg/orm"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductRepository handles database operations for Product and its images.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *ProductRepository) WithTx(tx *gorm.DB) *ProductRepository {
	return &ProductRepository{db: tx}
}

// Transaction runs fn inside one database transaction.
func (r *ProductRepository) Transaction(ctx context.Context, fn func(tx *ProductRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}

func orderedImages(db *gorm.DB) *gorm.DB {
	return db.Order("product_images.id ASC")
}

// withRelations eager-loads images and owner with one query each for the
// whole result set.
func (r *ProductRepository) withRelations(ctx context.Context) *orm.Query {
	return orm.New(r.db).WithContext(ctx).
		Model(&models.Product{}).
		Preload("Images", orderedImages).
		Preload("Owner")
}

// Paginate lists products matching filter and scopes, with relations.
func (r *ProductRepository) Paginate(ctx context.Context, filter ProductFilter, page, perPage int, scopes ...func(*gorm.DB) *gorm.DB) ([]models.Product, orm.Pagination, error) {
	products := []models.Product{}
	p, err := r.withRelations(ctx).
		Scopes(filter.Scope).
		Scopes(scopes...).
		Order(filter.orderClause()).
		GetWithPagination(&products, page, perPage)
	return products, p, err
}

// Find loads one product with relations. Returns gorm.ErrRecordNotFound
// when absent.
func (r *ProductRepository) Find(ctx context.Context, id uint) (models.Product, error) {
	var product models.Product
	err := r.withRelations(ctx).Where("products.id = ?", id).First(&product)
	return product, err
}

// FindBare loads one product without relations.
func (r *ProductRepository) FindBare(ctx context.Context, id uint) (models.Product, error) {
	var product models.Product
	err := orm.New(r.db).WithContext(ctx).Where("id = ?", id).First(&product)
	return product, err
}

// SKUTaken reports whether another product already uses sku.
func (r *ProductRepository) SKUTaken(ctx context.Context, sku string, exceptID uint) (bool, error) {
	q := orm.New(r.db).WithContext(ctx).Model(&models.Product{}).Where("product_id = ?", sku)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	n, err := q.Count()
	return n > 0, err
}

func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit("Owner", "Images").Create(product).Error
}

// Update writes only the given columns.
func (r *ProductRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Product{ID: id}).Updates(fields).Error
}

// Delete removes the product row. Returns gorm.ErrRecordNotFound when no
// row was deleted.
func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ProductRepository) AddImage(ctx context.Context, productID uint, path string) (models.ProductImage, error) {
	img := models.ProductImage{ProductID: productID, Path: path}
	err := r.db.WithContext(ctx).Create(&img).Error
	return img, err
}

// Images returns the product's images; when ids is non-empty only those ids
// that belong to the product.
func (r *ProductRepository) Images(ctx context.Context, productID uint, ids ...uint) ([]models.ProductImage, error) {
	images := []models.ProductImage{}
	q := orm.New(r.db).WithContext(ctx).Where("product_id = ?", productID)
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}
	err := q.Order("id ASC").Get(&images)
	return images, err
}

func (r *ProductRepository) DeleteImages(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.ProductImage{}).Error
}

// ─── Analytics ────────────────────────────────────────────────────────────────

// StockSummary holds the aggregates SQL can compute exactly.
type StockSummary struct {
	TotalProducts int64
	TotalStock    int64
	LowStock      int64
}

// PriceStock is the pair needed to value inventory.
type PriceStock struct {
	Price decimal.Decimal
	Stock int
}

// CategoryCount is one bar of the category histogram.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// RecentProduct is the projection shown in the dashboard's recent list.
type RecentProduct struct {
	ID        uint            `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	Category  string          `json:"category"`
	Image     *string         `json:"image"`
	CreatedAt time.Time       `json:"created_at"`
}

// lowStockBelow is the stock level under which a product counts as low.
const lowStockBelow = 5

// Summary counts products, total stock and low-stock products. Each
// aggregate runs as its own query over a fresh application of scope.
func (r *ProductRepository) Summary(ctx context.Context, scope func(*gorm.DB) *gorm.DB) (StockSummary, error) {
	var s StockSummary
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.Product{}).Scopes(scope)
	}

	if err := base().Count(&s.TotalProducts).Error; err != nil {
		return s, err
	}
	if err := base().Select("COALESCE(SUM(products.stock), 0)").Scan(&s.TotalStock).Error; err != nil {
		return s, err
	}
	if err := base().Where("products.stock < ?", lowStockBelow).Count(&s.LowStock).Error; err != nil {
		return s, err
	}
	return s, nil
}

// PriceStock returns price and stock of every scoped product.
func (r *ProductRepository) PriceStock(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]PriceStock, error) {
	rows := []PriceStock{}
	err := r.db.WithContext(ctx).Model(&models.Product{}).Scopes(scope).
		Select("products.price, products.stock").
		Order("products.id ASC").
		Scan(&rows).Error
	return rows, err
}

// Categories returns the limit most common categories, most products first.
// Ties go to the category whose first product was created earliest.
func (r *ProductRepository) Categories(ctx context.Context, scope func(*gorm.DB) *gorm.DB, limit int) ([]CategoryCount, error) {
	rows := []CategoryCount{}
	err := r.db.WithContext(ctx).Model(&models.Product{}).Scopes(scope).
		Select("products.category, COUNT(*) AS count").
		Group("products.category").
		Order("COUNT(*) DESC, MIN(products.id) ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// Recent returns the newest n scoped products without relations.
func (r *ProductRepository) Recent(ctx context.Context, scope func(*gorm.DB) *gorm.DB, n int) ([]RecentProduct, error) {
	rows := []RecentProduct{}
	err := r.db.WithContext(ctx).Model(&models.Product{}).Scopes(scope).
		Select("products.id, products.name, products.price, products.stock, products.category, products.image, products.created_at").
		Order("products.created_at DESC, products.id DESC").
		Limit(n).
		Scan(&rows).Error
	return rows, err
}
