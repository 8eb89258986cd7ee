package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/pkg/auth"
	"github.com/shashiranjanraj/bazaar/pkg/collection"
	"github.com/shashiranjanraj/bazaar/pkg/logger"
	"github.com/shashiranjanraj/bazaar/pkg/metrics"
	"github.com/shashiranjanraj/bazaar/pkg/orm"
	"github.com/shashiranjanraj/bazaar/pkg/rbac"
	"github.com/shashiranjanraj/bazaar/pkg/storage"
	"github.com/shashiranjanraj/bazaar/pkg/validate"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// imageDir is the blob directory product images are written under.
const imageDir = "products"

type CreateProductInput struct {
	ProductID   *string          `json:"product_id"  validate:"nullable,max=255"`
	Name        string           `json:"name"        validate:"required,max=255"`
	Description string           `json:"description" validate:"required"`
	Price       *decimal.Decimal `json:"price"       validate:"required,gte=0"`
	Category    string           `json:"category"    validate:"required,max=255"`
	Stock       int              `json:"stock"       validate:"gte=0"`
	Rating      *decimal.Decimal `json:"rating"      validate:"sometimes,between=0,5"`
	Tags        []string         `json:"tags"`
	Image       *string          `json:"image"       validate:"nullable,max=255"`
}

// UpdateProductInput is a partial update: nil fields are left alone. An
// empty product_id clears the SKU.
type UpdateProductInput struct {
	ProductID      *string          `json:"product_id"       validate:"nullable,max=255"`
	Name           *string          `json:"name"             validate:"sometimes,required,max=255"`
	Description    *string          `json:"description"      validate:"sometimes,required"`
	Price          *decimal.Decimal `json:"price"            validate:"sometimes,gte=0"`
	Category       *string          `json:"category"         validate:"sometimes,required,max=255"`
	Stock          *int             `json:"stock"            validate:"sometimes,gte=0"`
	Rating         *decimal.Decimal `json:"rating"           validate:"sometimes,between=0,5"`
	Tags           *[]string        `json:"tags"`
	Image          *string          `json:"image"            validate:"nullable,max=255"`
	DeleteImageIDs []uint           `json:"delete_image_ids"`
}

// Upload is one image file sent with a create or update.
type Upload struct {
	Filename string
	Data     []byte
}

type ProductOptions struct {
	PageSize      int
	MaxImageBytes int64
}

type ProductService struct {
	products *repositories.ProductRepository
	blobs    *storage.BlobStore
	policy   *rbac.Policy
	opts     ProductOptions
}

func NewProductService(products *repositories.ProductRepository, blobs *storage.BlobStore, policy *rbac.Policy, opts ProductOptions) *ProductService {
	if opts.PageSize < 1 {
		opts.PageSize = 12
	}
	if opts.MaxImageBytes < 1 {
		opts.MaxImageBytes = 5 << 20
	}
	return &ProductService{products: products, blobs: blobs, policy: policy, opts: opts}
}

// List returns one page of every product, newest first unless the filter
// sorts otherwise.
func (s *ProductService) List(ctx context.Context, filter repositories.ProductFilter, page int) ([]models.Product, orm.Pagination, error) {
	items, p, err := s.products.Paginate(ctx, filter, page, s.opts.PageSize)
	if err != nil {
		return nil, orm.Pagination{}, storageErr("list products", err)
	}
	return items, p, nil
}

// ListOwnedBy is List restricted to p's own products. Admins see all.
func (s *ProductService) ListOwnedBy(ctx context.Context, p auth.Principal, filter repositories.ProductFilter, page int) ([]models.Product, orm.Pagination, error) {
	items, pg, err := s.products.Paginate(ctx, filter, page, s.opts.PageSize, repositories.OwnedBy(p))
	if err != nil {
		return nil, orm.Pagination{}, storageErr("list owned products", err)
	}
	return items, pg, nil
}

func (s *ProductService) Get(ctx context.Context, id uint) (models.Product, error) {
	product, err := s.products.Find(ctx, id)
	if err != nil {
		return models.Product{}, notFoundOr("get product", err)
	}
	return product, nil
}

// Create stores a product owned by p and one image per upload, in order.
func (s *ProductService) Create(ctx context.Context, p auth.Principal, in CreateProductInput, uploads []Upload) (models.Product, error) {
	if !s.policy.CanWrite(p.Role) {
		return models.Product{}, ErrForbidden
	}
	if errs := validate.Struct(&in); len(errs) > 0 {
		return models.Product{}, &ValidationError{Fields: errs}
	}
	if err := s.checkUploads(uploads); err != nil {
		return models.Product{}, err
	}

	sku := normalizeSKU(in.ProductID)
	if err := s.checkSKU(ctx, sku, 0); err != nil {
		return models.Product{}, err
	}

	product := models.Product{
		SKU:         sku,
		UserID:      p.ID,
		Name:        in.Name,
		Description: in.Description,
		Price:       *in.Price,
		Image:       blankToNil(in.Image),
		Category:    in.Category,
		Stock:       in.Stock,
		Tags:        datatypes.JSONSlice[string](in.Tags),
	}
	if in.Rating != nil {
		product.Rating = *in.Rating
	}

	var written []string
	err := s.products.Transaction(ctx, func(tx *repositories.ProductRepository) error {
		if err := tx.Create(ctx, &product); err != nil {
			return err
		}
		var err error
		written, err = s.storeImages(ctx, tx, product.ID, uploads)
		return err
	})
	if err != nil {
		s.discard(ctx, written)
		return models.Product{}, writeErr("create product", err)
	}

	metrics.ProductMutations.WithLabelValues("create").Inc()
	return s.Get(ctx, product.ID)
}

// Update applies the present fields, then removes the requested images,
// then appends the uploads. Only the owner or an admin may update.
func (s *ProductService) Update(ctx context.Context, p auth.Principal, id uint, in UpdateProductInput, uploads []Upload) (models.Product, error) {
	current, err := s.products.FindBare(ctx, id)
	if err != nil {
		return models.Product{}, notFoundOr("update product", err)
	}
	if !s.policy.CanWrite(p.Role) || !s.policy.CanMutate(p, current.UserID) {
		return models.Product{}, ErrForbidden
	}
	if errs := validate.Struct(&in); len(errs) > 0 {
		return models.Product{}, &ValidationError{Fields: errs}
	}
	if err := s.checkUploads(uploads); err != nil {
		return models.Product{}, err
	}

	fields := updateFields(in)
	if in.ProductID != nil {
		if err := s.checkSKU(ctx, normalizeSKU(in.ProductID), id); err != nil {
			return models.Product{}, err
		}
	}

	var (
		written []string
		removed []models.ProductImage
	)
	err = s.products.Transaction(ctx, func(tx *repositories.ProductRepository) error {
		if err := tx.Update(ctx, id, fields); err != nil {
			return err
		}
		if len(in.DeleteImageIDs) > 0 {
			imgs, err := tx.Images(ctx, id, in.DeleteImageIDs...)
			if err != nil {
				return err
			}
			if err := tx.DeleteImages(ctx, imageIDs(imgs)); err != nil {
				return err
			}
			removed = imgs
		}
		var err error
		written, err = s.storeImages(ctx, tx, id, uploads)
		return err
	})
	if err != nil {
		s.discard(ctx, written)
		return models.Product{}, writeErr("update product", err)
	}

	s.discard(ctx, imagePaths(removed))
	metrics.ProductMutations.WithLabelValues("update").Inc()
	return s.Get(ctx, id)
}

// Destroy deletes the product, its images and their blobs. Order items
// that reference it are left untouched.
func (s *ProductService) Destroy(ctx context.Context, p auth.Principal, id uint) error {
	current, err := s.products.FindBare(ctx, id)
	if err != nil {
		return notFoundOr("destroy product", err)
	}
	if !s.policy.CanWrite(p.Role) || !s.policy.CanMutate(p, current.UserID) {
		return ErrForbidden
	}

	var removed []models.ProductImage
	err = s.products.Transaction(ctx, func(tx *repositories.ProductRepository) error {
		imgs, err := tx.Images(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.DeleteImages(ctx, imageIDs(imgs)); err != nil {
			return err
		}
		removed = imgs
		return tx.Delete(ctx, id)
	})
	if err != nil {
		return notFoundOr("destroy product", err)
	}

	s.discard(ctx, imagePaths(removed))
	metrics.ProductMutations.WithLabelValues("delete").Inc()
	return nil
}

// storeImages writes each upload to the blob store and records it. Paths
// written so far are returned even on failure so the caller can remove them.
func (s *ProductService) storeImages(ctx context.Context, tx *repositories.ProductRepository, productID uint, uploads []Upload) ([]string, error) {
	var written []string
	for _, u := range uploads {
		path, err := s.blobs.Put(ctx, imageDir, u.Data)
		if err != nil {
			return written, fmt.Errorf("%w: %w", ErrStorage, err)
		}
		written = append(written, path)
		if _, err := tx.AddImage(ctx, productID, path); err != nil {
			return written, err
		}
	}
	return written, nil
}

// discard removes blobs that are no longer referenced. Failures leave an
// orphaned file and are only logged.
func (s *ProductService) discard(ctx context.Context, paths []string) {
	for _, path := range paths {
		if err := s.blobs.Delete(ctx, path); err != nil && !errors.Is(err, storage.ErrNotExist) {
			logger.WithCtx(ctx).Warn("blob delete failed", "path", path, "error", err.Error())
		}
	}
}

func (s *ProductService) checkUploads(uploads []Upload) error {
	errs := make(map[string]string)
	for i, u := range uploads {
		field := fmt.Sprintf("images.%d", i)
		if int64(len(u.Data)) > s.opts.MaxImageBytes {
			errs[field] = fmt.Sprintf("The %s must not be greater than %d kilobytes.", field, s.opts.MaxImageBytes/1024)
			continue
		}
		if _, _, err := storage.DetectImage(u.Data); err != nil {
			errs[field] = fmt.Sprintf("The %s must be an image.", field)
		}
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

func (s *ProductService) checkSKU(ctx context.Context, sku *string, exceptID uint) error {
	if sku == nil {
		return nil
	}
	taken, err := s.products.SKUTaken(ctx, *sku, exceptID)
	if err != nil {
		return storageErr("check product id", err)
	}
	if taken {
		return errSKUTaken
	}
	return nil
}

// writeErr classifies a failed product write.
func writeErr(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", op, errSKUTaken)
	case errors.Is(err, ErrStorage):
		return fmt.Errorf("%s: %w", op, err)
	default:
		return storageErr(op, err)
	}
}

func updateFields(in UpdateProductInput) map[string]interface{} {
	fields := make(map[string]interface{})
	if in.ProductID != nil {
		fields["product_id"] = normalizeSKU(in.ProductID)
	}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Price != nil {
		fields["price"] = *in.Price
	}
	if in.Category != nil {
		fields["category"] = *in.Category
	}
	if in.Stock != nil {
		fields["stock"] = *in.Stock
	}
	if in.Rating != nil {
		fields["rating"] = *in.Rating
	}
	if in.Tags != nil {
		tags := *in.Tags
		if tags == nil {
			tags = []string{}
		}
		fields["tags"] = datatypes.JSONSlice[string](tags)
	}
	if in.Image != nil {
		fields["image"] = blankToNil(in.Image)
	}
	return fields
}

func normalizeSKU(sku *string) *string {
	return blankToNil(sku)
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func imageIDs(imgs []models.ProductImage) []uint {
	return collection.Map(imgs, func(i models.ProductImage) uint { return i.ID })
}

func imagePaths(imgs []models.ProductImage) []string {
	return collection.Map(imgs, func(i models.ProductImage) string { return i.Path })
}
