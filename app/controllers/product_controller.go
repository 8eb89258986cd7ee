package controllers

import (
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/app/services"
	"github.com/shashiranjanraj/bazaar/pkg/bind"
	"github.com/shashiranjanraj/bazaar/pkg/collection"
	"github.com/shashiranjanraj/bazaar/pkg/ctx"
	"github.com/shopspring/decimal"
)

type ProductController struct {
	service *services.ProductService
}

func NewProductController(service *services.ProductService) *ProductController {
	return &ProductController{service: service}
}

// filter reads the storefront query string. It writes a 422 and returns
// false when a parameter is malformed.
func filter(c *ctx.Context) (repositories.ProductFilter, bool) {
	f := repositories.ProductFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Sort:     c.DefaultQuery("sort", repositories.SortNewest),
	}
	errs := map[string]string{}
	for key, dst := range map[string]**decimal.Decimal{"min_price": &f.MinPrice, "max_price": &f.MaxPrice} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			errs[key] = "The " + key + " field must be a number."
			continue
		}
		*dst = &d
	}
	if !repositories.ValidSort(f.Sort) {
		errs["sort"] = "The selected sort is invalid."
	}
	if len(errs) > 0 {
		c.ValidationError(errs)
		return f, false
	}
	return f, true
}

// Index handles GET /api/products.
func (h *ProductController) Index(c *ctx.Context) {
	f, ok := filter(c)
	if !ok {
		return
	}
	items, page, err := h.service.List(c.Context(), f, c.QueryInt("page", 1))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Paginated(items, page)
}

// Mine handles GET /api/seller/products.
func (h *ProductController) Mine(c *ctx.Context) {
	p, ok := c.Principal()
	if !ok {
		c.Unauthorized()
		return
	}
	f, ok := filter(c)
	if !ok {
		return
	}
	items, page, err := h.service.ListOwnedBy(c.Context(), p, f, c.QueryInt("page", 1))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Paginated(items, page)
}

func (h *ProductController) Show(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		c.NotFound()
		return
	}
	product, err := h.service.Get(c.Context(), id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(product)
}

// Store accepts JSON or multipart; images arrive as images[] file parts.
func (h *ProductController) Store(c *ctx.Context) {
	p, ok := c.Principal()
	if !ok {
		c.Unauthorized()
		return
	}
	var in services.CreateProductInput
	files, ok := c.Bind(&in)
	if !ok {
		return
	}
	product, err := h.service.Create(c.Context(), p, in, uploads(files))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(product)
}

func (h *ProductController) Update(c *ctx.Context) {
	p, ok := c.Principal()
	if !ok {
		c.Unauthorized()
		return
	}
	id, ok := c.ParamUint("id")
	if !ok {
		c.NotFound()
		return
	}
	var in services.UpdateProductInput
	files, ok := c.Bind(&in)
	if !ok {
		return
	}
	product, err := h.service.Update(c.Context(), p, id, in, uploads(files))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(product)
}

func (h *ProductController) Destroy(c *ctx.Context) {
	p, ok := c.Principal()
	if !ok {
		c.Unauthorized()
		return
	}
	id, ok := c.ParamUint("id")
	if !ok {
		c.NotFound()
		return
	}
	if err := h.service.Destroy(c.Context(), p, id); err != nil {
		c.Fail(err)
		return
	}
	c.Message("Product deleted")
}

func uploads(files []bind.File) []services.Upload {
	return collection.Map(files, func(f bind.File) services.Upload {
		return services.Upload{Filename: f.Filename, Data: f.Data}
	})
}
