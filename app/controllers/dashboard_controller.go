package controllers

import (
	"github.com/shashiranjanraj/bazaar/app/services"
	"github.com/shashiranjanraj/bazaar/pkg/ctx"
)

// DashboardController serves the seller dashboard. Every view is scoped to
// the caller.
type DashboardController struct {
	service *services.DashboardService
}

func NewDashboardController(service *services.DashboardService) *DashboardController {
	return &DashboardController{service: service}
}

func (h *DashboardController) Orders(c *ctx.Context) {
	p, ok := c.Principal()
	if !ok {
		c.Unauthorized()
		return
	}
	view, err := h.service.Orders(c.Context(), p)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(view)
}

func (h *DashboardController) Order(c *ctx.Context) {
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
	order, err := h.service.Order(c.Context(), p, id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(order)
}

func (h *DashboardController) Analytics(c *ctx.Context) {
	p, ok := c.Principal()
	if !ok {
		c.Unauthorized()
		return
	}
	view, err := h.service.Analytics(c.Context(), p)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(view)
}
