package controllers

import (
	"github.com/shashiranjanraj/bazaar/app/services"
	"github.com/shashiranjanraj/bazaar/pkg/ctx"
)

type AuthController struct {
	service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{service: service}
}

// Register handles POST /api/auth/register.
func (h *AuthController) Register(c *ctx.Context) {
	var in services.RegisterInput
	if _, ok := c.Bind(&in); !ok {
		return
	}
	res, err := h.service.Register(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(res)
}

// Login handles POST /api/auth/login.
func (h *AuthController) Login(c *ctx.Context) {
	var in services.LoginInput
	if _, ok := c.Bind(&in); !ok {
		return
	}
	res, err := h.service.Login(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(res)
}

// Refresh handles POST /api/auth/refresh. It reads the bearer token itself
// because an expired token is still refreshable.
func (h *AuthController) Refresh(c *ctx.Context) {
	token := c.BearerToken()
	if token == "" {
		c.Unauthorized()
		return
	}
	res, err := h.service.Refresh(c.Context(), token)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(res)
}

func (h *AuthController) Me(c *ctx.Context) {
	p, ok := c.Principal()
	if !ok {
		c.Unauthorized()
		return
	}
	user, err := h.service.Me(c.Context(), p)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(user)
}

func (h *AuthController) Logout(c *ctx.Context) {
	if err := h.service.Logout(c.Context(), c.BearerToken()); err != nil {
		c.Fail(err)
		return
	}
	c.Message("Logged out")
}
