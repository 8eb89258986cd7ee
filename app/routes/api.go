package routes

import (
	"github.com/shashiranjanraj/bazaar/app/controllers"
	"github.com/shashiranjanraj/bazaar/pkg/ctx"
	"github.com/shashiranjanraj/bazaar/pkg/middleware"
	"github.com/shashiranjanraj/bazaar/pkg/rbac"
	"github.com/shashiranjanraj/bazaar/pkg/router"
)

// Deps is everything the API routes need. A zero Deps is enough to
// register the table for route:list.
type Deps struct {
	Auth      *controllers.AuthController
	Products  *controllers.ProductController
	Dashboard *controllers.DashboardController
	Tokens    middleware.TokenResolver
	Policy    *rbac.Policy
}

func RegisterAPI(r *router.Router, d Deps) {
	authenticated := middleware.Authenticate(d.Tokens)
	writer := router.Middleware(d.Policy.RequireWriter)

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", "auth.register", ctx.Wrap(d.Auth.Register))
	auth.Post("/login", "auth.login", ctx.Wrap(d.Auth.Login))
	auth.Post("/refresh", "auth.refresh", ctx.Wrap(d.Auth.Refresh))
	auth.Get("/me", "auth.me", ctx.Wrap(d.Auth.Me), authenticated)
	auth.Post("/logout", "auth.logout", ctx.Wrap(d.Auth.Logout), authenticated)

	api.Get("/products", "products.index", ctx.Wrap(d.Products.Index))
	api.Get("/products/{id}", "products.show", ctx.Wrap(d.Products.Show))

	writers := api.Group("/products", authenticated, writer)
	writers.Post("", "products.store", ctx.Wrap(d.Products.Store))
	writers.Put("/{id}", "products.update", ctx.Wrap(d.Products.Update))
	writers.Patch("/{id}", "products.patch", ctx.Wrap(d.Products.Update))
	writers.Delete("/{id}", "products.destroy", ctx.Wrap(d.Products.Destroy))

	seller := api.Group("/seller", authenticated)
	seller.Get("/products", "products.mine", ctx.Wrap(d.Products.Mine), writer)
	seller.Get("/orders", "dashboard.orders", ctx.Wrap(d.Dashboard.Orders))
	seller.Get("/orders/{id}", "dashboard.order", ctx.Wrap(d.Dashboard.Order))
	seller.Get("/analytics", "dashboard.analytics", ctx.Wrap(d.Dashboard.Analytics))
}
