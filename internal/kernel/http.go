// Package kernel assembles the bazaar HTTP handler: repositories, services,
// controllers and the global middleware stack.
package kernel

import (
	"context"
	"net/http"
	"time"

	"github.com/shashiranjanraj/bazaar/app/controllers"
	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/app/routes"
	"github.com/shashiranjanraj/bazaar/app/services"
	"github.com/shashiranjanraj/bazaar/config"
	"github.com/shashiranjanraj/bazaar/pkg/auth"
	"github.com/shashiranjanraj/bazaar/pkg/cache"
	"github.com/shashiranjanraj/bazaar/pkg/metrics"
	"github.com/shashiranjanraj/bazaar/pkg/middleware"
	"github.com/shashiranjanraj/bazaar/pkg/rbac"
	"github.com/shashiranjanraj/bazaar/pkg/reqid"
	"github.com/shashiranjanraj/bazaar/pkg/response"
	"github.com/shashiranjanraj/bazaar/pkg/router"
	"github.com/shashiranjanraj/bazaar/pkg/storage"
	"gorm.io/gorm"
)

// Options carries the kernel's dependencies. DB, Cache and Disk are
// required; the rest default from config via OptionsFromConfig.
type Options struct {
	DB    *gorm.DB
	Cache cache.Store
	Disk  storage.Disk

	JWTSecret     string
	JWTTTL        time.Duration
	JWTRefreshTTL time.Duration
	MutableRoles  []string
	PageSize      int
	MaxImageBytes int64
	RateLimit     int // requests per minute per client IP; 0 disables
	CORSOrigins   []string
}

// OptionsFromConfig fills every tunable from the environment.
func OptionsFromConfig(db *gorm.DB, store cache.Store, disk storage.Disk) Options {
	return Options{
		DB:            db,
		Cache:         store,
		Disk:          disk,
		JWTSecret:     config.JWTSecret(),
		JWTTTL:        config.JWTTTL(),
		JWTRefreshTTL: config.JWTRefreshTTL(),
		MutableRoles:  config.MutableRoles(),
		PageSize:      config.ProductPageSize(),
		MaxImageBytes: config.MaxImageBytes(),
		RateLimit:     config.RateLimit(),
		CORSOrigins:   config.CORSOrigins(),
	}
}

type Kernel struct {
	router  *router.Router
	limiter *middleware.RateLimiter
	db      *gorm.DB

	Tokens *auth.TokenService
	Blobs  *storage.BlobStore
}

// New wires the application and registers every route.
func New(opts Options) *Kernel {
	blobs := storage.NewBlobStore(opts.Disk)
	models.SetImageURLResolver(blobs.URL)

	tokens := auth.NewTokenService(opts.JWTSecret, opts.JWTTTL, opts.JWTRefreshTTL, opts.Cache)
	policy := rbac.NewPolicy(opts.MutableRoles...)

	users := repositories.NewUserRepository(opts.DB)
	products := repositories.NewProductRepository(opts.DB)
	orders := repositories.NewOrderRepository(opts.DB)

	k := &Kernel{router: router.New(), db: opts.DB, Tokens: tokens, Blobs: blobs}
	r := k.router

	// Outermost first. Metrics wraps everything so latency includes the
	// whole chain; the request id must exist before the logger runs.
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions(opts.CORSOrigins)))
	if opts.RateLimit > 0 {
		k.limiter = middleware.NewRateLimiter(opts.RateLimit, time.Minute)
		r.Use(k.limiter.Middleware)
	}

	r.Get("/metrics", "metrics", metrics.Handler())
	r.Get("/health", "health", k.health)
	if local, ok := opts.Disk.(*storage.LocalDisk); ok {
		r.Mount("/storage", "storage", http.StripPrefix("/storage", local.Handler()))
	}

	routes.RegisterAPI(r, routes.Deps{
		Auth: controllers.NewAuthController(services.NewAuthService(users, tokens)),
		Products: controllers.NewProductController(services.NewProductService(products, blobs, policy, services.ProductOptions{
			PageSize:      opts.PageSize,
			MaxImageBytes: opts.MaxImageBytes,
		})),
		Dashboard: controllers.NewDashboardController(services.NewDashboardService(products, orders)),
		Tokens:    tokens,
		Policy:    policy,
	})

	return k
}

func (k *Kernel) Handler() http.Handler { return k.router.Handler() }

func (k *Kernel) Router() *router.Router { return k.router }

// Close stops background work started by New.
func (k *Kernel) Close() {
	if k.limiter != nil {
		k.limiter.Stop()
	}
}

func (k *Kernel) health(w http.ResponseWriter, r *http.Request) {
	c, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	sqlDB, err := k.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c)
	}
	if err != nil {
		response.Error(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	response.Success(w, map[string]string{"status": "ok"})
}
