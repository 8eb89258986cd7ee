package services

import (
	"context"
	"testing"
	"time"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	_ "github.com/shashiranjanraj/bazaar/database/migrations"
	"github.com/shashiranjanraj/bazaar/pkg/auth"
	"github.com/shashiranjanraj/bazaar/pkg/cache"
	"github.com/shashiranjanraj/bazaar/pkg/database"
	"github.com/shashiranjanraj/bazaar/pkg/migration"
	"github.com/shashiranjanraj/bazaar/pkg/rbac"
	"github.com/shashiranjanraj/bazaar/pkg/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// pngBytes is enough of a PNG for content sniffing.
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)

type fixture struct {
	ctx       context.Context
	db        *gorm.DB
	disk      *storage.MemoryDisk
	tokens    *auth.TokenService
	auth      *AuthService
	products  *ProductService
	dashboard *DashboardService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Open("sqlite", ":memory:")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, migration.New(db, nil).Run())

	disk := storage.NewMemoryDisk("https://cdn.test/storage")
	blobs := storage.NewBlobStore(disk)
	models.SetImageURLResolver(blobs.URL)

	productRepo := repositories.NewProductRepository(db)
	tokens := auth.NewTokenService("test-secret", time.Hour, 24*time.Hour, cache.NewMemory())
	policy := rbac.NewPolicy(auth.RoleAdmin, auth.RoleShopOwner, auth.RoleSeller)

	return &fixture{
		ctx:       context.Background(),
		db:        db,
		disk:      disk,
		tokens:    tokens,
		auth:      NewAuthService(repositories.NewUserRepository(db), tokens),
		products:  NewProductService(productRepo, blobs, policy, ProductOptions{PageSize: 12, MaxImageBytes: 1024}),
		dashboard: NewDashboardService(productRepo, repositories.NewOrderRepository(db)),
	}
}

func (f *fixture) user(t *testing.T, name, role string) auth.Principal {
	t.Helper()
	u := models.User{Name: name, Email: name + "@example.com", Password: "x", Role: role}
	require.NoError(t, f.db.Create(&u).Error)
	return auth.Principal{ID: u.ID, Role: u.Role}
}

// product inserts a product directly, bypassing the service.
func (f *fixture) product(t *testing.T, owner auth.Principal, name, price string, stock int, category string) models.Product {
	t.Helper()
	p := models.Product{
		UserID:      owner.ID,
		Name:        name,
		Description: name + " description",
		Price:       decimal.RequireFromString(price),
		Category:    category,
		Stock:       stock,
		Tags:        datatypes.JSONSlice[string]{},
	}
	require.NoError(t, f.db.Omit("Owner", "Images").Create(&p).Error)
	return p
}

type line struct {
	seller    auth.Principal
	productID uint
	qty       int
	unitPrice string
}

func (f *fixture) order(t *testing.T, buyer auth.Principal, number, status string, at time.Time, lines ...line) models.Order {
	t.Helper()
	o := models.Order{OrderNumber: number, BuyerID: buyer.ID, Status: status, CreatedAt: at, UpdatedAt: at}
	require.NoError(t, f.db.Omit("Buyer", "Items").Create(&o).Error)
	for _, l := range lines {
		item := models.NewOrderItem(o.ID, l.productID, l.seller.ID, l.qty, decimal.RequireFromString(l.unitPrice))
		require.NoError(t, f.db.Create(&item).Error)
	}
	return o
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }
