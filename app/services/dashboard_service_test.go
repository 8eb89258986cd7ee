package services

import (
	"testing"
	"time"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrdersSplitAcrossSellers(t *testing.T) {
	f := newFixture(t)
	s1 := f.user(t, "s1", auth.RoleSeller)
	s2 := f.user(t, "s2", auth.RoleSeller)
	buyer := f.user(t, "buyer", auth.RoleBuyer)
	p1 := f.product(t, s1, "Mug", "10.00", 5, "Home")
	p2 := f.product(t, s2, "Pen", "5.00", 5, "Office")

	o := f.order(t, buyer, "ORD-SPLIT", models.OrderPending, time.Now().UTC(),
		line{s1, p1.ID, 2, "10.00"},
		line{s2, p2.ID, 1, "5.00"},
	)

	v1, err := f.dashboard.Orders(f.ctx, s1)
	require.NoError(t, err)
	require.Len(t, v1.Data, 1)
	assert.Equal(t, o.ID, v1.Data[0].ID)
	assert.True(t, v1.Data[0].Total.Equal(dec("20")))
	assert.Equal(t, 2, v1.Data[0].ItemsCount)
	require.NotNil(t, v1.Data[0].BuyerName)
	assert.Equal(t, "buyer", *v1.Data[0].BuyerName)

	v2, err := f.dashboard.Orders(f.ctx, s2)
	require.NoError(t, err)
	require.Len(t, v2.Data, 1)
	assert.True(t, v2.Data[0].Total.Equal(dec("5")))
	assert.Equal(t, 1, v2.Data[0].ItemsCount)

	admin := f.user(t, "admin", auth.RoleAdmin)
	all, err := f.dashboard.Orders(f.ctx, admin)
	require.NoError(t, err)
	require.Len(t, all.Data, 1)
	assert.True(t, all.Data[0].Total.Equal(dec("25")))
	assert.Equal(t, 3, all.Data[0].ItemsCount)
}

func TestOrdersStatsAndOrdering(t *testing.T) {
	f := newFixture(t)
	s := f.user(t, "s", auth.RoleSeller)
	other := f.user(t, "other", auth.RoleSeller)
	buyer := f.user(t, "buyer", auth.RoleBuyer)
	p := f.product(t, s, "Mug", "0.10", 50, "Home")
	q := f.product(t, other, "Pen", "1.00", 50, "Office")

	now := time.Now().UTC().Truncate(time.Second)
	f.order(t, buyer, "ORD-OLD", models.OrderFulfilled, now.Add(-48*time.Hour), line{s, p.ID, 3, "0.10"})
	f.order(t, buyer, "ORD-NEW", models.OrderPending, now, line{s, p.ID, 1, "0.10"}, line{s, p.ID, 2, "0.20"})
	f.order(t, buyer, "ORD-MID", models.OrderShipped, now.Add(-24*time.Hour), line{s, p.ID, 1, "0.10"})
	f.order(t, buyer, "ORD-NOT-MINE", models.OrderPending, now, line{other, q.ID, 1, "1.00"})

	v, err := f.dashboard.Orders(f.ctx, s)
	require.NoError(t, err)

	require.Len(t, v.Data, 3)
	assert.Equal(t, "ORD-NEW", v.Data[0].OrderNumber)
	assert.Equal(t, "ORD-MID", v.Data[1].OrderNumber)
	assert.Equal(t, "ORD-OLD", v.Data[2].OrderNumber)

	assert.Equal(t, 3, v.Stats.TotalOrders)
	assert.Equal(t, 1, v.Stats.Pending)
	assert.Equal(t, 1, v.Stats.Fulfilled)

	// 0.30 + 0.50 + 0.10, exact to the cent.
	assert.True(t, v.Stats.Revenue.Equal(dec("0.90")), v.Stats.Revenue.String())
	sum := dec("0")
	for _, row := range v.Data {
		sum = sum.Add(row.Total)
	}
	assert.True(t, v.Stats.Revenue.Equal(sum))
}

func TestOrdersEmpty(t *testing.T) {
	f := newFixture(t)
	s := f.user(t, "s", auth.RoleSeller)

	v, err := f.dashboard.Orders(f.ctx, s)
	require.NoError(t, err)
	assert.NotNil(t, v.Data)
	assert.Empty(t, v.Data)
	assert.Zero(t, v.Stats.TotalOrders)
	assert.True(t, v.Stats.Revenue.IsZero())
}

func TestOrderDetailShowsOnlyOwnLines(t *testing.T) {
	f := newFixture(t)
	s1 := f.user(t, "s1", auth.RoleSeller)
	s2 := f.user(t, "s2", auth.RoleSeller)
	s3 := f.user(t, "s3", auth.RoleSeller)
	buyer := f.user(t, "buyer", auth.RoleBuyer)
	p1 := f.product(t, s1, "Mug", "10.00", 5, "Home")
	p2 := f.product(t, s2, "Pen", "5.00", 5, "Office")
	o := f.order(t, buyer, "ORD-1", models.OrderPending, time.Now().UTC(),
		line{s1, p1.ID, 2, "10.00"}, line{s2, p2.ID, 1, "5.00"})

	got, err := f.dashboard.Order(f.ctx, s1, o.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, s1.ID, got.Items[0].SellerID)
	require.NotNil(t, got.Buyer)
	assert.Equal(t, "buyer", got.Buyer.Name)

	_, err = f.dashboard.Order(f.ctx, s3, o.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.dashboard.Order(f.ctx, s1, o.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAnalyticsSellerScenario(t *testing.T) {
	f := newFixture(t)
	s := f.user(t, "s", auth.RoleSeller)
	other := f.user(t, "other", auth.RoleShopOwner)
	f.product(t, s, "A", "10.00", 3, "Home")
	f.product(t, s, "B", "2.50", 10, "Audio")
	f.product(t, other, "C", "99.99", 1, "Home")

	v, err := f.dashboard.Analytics(f.ctx, s)
	require.NoError(t, err)

	assert.Equal(t, int64(2), v.Summary.TotalProducts)
	assert.Equal(t, int64(13), v.Summary.TotalStock)
	assert.Equal(t, int64(1), v.Summary.LowStock)
	assert.True(t, v.Summary.TotalValue.Equal(dec("55.00")), v.Summary.TotalValue.String())
	assert.True(t, v.Summary.AvgPrice.Equal(dec("6.25")), v.Summary.AvgPrice.String())

	require.Len(t, v.Categories, 2)
	require.Len(t, v.RecentProducts, 2)
	assert.Equal(t, "B", v.RecentProducts[0].Name)
}

func TestAnalyticsExactCents(t *testing.T) {
	f := newFixture(t)
	s := f.user(t, "s", auth.RoleSeller)
	for i := 0; i < 10; i++ {
		f.product(t, s, "Dime", "0.10", 3, "Misc")
	}
	f.product(t, s, "Odd", "19.99", 7, "Misc")

	v, err := f.dashboard.Analytics(f.ctx, s)
	require.NoError(t, err)
	// 10 × 0.10 × 3 + 19.99 × 7
	assert.True(t, v.Summary.TotalValue.Equal(dec("142.93")), v.Summary.TotalValue.String())
}

func TestAnalyticsEmptyScope(t *testing.T) {
	f := newFixture(t)
	s := f.user(t, "s", auth.RoleSeller)

	v, err := f.dashboard.Analytics(f.ctx, s)
	require.NoError(t, err)
	assert.Zero(t, v.Summary.TotalProducts)
	assert.True(t, v.Summary.TotalValue.IsZero())
	assert.True(t, v.Summary.AvgPrice.IsZero())
	assert.Empty(t, v.Categories)
	assert.Empty(t, v.RecentProducts)
}

func TestAnalyticsCategories(t *testing.T) {
	f := newFixture(t)
	admin := f.user(t, "admin", auth.RoleAdmin)
	s := f.user(t, "s", auth.RoleSeller)

	// Home and Audio tie on two; Home was listed first.
	for _, c := range []string{"Home", "Audio", "Audio", "Home", "Misc", "Garden", "Toys", "Books", "Office", "Tools", "Sport"} {
		f.product(t, s, c+" item", "1.00", 1, c)
	}

	v, err := f.dashboard.Analytics(f.ctx, admin)
	require.NoError(t, err)
	require.Len(t, v.Categories, 8)
	assert.Equal(t, "Home", v.Categories[0].Category)
	assert.Equal(t, int64(2), v.Categories[0].Count)
	assert.Equal(t, "Audio", v.Categories[1].Category)
	assert.Equal(t, "Misc", v.Categories[2].Category)
	assert.Len(t, v.RecentProducts, 5)
}
