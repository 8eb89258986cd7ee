package services

import (
	"context"
	"time"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/pkg/auth"
	"github.com/shashiranjanraj/bazaar/pkg/collection"
	"github.com/shashiranjanraj/bazaar/pkg/metrics"
	"github.com/shopspring/decimal"
)

const (
	topCategories  = 8
	recentProducts = 5
)

// OrderSummary is one order as a seller sees it: totals cover only the
// seller's own lines.
type OrderSummary struct {
	ID          uint            `json:"id"`
	OrderNumber string          `json:"order_number"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	Total       decimal.Decimal `json:"total"`
	ItemsCount  int             `json:"items_count"`
	BuyerName   *string         `json:"buyer_name"`
}

type OrderStats struct {
	TotalOrders int             `json:"total_orders"`
	Pending     int             `json:"pending"`
	Fulfilled   int             `json:"fulfilled"`
	Revenue     decimal.Decimal `json:"revenue"`
}

type OrdersView struct {
	Data  []OrderSummary `json:"data"`
	Stats OrderStats     `json:"stats"`
}

type AnalyticsSummary struct {
	TotalProducts int64           `json:"total_products"`
	TotalStock    int64           `json:"total_stock"`
	TotalValue    decimal.Decimal `json:"total_value"`
	AvgPrice      decimal.Decimal `json:"avg_price"`
	LowStock      int64           `json:"low_stock"`
}

type AnalyticsView struct {
	Summary        AnalyticsSummary             `json:"summary"`
	Categories     []repositories.CategoryCount `json:"categories"`
	RecentProducts []repositories.RecentProduct `json:"recent_products"`
}

// DashboardService builds the seller dashboard. Every view is scoped to
// the principal's own products and sales unless they are an admin.
type DashboardService struct {
	products *repositories.ProductRepository
	orders   *repositories.OrderRepository
}

func NewDashboardService(products *repositories.ProductRepository, orders *repositories.OrderRepository) *DashboardService {
	return &DashboardService{products: products, orders: orders}
}

// Orders rolls the principal's order lines up into one row per order,
// newest first, with totals over the visible lines only.
func (s *DashboardService) Orders(ctx context.Context, p auth.Principal) (OrdersView, error) {
	defer metrics.ObserveDashboard("orders", time.Now())

	lines, err := s.orders.LineItems(ctx, repositories.SoldBy(p))
	if err != nil {
		return OrdersView{}, storageErr("dashboard orders", err)
	}

	groups := collection.GroupBy(lines, func(l repositories.OrderLine) uint { return l.OrderID })
	data := collection.Map(groups, func(g collection.Group[uint, repositories.OrderLine]) OrderSummary {
		first := g.Items[0]
		return OrderSummary{
			ID:          first.OrderID,
			OrderNumber: first.OrderNumber,
			Status:      first.Status,
			CreatedAt:   first.CreatedAt,
			BuyerName:   first.BuyerName,
			Total: collection.Reduce(g.Items, decimal.Zero, func(acc decimal.Decimal, l repositories.OrderLine) decimal.Decimal {
				return acc.Add(l.Total)
			}),
			ItemsCount: collection.Reduce(g.Items, 0, func(acc int, l repositories.OrderLine) int {
				return acc + l.Quantity
			}),
		}
	})
	if data == nil {
		data = []OrderSummary{}
	}

	return OrdersView{Data: data, Stats: orderStats(data)}, nil
}

func orderStats(rows []OrderSummary) OrderStats {
	withStatus := func(status string) func(OrderSummary) bool {
		return func(o OrderSummary) bool { return o.Status == status }
	}
	return OrderStats{
		TotalOrders: len(rows),
		Pending:     collection.Count(rows, withStatus(models.OrderPending)),
		Fulfilled:   collection.Count(rows, withStatus(models.OrderFulfilled)),
		Revenue: collection.Reduce(rows, decimal.Zero, func(acc decimal.Decimal, o OrderSummary) decimal.Decimal {
			return acc.Add(o.Total)
		}),
	}
}

// Order returns one order with only the principal's lines. An order with
// none of their lines is not found.
func (s *DashboardService) Order(ctx context.Context, p auth.Principal, id uint) (models.Order, error) {
	order, err := s.orders.Find(ctx, id, repositories.SoldBy(p))
	if err != nil {
		return models.Order{}, notFoundOr("dashboard order", err)
	}
	if len(order.Items) == 0 && !p.IsAdmin() {
		return models.Order{}, ErrNotFound
	}
	return order, nil
}

// Analytics summarises the principal's inventory.
func (s *DashboardService) Analytics(ctx context.Context, p auth.Principal) (AnalyticsView, error) {
	defer metrics.ObserveDashboard("analytics", time.Now())
	scope := repositories.OwnedBy(p)

	stock, err := s.products.Summary(ctx, scope)
	if err != nil {
		return AnalyticsView{}, storageErr("analytics summary", err)
	}
	rows, err := s.products.PriceStock(ctx, scope)
	if err != nil {
		return AnalyticsView{}, storageErr("analytics value", err)
	}
	categories, err := s.products.Categories(ctx, scope, topCategories)
	if err != nil {
		return AnalyticsView{}, storageErr("analytics categories", err)
	}
	recent, err := s.products.Recent(ctx, scope, recentProducts)
	if err != nil {
		return AnalyticsView{}, storageErr("analytics recent", err)
	}

	value, priceSum := decimal.Zero, decimal.Zero
	for _, r := range rows {
		value = value.Add(r.Price.Mul(decimal.NewFromInt(int64(r.Stock))))
		priceSum = priceSum.Add(r.Price)
	}
	avg := decimal.Zero
	if len(rows) > 0 {
		avg = priceSum.DivRound(decimal.NewFromInt(int64(len(rows))), 2)
	}

	return AnalyticsView{
		Summary: AnalyticsSummary{
			TotalProducts: stock.TotalProducts,
			TotalStock:    stock.TotalStock,
			TotalValue:    value,
			AvgPrice:      avg,
			LowStock:      stock.LowStock,
		},
		Categories:     categories,
		RecentProducts: recent,
	}, nil
}
