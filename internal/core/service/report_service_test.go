package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/inventory/internal/adapter/storage"
	"github.com/rl1809/inventory/internal/core/domain"
)

func TestSalesSummary(t *testing.T) {
	mem := storage.NewMemory()
	mugs := seedProduct(t, mem, 100, 10.0)
	orders := newOrderFixture(mem)
	reports := NewReportService(mem.Products(), mem.Orders())
	ctx := context.Background()

	_, err := orders.PlaceOrder(ctx, PlaceOrderRequest{
		CustomerName: "Alice",
		Lines:        []OrderLineRequest{{ProductID: mugs.ID, Quantity: 3}},
	})
	require.NoError(t, err)

	cancelled, err := orders.PlaceOrder(ctx, PlaceOrderRequest{
		CustomerName: "Bob",
		Lines:        []OrderLineRequest{{ProductID: mugs.ID, Quantity: 5}},
	})
	require.NoError(t, err)
	_, err = orders.UpdateStatus(ctx, cancelled.ID, domain.OrderStatusCancelled)
	require.NoError(t, err)

	summary, err := reports.SalesSummary(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, 30.0, summary.TotalSales, "cancelled orders do not count")
	assert.Equal(t, 1, summary.TotalOrders)
	require.Len(t, summary.TopProducts, 1)
	assert.Equal(t, mugs.Name, summary.TopProducts[0].Name)
	assert.Equal(t, 30.0, summary.TopProducts[0].Sales)
	require.Len(t, summary.SalesByMonth, 1)
	assert.Equal(t, 30.0, summary.SalesByMonth[0].Sales)
}

func TestSalesSummary_TopProductLimit(t *testing.T) {
	mem := storage.NewMemory()
	orders := newOrderFixture(mem)
	reports := NewReportService(mem.Products(), mem.Orders())
	ctx := context.Background()

	var lines []OrderLineRequest
	for i := 0; i < 7; i++ {
		p := seedProduct(t, mem, 10, float64(i+1))
		p.Name = p.SKU // distinct names so sales aggregate separately
		require.NoError(t, mem.Products().Update(ctx, p))
		lines = append(lines, OrderLineRequest{ProductID: p.ID, Quantity: 1})
	}
	_, err := orders.PlaceOrder(ctx, PlaceOrderRequest{CustomerName: "Alice", Lines: lines})
	require.NoError(t, err)

	summary, err := reports.SalesSummary(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, summary.TopProducts, 5)
	// Sorted by sales, highest first.
	assert.Equal(t, 7.0, summary.TopProducts[0].Sales)
	assert.GreaterOrEqual(t, summary.TopProducts[0].Sales, summary.TopProducts[4].Sales)
}

func TestInventorySummary(t *testing.T) {
	mem := storage.NewMemory()
	reports := NewReportService(mem.Products(), mem.Orders())
	ctx := context.Background()

	healthy := seedProduct(t, mem, 50, 2.0)
	low := seedProduct(t, mem, 4, 10.0)
	empty := seedProduct(t, mem, 0, 5.0)
	_ = healthy

	summary, err := reports.InventorySummary(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalProducts)
	assert.Equal(t, 50*2.0+4*10.0, summary.TotalInventoryValue)
	require.Len(t, summary.LowStockProducts, 1)
	assert.Equal(t, low.SKU, summary.LowStockProducts[0].SKU)
	assert.Equal(t, 4, summary.LowStockProducts[0].CurrentStock)
	require.Len(t, summary.OutOfStockProducts, 1)
	assert.Equal(t, empty.SKU, summary.OutOfStockProducts[0].SKU)
}

func TestDashboardStats(t *testing.T) {
	mem := storage.NewMemory()
	product := seedProduct(t, mem, 11, 3.0)
	orders := newOrderFixture(mem)
	reports := NewReportService(mem.Products(), mem.Orders())
	ctx := context.Background()

	placed, err := orders.PlaceOrder(ctx, PlaceOrderRequest{
		CustomerName: "Alice",
		Lines:        []OrderLineRequest{{ProductID: product.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	stats, err := reports.DashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalProducts)
	assert.Equal(t, 1, stats.TotalOrders)
	assert.Equal(t, 1, stats.PendingOrders)
	require.Len(t, stats.RecentOrders, 1)
	assert.Equal(t, placed.ID, stats.RecentOrders[0].ID)
	// 11 - 2 = 9 is below the default threshold of 10.
	require.Len(t, stats.LowStockAlerts, 1)
	assert.Equal(t, product.ID, stats.LowStockAlerts[0].ID)
}
