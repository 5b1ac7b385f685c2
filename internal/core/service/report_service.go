package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rl1809/inventory/internal/core/domain"
	"github.com/rl1809/inventory/internal/port"
)

const topProductLimit = 5

// ReportService is read-only aggregation over the order and product
// stores. It tolerates snapshot consistency; no invariants to preserve.
type ReportService struct {
	products port.ProductRepository
	orders   port.OrderRepository
}

func NewReportService(products port.ProductRepository, orders port.OrderRepository) *ReportService {
	return &ReportService{products: products, orders: orders}
}

// SalesSummary aggregates non-cancelled orders of the last N days.
func (s *ReportService) SalesSummary(ctx context.Context, days int) (*domain.SalesSummary, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().UTC().Add(-time.Duration(days) * 24 * time.Hour)

	orders, err := s.orders.ListSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	summary := &domain.SalesSummary{}
	productSales := make(map[string]float64)
	for _, order := range orders {
		if order.Status == domain.OrderStatusCancelled {
			continue
		}
		summary.TotalSales += order.TotalAmount
		summary.TotalOrders++
		for _, line := range order.Lines {
			productSales[line.ProductName] += line.Total
		}
	}

	top := make([]domain.ProductSales, 0, len(productSales))
	for name, sales := range productSales {
		top = append(top, domain.ProductSales{Name: name, Sales: sales})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Sales != top[j].Sales {
			return top[i].Sales > top[j].Sales
		}
		return top[i].Name < top[j].Name
	})
	if len(top) > topProductLimit {
		top = top[:topProductLimit]
	}
	summary.TopProducts = top
	summary.SalesByMonth = []domain.MonthlySales{
		{Month: "Current Month", Sales: summary.TotalSales},
	}
	return summary, nil
}

// InventorySummary walks the whole catalog.
func (s *ReportService) InventorySummary(ctx context.Context) (*domain.InventorySummary, error) {
	products, err := s.products.List(ctx, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	summary := &domain.InventorySummary{TotalProducts: len(products)}
	for _, p := range products {
		summary.TotalInventoryValue += p.Price * float64(p.StockQuantity)
		switch {
		case p.StockQuantity == 0:
			summary.OutOfStockProducts = append(summary.OutOfStockProducts, domain.OutOfStockProduct{
				Name: p.Name,
				SKU:  p.SKU,
			})
		case p.LowOnStock():
			summary.LowStockProducts = append(summary.LowStockProducts, domain.StockAlert{
				Name:         p.Name,
				SKU:          p.SKU,
				CurrentStock: p.StockQuantity,
				Threshold:    p.LowStockThreshold,
			})
		}
	}
	return summary, nil
}

// DashboardStats gathers the headline numbers plus the five most recent
// orders and five lowest-stock products.
func (s *ReportService) DashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	totalProducts, err := s.products.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	totalOrders, err := s.orders.Count(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}
	pendingOrders, err := s.orders.Count(ctx, domain.OrderStatusPending)
	if err != nil {
		return nil, fmt.Errorf("count pending orders: %w", err)
	}
	recent, err := s.orders.List(ctx, "", 0, 5)
	if err != nil {
		return nil, fmt.Errorf("list recent orders: %w", err)
	}
	lowStock, err := s.products.ListLowStock(ctx, 5)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}

	return &domain.DashboardStats{
		TotalProducts:  totalProducts,
		TotalOrders:    totalOrders,
		PendingOrders:  pendingOrders,
		RecentOrders:   recent,
		LowStockAlerts: lowStock,
	}, nil
}
