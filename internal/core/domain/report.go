package domain

// Typed aggregation records for the reporting endpoints.

type ProductSales struct {
	Name  string
	Sales float64
}

type MonthlySales struct {
	Month string
	Sales float64
}

type SalesSummary struct {
	TotalSales   float64
	TotalOrders  int
	TopProducts  []ProductSales
	SalesByMonth []MonthlySales
}

type StockAlert struct {
	Name         string
	SKU          string
	CurrentStock int
	Threshold    int
}

type OutOfStockProduct struct {
	Name string
	SKU  string
}

type InventorySummary struct {
	TotalProducts       int
	LowStockProducts    []StockAlert
	OutOfStockProducts  []OutOfStockProduct
	TotalInventoryValue float64
}

type DashboardStats struct {
	TotalProducts  int
	TotalOrders    int
	PendingOrders  int
	RecentOrders   []Order
	LowStockAlerts []Product
}
