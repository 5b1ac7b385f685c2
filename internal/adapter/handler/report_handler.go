package handler

import (
	"net/http"

	"github.com/rl1809/inventory/internal/core/domain"
	"github.com/rl1809/inventory/internal/core/service"
)

type ReportHandler struct {
	reports *service.ReportService
}

func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

type productSalesResponse struct {
	Name  string  `json:"name"`
	Sales float64 `json:"sales"`
}

type monthlySalesResponse struct {
	Month string  `json:"month"`
	Sales float64 `json:"sales"`
}

type salesSummaryResponse struct {
	TotalSales   float64                `json:"total_sales"`
	TotalOrders  int                    `json:"total_orders"`
	TopProducts  []productSalesResponse `json:"top_products"`
	SalesByMonth []monthlySalesResponse `json:"sales_by_month"`
}

type stockAlertResponse struct {
	Name         string `json:"name"`
	SKU          string `json:"sku"`
	CurrentStock int    `json:"current_stock"`
	Threshold    int    `json:"threshold"`
}

type outOfStockResponse struct {
	Name string `json:"name"`
	SKU  string `json:"sku"`
}

type inventorySummaryResponse struct {
	TotalProducts       int                  `json:"total_products"`
	LowStockProducts    []stockAlertResponse `json:"low_stock_products"`
	OutOfStockProducts  []outOfStockResponse `json:"out_of_stock_products"`
	TotalInventoryValue float64              `json:"total_inventory_value"`
}

type dashboardStatsResponse struct {
	TotalProducts  int               `json:"total_products"`
	TotalOrders    int               `json:"total_orders"`
	PendingOrders  int               `json:"pending_orders"`
	RecentOrders   []orderResponse   `json:"recent_orders"`
	LowStockAlerts []productResponse `json:"low_stock_alerts"`
}

// requireReports gates the reporting endpoints on the view_reports
// permission.
func requireReports(w http.ResponseWriter, r *http.Request) bool {
	if !service.HasPermission(UserFrom(r.Context()), domain.PermViewReports) {
		writeError(w, domain.ErrPermissionDenied)
		return false
	}
	return true
}

func (h *ReportHandler) Sales(w http.ResponseWriter, r *http.Request) {
	if !requireReports(w, r) {
		return
	}

	summary, err := h.reports.SalesSummary(r.Context(), queryInt(r, "days", 30))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := salesSummaryResponse{
		TotalSales:   summary.TotalSales,
		TotalOrders:  summary.TotalOrders,
		TopProducts:  make([]productSalesResponse, 0, len(summary.TopProducts)),
		SalesByMonth: make([]monthlySalesResponse, 0, len(summary.SalesByMonth)),
	}
	for _, p := range summary.TopProducts {
		resp.TopProducts = append(resp.TopProducts, productSalesResponse{Name: p.Name, Sales: p.Sales})
	}
	for _, m := range summary.SalesByMonth {
		resp.SalesByMonth = append(resp.SalesByMonth, monthlySalesResponse{Month: m.Month, Sales: m.Sales})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ReportHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	if !requireReports(w, r) {
		return
	}

	summary, err := h.reports.InventorySummary(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	resp := inventorySummaryResponse{
		TotalProducts:       summary.TotalProducts,
		LowStockProducts:    make([]stockAlertResponse, 0, len(summary.LowStockProducts)),
		OutOfStockProducts:  make([]outOfStockResponse, 0, len(summary.OutOfStockProducts)),
		TotalInventoryValue: summary.TotalInventoryValue,
	}
	for _, p := range summary.LowStockProducts {
		resp.LowStockProducts = append(resp.LowStockProducts, stockAlertResponse{
			Name:         p.Name,
			SKU:          p.SKU,
			CurrentStock: p.CurrentStock,
			Threshold:    p.Threshold,
		})
	}
	for _, p := range summary.OutOfStockProducts {
		resp.OutOfStockProducts = append(resp.OutOfStockProducts, outOfStockResponse{Name: p.Name, SKU: p.SKU})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ReportHandler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	if !requireReports(w, r) {
		return
	}

	stats, err := h.reports.DashboardStats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	resp := dashboardStatsResponse{
		TotalProducts:  stats.TotalProducts,
		TotalOrders:    stats.TotalOrders,
		PendingOrders:  stats.PendingOrders,
		RecentOrders:   make([]orderResponse, 0, len(stats.RecentOrders)),
		LowStockAlerts: make([]productResponse, 0, len(stats.LowStockAlerts)),
	}
	for i := range stats.RecentOrders {
		resp.RecentOrders = append(resp.RecentOrders, toOrderResponse(&stats.RecentOrders[i]))
	}
	for i := range stats.LowStockAlerts {
		resp.LowStockAlerts = append(resp.LowStockAlerts, toProductResponse(&stats.LowStockAlerts[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}
