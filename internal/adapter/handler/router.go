package handler

import (
	"context"
	"net/http"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth     *AuthHandler
	Products *ProductHandler
	Orders   *OrderHandler
	Reports  *ReportHandler
	Users    *UserHandler
	MW       *Middleware

	// HealthCheck pings the backing store; nil means always healthy.
	HealthCheck func(context.Context) error

	// UploadDir is served under /static/uploads/products/.
	UploadDir string
}

// NewRouter mounts the API surface. Paths match the existing system;
// catalog and order endpoints require only an authenticated session,
// reports and user management carry their own permission checks.
func NewRouter(h Handlers) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)
	mux.HandleFunc("GET /api/auth/me", h.MW.RequireUser(h.Auth.Me))

	mux.HandleFunc("POST /api/products/{$}", h.MW.RequireUser(h.Products.Create))
	mux.HandleFunc("GET /api/products/{$}", h.MW.RequireUser(h.Products.List))
	mux.HandleFunc("GET /api/products/{id}", h.MW.RequireUser(h.Products.Get))
	mux.HandleFunc("PUT /api/products/{id}", h.MW.RequireUser(h.Products.Update))
	mux.HandleFunc("DELETE /api/products/{id}", h.MW.RequireUser(h.Products.Delete))
	mux.HandleFunc("POST /api/products/upload-image/{id}", h.MW.RequireUser(h.Products.UploadImage))

	mux.HandleFunc("POST /api/orders/{$}", h.MW.RequireUser(h.Orders.Create))
	mux.HandleFunc("GET /api/orders/{$}", h.MW.RequireUser(h.Orders.List))
	mux.HandleFunc("GET /api/orders/{id}", h.MW.RequireUser(h.Orders.Get))
	mux.HandleFunc("PUT /api/orders/{id}/status", h.MW.RequireUser(h.Orders.UpdateStatus))
	mux.HandleFunc("DELETE /api/orders/{id}", h.MW.RequireUser(h.Orders.Delete))

	mux.HandleFunc("GET /api/reports/sales", h.MW.RequireUser(h.Reports.Sales))
	mux.HandleFunc("GET /api/reports/inventory", h.MW.RequireUser(h.Reports.Inventory))
	mux.HandleFunc("GET /api/reports/dashboard-stats", h.MW.RequireUser(h.Reports.DashboardStats))

	mux.HandleFunc("POST /api/users/{$}", h.MW.RequireUser(h.Users.Create))
	mux.HandleFunc("GET /api/users/{$}", h.MW.RequireUser(h.Users.List))
	mux.HandleFunc("PUT /api/users/{id}/role", h.MW.RequireUser(h.Users.UpdateRole))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if h.HealthCheck != nil {
			if err := h.HealthCheck(r.Context()); err != nil {
				writeDetail(w, http.StatusServiceUnavailable, "Service unavailable: "+err.Error())
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"status":   "healthy",
			"database": "connected",
		})
	})

	if h.UploadDir != "" {
		mux.Handle("GET /static/uploads/products/",
			http.StripPrefix("/static/uploads/products/", http.FileServer(http.Dir(h.UploadDir))))
	}

	return RequestLogger(mux)
}
