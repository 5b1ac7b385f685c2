package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/inventory/internal/adapter/handler"
	"github.com/rl1809/inventory/internal/adapter/notify"
	"github.com/rl1809/inventory/internal/adapter/storage"
	"github.com/rl1809/inventory/internal/config"
	"github.com/rl1809/inventory/internal/core/service"
	"github.com/rl1809/inventory/internal/port"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		products    port.ProductRepository
		orders      port.OrderRepository
		users       port.UserRepository
		db          *sql.DB
		healthCheck func(context.Context) error
	)

	if cfg.MemoryStore {
		slog.Warn("running with in-memory storage, data will not survive restarts")
		mem := storage.NewMemory()
		products = mem.Products()
		orders = mem.Orders()
		users = mem.Users()
		healthCheck = func(context.Context) error { return nil }
	} else {
		var err error
		db, err = sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			slog.Error("failed to open mysql", "error", err)
			os.Exit(1)
		}
		db.SetMaxOpenConns(50)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := db.PingContext(ctx); err != nil {
			slog.Error("failed to ping mysql", "error", err)
			os.Exit(1)
		}
		if err := storage.InitSchema(ctx, db); err != nil {
			slog.Error("failed to initialize schema", "error", err)
			os.Exit(1)
		}
		slog.Info("connected to mysql")

		products = storage.NewMySQLProductRepository(db)
		orders = storage.NewMySQLOrderRepository(db)
		users = storage.NewMySQLUserRepository(db)
		healthCheck = db.PingContext
	}

	var cache port.CacheRepository
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Error("failed to connect redis", "error", err)
			os.Exit(1)
		}
		cache = storage.NewRedisAdapter(rdb)
		slog.Info("connected to redis")
	}

	notifier, closeNotifier := buildNotifier(cfg)

	digester := service.SHA256Digester{}
	authService := service.NewAuthService(users, digester, cfg.JWTSecret, cfg.TokenTTL)
	userService := service.NewUserService(users, digester)
	productService := service.NewProductService(products)
	orderService := service.NewOrderService(products, orders, cache, notifier, cfg.AdminEmail)
	reportService := service.NewReportService(products, orders)

	if err := userService.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		slog.Error("failed to seed admin user", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		slog.Error("failed to create upload directory", "dir", cfg.UploadDir, "error", err)
		os.Exit(1)
	}

	mw := handler.NewMiddleware(authService)
	router := handler.NewRouter(handler.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		Products:    handler.NewProductHandler(productService, cfg.UploadDir),
		Orders:      handler.NewOrderHandler(orderService),
		Reports:     handler.NewReportHandler(reportService),
		Users:       handler.NewUserHandler(userService),
		MW:          mw,
		HealthCheck: healthCheck,
		UploadDir:   cfg.UploadDir,
	})

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	slog.Info("HTTP server stopped")

	closeNotifier()
	if rdb != nil {
		rdb.Close()
	}
	if db != nil {
		db.Close()
	}
	slog.Info("connections closed")
}

// buildNotifier prefers the message broker, then SMTP, then plain logging.
// The returned func releases any broker resources on shutdown.
func buildNotifier(cfg *config.Config) (port.Notifier, func()) {
	if cfg.AMQPURL != "" {
		conn, ch, err := notify.SetupAMQP(cfg.AMQPURL)
		if err != nil {
			slog.Error("failed to connect to message broker", "error", err)
			os.Exit(1)
		}
		slog.Info("publishing notifications to message broker")
		return notify.NewAMQPNotifier(ch), func() {
			ch.Close()
			conn.Close()
		}
	}
	if cfg.SMTPHost != "" {
		n, err := notify.NewEmailNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
		if err != nil {
			slog.Error("failed to configure SMTP client", "error", err)
			os.Exit(1)
		}
		slog.Info("sending notifications over SMTP", "host", cfg.SMTPHost)
		return n, func() {}
	}
	slog.Info("no notification transport configured, logging notifications")
	return notify.NewLogNotifier(), func() {}
}
