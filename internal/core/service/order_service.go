package service

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/inventory/internal/core/domain"
	"github.com/rl1809/inventory/internal/port"
)

const notifyTimeout = 10 * time.Second

type OrderLineRequest struct {
	ProductID string
	Quantity  int
}

type PlaceOrderRequest struct {
	// RequestID is an optional client-supplied idempotency key. Replays
	// are rejected when a cache is configured.
	RequestID     string
	CustomerName  string
	CustomerEmail string
	Lines         []OrderLineRequest
}

type OrderService struct {
	products   port.ProductRepository
	orders     port.OrderRepository
	cache      port.CacheRepository // optional
	notifier   port.Notifier       // optional
	adminEmail string
}

func NewOrderService(products port.ProductRepository, orders port.OrderRepository, cache port.CacheRepository, notifier port.Notifier, adminEmail string) *OrderService {
	return &OrderService{
		products:   products,
		orders:     orders,
		cache:      cache,
		notifier:   notifier,
		adminEmail: adminEmail,
	}
}

// PlaceOrder validates every requested line against current stock,
// snapshots names and prices, and persists the order together with the
// stock decrements as one atomic operation. Quantities against the same
// product accumulate within a single request. Notifications are sent
// after the order is committed and never affect the result.
func (s *OrderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*domain.Order, error) {
	if len(req.Lines) == 0 {
		return nil, domain.ErrEmptyOrder
	}

	if req.RequestID != "" && s.cache != nil {
		ok, err := s.cache.SetIdempotency(ctx, "order:"+req.RequestID)
		if err != nil {
			return nil, fmt.Errorf("idempotency check failed: %w", err)
		}
		if !ok {
			return nil, domain.ErrDuplicateRequest
		}
	}

	resolved := make(map[string]*domain.Product, len(req.Lines))
	requested := make(map[string]int, len(req.Lines))
	lines := make([]domain.OrderLine, 0, len(req.Lines))
	var total float64

	for _, line := range req.Lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: product %s", domain.ErrInvalidQuantity, line.ProductID)
		}
		if _, err := uuid.Parse(line.ProductID); err != nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidReference, line.ProductID)
		}

		product, ok := resolved[line.ProductID]
		if !ok {
			var err error
			product, err = s.products.GetByID(ctx, line.ProductID)
			if err != nil {
				return nil, fmt.Errorf("resolve product %s: %w", line.ProductID, err)
			}
			if product == nil {
				return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, line.ProductID)
			}
			resolved[line.ProductID] = product
		}

		// Earlier lines against the same product draw from the same
		// stock pool within this request.
		remaining := product.StockQuantity - requested[line.ProductID]
		if line.Quantity > remaining {
			return nil, &domain.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Available:   remaining,
				Requested:   line.Quantity,
			}
		}
		requested[line.ProductID] += line.Quantity

		lineTotal := product.Price * float64(line.Quantity)
		total += lineTotal
		lines = append(lines, domain.OrderLine{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   product.Price,
			Total:       lineTotal,
		})
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:            uuid.NewString(),
		OrderNumber:   newOrderNumber(),
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Lines:         lines,
		TotalAmount:   total,
		Status:        domain.OrderStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// The repository re-checks stock with conditional decrements; the
	// pre-validation above can lose a race to a concurrent order.
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	go s.notifyOrderPlaced(order)

	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidReference, id)
	}
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, status domain.OrderStatus, skip, limit int) ([]domain.Order, error) {
	if status != "" && !domain.ValidOrderStatus(status) {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidStatus, status)
	}
	return s.orders.List(ctx, status, skip, limit)
}

// UpdateStatus moves the order to any member of the status set; no
// transition graph is enforced.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidReference, id)
	}
	if !domain.ValidOrderStatus(status) {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidStatus, status)
	}
	if err := s.orders.UpdateStatus(ctx, id, status, time.Now().UTC()); err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, id)
}

// DeleteOrder removes the order. Pending and confirmed orders return
// their line quantities to stock; any other status deletes without
// restocking.
func (s *OrderService) DeleteOrder(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalidReference, id)
	}
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return domain.ErrOrderNotFound
	}
	return s.orders.Delete(ctx, order, order.Restockable())
}

// notifyOrderPlaced runs after the order is committed. Every failure is
// logged and swallowed: a committed order never fails over messaging.
func (s *OrderService) notifyOrderPlaced(order *domain.Order) {
	if s.notifier == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	if err := s.notifier.SendOrderConfirmation(ctx, order.OrderNumber, order.CustomerEmail, order.TotalAmount); err != nil {
		slog.Error("failed to send order confirmation", "order", order.OrderNumber, "error", err)
	}

	ids, _ := order.QuantityByProduct()
	for _, id := range ids {
		product, err := s.products.GetByID(ctx, id)
		if err != nil {
			slog.Error("failed to check stock for alert", "product", id, "error", err)
			continue
		}
		if product == nil || !product.LowOnStock() {
			continue
		}
		if s.cache != nil {
			ok, err := s.cache.SetAlertGuard(ctx, product.ID)
			if err != nil {
				slog.Warn("low-stock alert guard failed", "product", product.ID, "error", err)
			} else if !ok {
				continue
			}
		}
		if err := s.notifier.SendLowStockAlert(ctx, product.Name, product.StockQuantity, s.adminEmail); err != nil {
			slog.Error("failed to send low-stock alert", "product", product.Name, "error", err)
		}
	}
}

// newOrderNumber generates a human-readable order number of the form
// ORD- plus 8 uppercase hex characters.
func newOrderNumber() string {
	u := uuid.New()
	return "ORD-" + strings.ToUpper(hex.EncodeToString(u[:4]))
}
