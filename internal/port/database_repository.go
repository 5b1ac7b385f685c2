package port

import (
	"context"
	"time"

	"github.com/rl1809/inventory/internal/core/domain"
)

type ProductRepository interface {
	// Create persists a new product. Returns domain.ErrDuplicateSKU when
	// the SKU is taken.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID returns (nil, nil) when the product does not exist.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// List returns products ordered by creation time. limit <= 0 means
	// no limit.
	List(ctx context.Context, skip, limit int) ([]domain.Product, error)

	// ListLowStock returns up to limit products at or below their
	// low-stock threshold, lowest stock first.
	ListLowStock(ctx context.Context, limit int) ([]domain.Product, error)

	Count(ctx context.Context) (int, error)

	// Update replaces every mutable field. Returns domain.ErrProductNotFound
	// or domain.ErrDuplicateSKU.
	Update(ctx context.Context, product *domain.Product) error

	UpdateImage(ctx context.Context, id, imageURL string) error

	Delete(ctx context.Context, id string) error
}

type OrderRepository interface {
	// Create persists the order and decrements stock for every line in a
	// single atomic operation: each decrement is conditional on
	// sufficient stock, and a failed line rolls back the whole order.
	// Returns *domain.InsufficientStockError or domain.ErrProductNotFound.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID returns (nil, nil) when the order does not exist.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// List returns orders newest first, optionally filtered by status.
	// limit <= 0 means no limit.
	List(ctx context.Context, status domain.OrderStatus, skip, limit int) ([]domain.Order, error)

	// ListSince returns orders created at or after the cutoff.
	ListSince(ctx context.Context, since time.Time) ([]domain.Order, error)

	// Count counts orders, optionally filtered by status ("" = all).
	Count(ctx context.Context, status domain.OrderStatus) (int, error)

	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, updatedAt time.Time) error

	// Delete removes the order. When restock is true the line quantities
	// are returned to product stock in the same atomic operation.
	Delete(ctx context.Context, order *domain.Order, restock bool) error
}

type UserRepository interface {
	// Create persists a new user. Returns domain.ErrDuplicateUsername
	// when the username is taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByUsername returns (nil, nil) when the user does not exist.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	List(ctx context.Context) ([]domain.User, error)

	// UpdateRole sets the role and replaces the explicit permission set.
	UpdateRole(ctx context.Context, id string, role domain.Role, permissions []string) error
}
