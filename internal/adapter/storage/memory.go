package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rl1809/inventory/internal/core/domain"
)

// Memory is a driver-free implementation of every repository port,
// used by tests and the in-memory dev mode. One mutex guards all three
// collections, which gives the order workflow the same all-or-nothing
// stock semantics the MySQL transaction provides. The Products, Orders
// and Users views adapt it to the individual ports.
type Memory struct {
	mu       sync.Mutex
	products map[string]domain.Product
	orders   map[string]domain.Order
	users    map[string]domain.User
}

func NewMemory() *Memory {
	return &Memory{
		products: make(map[string]domain.Product),
		orders:   make(map[string]domain.Order),
		users:    make(map[string]domain.User),
	}
}

func (m *Memory) Products() *MemoryProducts { return &MemoryProducts{m} }
func (m *Memory) Orders() *MemoryOrders     { return &MemoryOrders{m} }
func (m *Memory) Users() *MemoryUsers       { return &MemoryUsers{m} }

func cloneOrder(o domain.Order) domain.Order {
	lines := make([]domain.OrderLine, len(o.Lines))
	copy(lines, o.Lines)
	o.Lines = lines
	return o
}

func cloneUser(u domain.User) domain.User {
	perms := make([]string, len(u.Permissions))
	copy(perms, u.Permissions)
	u.Permissions = perms
	return u
}

// MemoryProducts implements port.ProductRepository.
type MemoryProducts struct{ m *Memory }

func (r *MemoryProducts) Create(ctx context.Context, product *domain.Product) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.products {
		if existing.SKU == product.SKU {
			return domain.ErrDuplicateSKU
		}
	}
	r.m.products[product.ID] = *product
	return nil
}

func (r *MemoryProducts) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *MemoryProducts) List(ctx context.Context, skip, limit int) ([]domain.Product, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	products := make([]domain.Product, 0, len(r.m.products))
	for _, p := range r.m.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool {
		if !products[i].CreatedAt.Equal(products[j].CreatedAt) {
			return products[i].CreatedAt.After(products[j].CreatedAt)
		}
		return products[i].ID < products[j].ID
	})
	return paginate(products, skip, limit), nil
}

func (r *MemoryProducts) ListLowStock(ctx context.Context, limit int) ([]domain.Product, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var low []domain.Product
	for _, p := range r.m.products {
		if p.LowOnStock() {
			low = append(low, p)
		}
	}
	sort.Slice(low, func(i, j int) bool {
		if low[i].StockQuantity != low[j].StockQuantity {
			return low[i].StockQuantity < low[j].StockQuantity
		}
		return low[i].ID < low[j].ID
	})
	return paginate(low, 0, limit), nil
}

func (r *MemoryProducts) Count(ctx context.Context) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return len(r.m.products), nil
}

func (r *MemoryProducts) Update(ctx context.Context, product *domain.Product) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.products[product.ID]; !ok {
		return domain.ErrProductNotFound
	}
	for id, existing := range r.m.products {
		if id != product.ID && existing.SKU == product.SKU {
			return domain.ErrDuplicateSKU
		}
	}
	r.m.products[product.ID] = *product
	return nil
}

func (r *MemoryProducts) UpdateImage(ctx context.Context, id, imageURL string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.products[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.ImageURL = imageURL
	p.UpdatedAt = time.Now().UTC()
	r.m.products[id] = p
	return nil
}

func (r *MemoryProducts) Delete(ctx context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.products[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(r.m.products, id)
	return nil
}

// MemoryOrders implements port.OrderRepository.
type MemoryOrders struct{ m *Memory }

// Create validates every aggregated decrement before applying any, so a
// failed line leaves all stock untouched.
func (r *MemoryOrders) Create(ctx context.Context, order *domain.Order) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	ids, quantities := order.QuantityByProduct()
	for _, productID := range ids {
		product, ok := r.m.products[productID]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
		}
		if quantity := quantities[productID]; product.StockQuantity < quantity {
			return &domain.InsufficientStockError{
				ProductID:   productID,
				ProductName: product.Name,
				Available:   product.StockQuantity,
				Requested:   quantity,
			}
		}
	}
	for _, productID := range ids {
		product := r.m.products[productID]
		product.StockQuantity -= quantities[productID]
		product.UpdatedAt = order.CreatedAt
		r.m.products[productID] = product
	}
	r.m.orders[order.ID] = cloneOrder(*order)
	return nil
}

func (r *MemoryOrders) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	o, ok := r.m.orders[id]
	if !ok {
		return nil, nil
	}
	o = cloneOrder(o)
	return &o, nil
}

func (r *MemoryOrders) List(ctx context.Context, status domain.OrderStatus, skip, limit int) ([]domain.Order, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var orders []domain.Order
	for _, o := range r.m.orders {
		if status != "" && o.Status != status {
			continue
		}
		orders = append(orders, cloneOrder(o))
	}
	sortOrdersNewestFirst(orders)
	return paginate(orders, skip, limit), nil
}

func (r *MemoryOrders) ListSince(ctx context.Context, since time.Time) ([]domain.Order, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var orders []domain.Order
	for _, o := range r.m.orders {
		if o.CreatedAt.Before(since) {
			continue
		}
		orders = append(orders, cloneOrder(o))
	}
	sortOrdersNewestFirst(orders)
	return orders, nil
}

func (r *MemoryOrders) Count(ctx context.Context, status domain.OrderStatus) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	count := 0
	for _, o := range r.m.orders {
		if status == "" || o.Status == status {
			count++
		}
	}
	return count, nil
}

func (r *MemoryOrders) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, updatedAt time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	o, ok := r.m.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.Status = status
	o.UpdatedAt = updatedAt
	r.m.orders[id] = o
	return nil
}

func (r *MemoryOrders) Delete(ctx context.Context, order *domain.Order, restock bool) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	stored, ok := r.m.orders[order.ID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if restock {
		ids, quantities := stored.QuantityByProduct()
		for _, productID := range ids {
			product, ok := r.m.products[productID]
			if !ok {
				// Product deleted since the order was placed.
				continue
			}
			product.StockQuantity += quantities[productID]
			product.UpdatedAt = time.Now().UTC()
			r.m.products[productID] = product
		}
	}
	delete(r.m.orders, order.ID)
	return nil
}

// MemoryUsers implements port.UserRepository.
type MemoryUsers struct{ m *Memory }

func (r *MemoryUsers) Create(ctx context.Context, user *domain.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.users {
		if existing.Username == user.Username {
			return domain.ErrDuplicateUsername
		}
	}
	r.m.users[user.ID] = cloneUser(*user)
	return nil
}

func (r *MemoryUsers) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Username == username {
			u = cloneUser(u)
			return &u, nil
		}
	}
	return nil, nil
}

func (r *MemoryUsers) List(ctx context.Context) ([]domain.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	users := make([]domain.User, 0, len(r.m.users))
	for _, u := range r.m.users {
		users = append(users, cloneUser(u))
	}
	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		return users[i].ID < users[j].ID
	})
	return users, nil
}

func (r *MemoryUsers) UpdateRole(ctx context.Context, id string, role domain.Role, permissions []string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Role = role
	u.Permissions = append([]string(nil), permissions...)
	r.m.users[id] = u
	return nil
}

// SetActive toggles a user's active flag. Used by tests; no HTTP
// surface mutates it.
func (m *Memory) SetActive(id string, active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		u.IsActive = active
		m.users[id] = u
	}
}

func sortOrdersNewestFirst(orders []domain.Order) {
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].ID < orders[j].ID
	})
}

func paginate[T any](items []T, skip, limit int) []T {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(items) {
		return nil
	}
	items = items[skip:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
