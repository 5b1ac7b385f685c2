package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rl1809/inventory/internal/core/domain"
)

type MySQLOrderRepository struct {
	db *sql.DB
}

func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{db: db}
}

// Create inserts the order with its lines and decrements stock for
// every product inside one transaction. Each decrement is conditional
// on sufficient stock; a failed condition rolls everything back, so a
// partially invalid order never touches inventory.
func (r *MySQLOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, order_number, customer_name, customer_email, total_amount, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.OrderNumber, order.CustomerName, order.CustomerEmail,
		order.TotalAmount, order.Status, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i, line := range order.Lines {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_lines (order_id, line_no, product_id, product_name, quantity, unit_price, total)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			order.ID, i, line.ProductID, line.ProductName, line.Quantity, line.UnitPrice, line.Total,
		)
		if err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}
	}

	ids, quantities := order.QuantityByProduct()
	for _, productID := range ids {
		quantity := quantities[productID]
		result, err := tx.ExecContext(ctx, `
			UPDATE products
			SET stock_quantity = stock_quantity - ?, updated_at = ?
			WHERE id = ? AND stock_quantity >= ?`,
			quantity, order.CreatedAt, productID, quantity,
		)
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return r.insufficientStock(ctx, tx, productID, quantity)
		}
	}

	return tx.Commit()
}

// insufficientStock turns a failed conditional decrement into a typed
// error carrying the current figures.
func (r *MySQLOrderRepository) insufficientStock(ctx context.Context, tx *sql.Tx, productID string, requested int) error {
	var name string
	var available int
	err := tx.QueryRowContext(ctx,
		`SELECT name, stock_quantity FROM products WHERE id = ?`, productID,
	).Scan(&name, &available)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
	}
	if err != nil {
		return fmt.Errorf("query product: %w", err)
	}
	return &domain.InsufficientStockError{
		ProductID:   productID,
		ProductName: name,
		Available:   available,
		Requested:   requested,
	}
}

func (r *MySQLOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, order_number, customer_name, customer_email, total_amount, status, created_at, updated_at
		FROM orders WHERE id = ?`, id)

	var o domain.Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.CustomerName, &o.CustomerEmail,
		&o.TotalAmount, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}
	if err := r.loadLines(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *MySQLOrderRepository) loadLines(ctx context.Context, order *domain.Order) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, product_name, quantity, unit_price, total
		FROM order_lines WHERE order_id = ? ORDER BY line_no`, order.ID)
	if err != nil {
		return fmt.Errorf("query order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(&line.ProductID, &line.ProductName, &line.Quantity, &line.UnitPrice, &line.Total); err != nil {
			return fmt.Errorf("scan order line: %w", err)
		}
		order.Lines = append(order.Lines, line)
	}
	return rows.Err()
}

func (r *MySQLOrderRepository) List(ctx context.Context, status domain.OrderStatus, skip, limit int) ([]domain.Order, error) {
	query := `SELECT id, order_number, customer_name, customer_email, total_amount, status, created_at, updated_at FROM orders`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, id`
	if limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, skip)
	}
	return r.queryOrders(ctx, query, args...)
}

func (r *MySQLOrderRepository) ListSince(ctx context.Context, since time.Time) ([]domain.Order, error) {
	return r.queryOrders(ctx, `
		SELECT id, order_number, customer_name, customer_email, total_amount, status, created_at, updated_at
		FROM orders WHERE created_at >= ? ORDER BY created_at DESC, id`, since)
}

func (r *MySQLOrderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.OrderNumber, &o.CustomerName, &o.CustomerEmail,
			&o.TotalAmount, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range orders {
		if err := r.loadLines(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *MySQLOrderRepository) Count(ctx context.Context, status domain.OrderStatus) (int, error) {
	query := `SELECT COUNT(*) FROM orders`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return count, nil
}

func (r *MySQLOrderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, updatedAt time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`, status, updatedAt, id)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		existing, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrOrderNotFound
		}
	}
	return nil
}

// Delete removes the order and its lines; with restock it also returns
// the line quantities to stock, all inside one transaction.
func (r *MySQLOrderRepository) Delete(ctx context.Context, order *domain.Order, restock bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if restock {
		ids, quantities := order.QuantityByProduct()
		for _, productID := range ids {
			// Products deleted since the order was placed are skipped.
			_, err := tx.ExecContext(ctx, `
				UPDATE products
				SET stock_quantity = stock_quantity + ?, updated_at = NOW(6)
				WHERE id = ?`,
				quantities[productID], productID,
			)
			if err != nil {
				return fmt.Errorf("restore stock: %w", err)
			}
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_lines WHERE order_id = ?`, order.ID); err != nil {
		return fmt.Errorf("delete order lines: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, order.ID)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrOrderNotFound
	}

	return tx.Commit()
}
