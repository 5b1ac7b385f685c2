package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/inventory/internal/core/domain"
)

type MySQLProductRepository struct {
	db *sql.DB
}

func NewMySQLProductRepository(db *sql.DB) *MySQLProductRepository {
	return &MySQLProductRepository{db: db}
}

const productColumns = `id, name, description, price, stock_quantity, category, sku, image_url, low_stock_threshold, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (*domain.Product, error) {
	var p domain.Product
	var description, category, imageURL sql.NullString
	err := row.Scan(&p.ID, &p.Name, &description, &p.Price, &p.StockQuantity,
		&category, &p.SKU, &imageURL, &p.LowStockThreshold, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Description = description.String
	p.Category = category.String
	p.ImageURL = imageURL.String
	return &p, nil
}

func (r *MySQLProductRepository) Create(ctx context.Context, product *domain.Product) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID, product.Name, product.Description, product.Price,
		product.StockQuantity, product.Category, product.SKU, product.ImageURL,
		product.LowStockThreshold, product.CreatedAt, product.UpdatedAt,
	)
	if isDuplicateEntry(err) {
		return domain.ErrDuplicateSKU
	}
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *MySQLProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	product, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}
	return product, nil
}

func (r *MySQLProductRepository) List(ctx context.Context, skip, limit int) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, skip)
	}
	return r.queryProducts(ctx, query, args...)
}

func (r *MySQLProductRepository) ListLowStock(ctx context.Context, limit int) ([]domain.Product, error) {
	return r.queryProducts(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE stock_quantity <= low_stock_threshold
		ORDER BY stock_quantity ASC LIMIT ?`, limit)
}

func (r *MySQLProductRepository) queryProducts(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (r *MySQLProductRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}

func (r *MySQLProductRepository) Update(ctx context.Context, product *domain.Product) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET name = ?, description = ?, price = ?, stock_quantity = ?, category = ?,
		    sku = ?, image_url = ?, low_stock_threshold = ?, updated_at = ?
		WHERE id = ?`,
		product.Name, product.Description, product.Price, product.StockQuantity,
		product.Category, product.SKU, product.ImageURL, product.LowStockThreshold,
		product.UpdatedAt, product.ID,
	)
	if isDuplicateEntry(err) {
		return domain.ErrDuplicateSKU
	}
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		// Unchanged rows also report zero; confirm existence.
		existing, err := r.GetByID(ctx, product.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrProductNotFound
		}
	}
	return nil
}

func (r *MySQLProductRepository) UpdateImage(ctx context.Context, id, imageURL string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE products SET image_url = ?, updated_at = NOW(6) WHERE id = ?`, imageURL, id)
	if err != nil {
		return fmt.Errorf("update product image: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		existing, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrProductNotFound
		}
	}
	return nil
}

func (r *MySQLProductRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}
