package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/inventory/internal/core/domain"
	"github.com/rl1809/inventory/internal/port"
)

// ProductUpdate carries a partial update; nil fields are left unchanged.
type ProductUpdate struct {
	Name              *string
	Description       *string
	Price             *float64
	StockQuantity     *int
	Category          *string
	SKU               *string
	ImageURL          *string
	LowStockThreshold *int
}

type ProductService struct {
	products port.ProductRepository
}

func NewProductService(products port.ProductRepository) *ProductService {
	return &ProductService{products: products}
}

type CreateProductRequest struct {
	Name              string
	Description       string
	Price             float64
	StockQuantity     int
	Category          string
	SKU               string
	ImageURL          string
	LowStockThreshold *int
}

func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*domain.Product, error) {
	if req.Price < 0 {
		return nil, fmt.Errorf("%w: price must be non-negative", domain.ErrInvalidQuantity)
	}
	if req.StockQuantity < 0 {
		return nil, fmt.Errorf("%w: stock must be non-negative", domain.ErrInvalidQuantity)
	}

	threshold := domain.DefaultLowStockThreshold
	if req.LowStockThreshold != nil {
		threshold = *req.LowStockThreshold
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:                uuid.NewString(),
		Name:              req.Name,
		Description:       req.Description,
		Price:             req.Price,
		StockQuantity:     req.StockQuantity,
		Category:          req.Category,
		SKU:               req.SKU,
		ImageURL:          req.ImageURL,
		LowStockThreshold: threshold,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidReference, id)
	}
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	return product, nil
}

func (s *ProductService) List(ctx context.Context, skip, limit int) ([]domain.Product, error) {
	return s.products.List(ctx, skip, limit)
}

// Update applies the non-nil fields of upd and returns the updated
// product.
func (s *ProductService) Update(ctx context.Context, id string, upd ProductUpdate) (*domain.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		product.Name = *upd.Name
	}
	if upd.Description != nil {
		product.Description = *upd.Description
	}
	if upd.Price != nil {
		if *upd.Price < 0 {
			return nil, fmt.Errorf("%w: price must be non-negative", domain.ErrInvalidQuantity)
		}
		product.Price = *upd.Price
	}
	if upd.StockQuantity != nil {
		if *upd.StockQuantity < 0 {
			return nil, fmt.Errorf("%w: stock must be non-negative", domain.ErrInvalidQuantity)
		}
		product.StockQuantity = *upd.StockQuantity
	}
	if upd.Category != nil {
		product.Category = *upd.Category
	}
	if upd.SKU != nil {
		product.SKU = *upd.SKU
	}
	if upd.ImageURL != nil {
		product.ImageURL = *upd.ImageURL
	}
	if upd.LowStockThreshold != nil {
		product.LowStockThreshold = *upd.LowStockThreshold
	}
	product.UpdatedAt = time.Now().UTC()

	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// SetImage stores the image reference for a product.
func (s *ProductService) SetImage(ctx context.Context, id, imageURL string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalidReference, id)
	}
	return s.products.UpdateImage(ctx, id, imageURL)
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalidReference, id)
	}
	return s.products.Delete(ctx, id)
}
