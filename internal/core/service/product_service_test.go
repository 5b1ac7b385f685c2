package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/inventory/internal/adapter/storage"
	"github.com/rl1809/inventory/internal/core/domain"
)

func ptr[T any](v T) *T { return &v }

func TestProductCreate(t *testing.T) {
	mem := storage.NewMemory()
	svc := NewProductService(mem.Products())
	ctx := context.Background()

	product, err := svc.Create(ctx, CreateProductRequest{
		Name:          "Mug",
		Price:         7.5,
		StockQuantity: 40,
		SKU:           "MUG-001",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultLowStockThreshold, product.LowStockThreshold)
	assert.NotEmpty(t, product.ID)

	custom, err := svc.Create(ctx, CreateProductRequest{
		Name:              "Rare Mug",
		Price:             70,
		StockQuantity:     3,
		SKU:               "MUG-002",
		LowStockThreshold: ptr(2),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, custom.LowStockThreshold)

	_, err = svc.Create(ctx, CreateProductRequest{Name: "Dup", SKU: "MUG-001"})
	assert.ErrorIs(t, err, domain.ErrDuplicateSKU)

	_, err = svc.Create(ctx, CreateProductRequest{Name: "Bad", SKU: "BAD-1", Price: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = svc.Create(ctx, CreateProductRequest{Name: "Bad", SKU: "BAD-2", StockQuantity: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestProductGet(t *testing.T) {
	mem := storage.NewMemory()
	svc := NewProductService(mem.Products())
	ctx := context.Background()

	product, err := svc.Create(ctx, CreateProductRequest{Name: "Mug", SKU: "MUG-001"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.ID, got.ID)

	_, err = svc.Get(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrInvalidReference)

	_, err = svc.Get(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestProductUpdate_Partial(t *testing.T) {
	mem := storage.NewMemory()
	svc := NewProductService(mem.Products())
	ctx := context.Background()

	product, err := svc.Create(ctx, CreateProductRequest{
		Name:          "Mug",
		Description:   "ceramic",
		Price:         7.5,
		StockQuantity: 40,
		SKU:           "MUG-001",
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, product.ID, ProductUpdate{
		Price:         ptr(9.0),
		StockQuantity: ptr(35),
	})
	require.NoError(t, err)
	assert.Equal(t, 9.0, updated.Price)
	assert.Equal(t, 35, updated.StockQuantity)
	assert.Equal(t, "Mug", updated.Name, "unset fields remain unchanged")
	assert.Equal(t, "ceramic", updated.Description)

	_, err = svc.Update(ctx, product.ID, ProductUpdate{Price: ptr(-1.0)})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = svc.Update(ctx, uuid.NewString(), ProductUpdate{Price: ptr(1.0)})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestProductDelete(t *testing.T) {
	mem := storage.NewMemory()
	svc := NewProductService(mem.Products())
	ctx := context.Background()

	product, err := svc.Create(ctx, CreateProductRequest{Name: "Mug", SKU: "MUG-001"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, product.ID))

	err = svc.Delete(ctx, product.ID)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestProductList_Pagination(t *testing.T) {
	mem := storage.NewMemory()
	svc := NewProductService(mem.Products())
	ctx := context.Background()

	for _, sku := range []string{"A-1", "A-2", "A-3"} {
		_, err := svc.Create(ctx, CreateProductRequest{Name: "P " + sku, SKU: sku})
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	page, err := svc.List(ctx, 1, 1)
	require.NoError(t, err)
	assert.Len(t, page, 1)

	past, err := svc.List(ctx, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, past)
}
