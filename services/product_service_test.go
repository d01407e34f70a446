package services

import (
	"context"
	"game-store/models"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductService_CRUD(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.catalog.CreateProduct(ctx, models.CreateProductRequest{
		Name:  "Slay the Spire",
		Price: decimal.RequireFromString("24.99"),
		Stock: 4,
	})
	require.NoError(t, err)
	assert.True(t, p.IsActive)

	_, err = f.catalog.CreateProduct(ctx, models.CreateProductRequest{Name: "Bad", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, ErrInvalidPrice)

	desc := "Deckbuilding roguelike"
	updated, err := f.catalog.UpdateProduct(ctx, p.ID, models.UpdateProductRequest{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, desc, updated.Description)
	assert.Equal(t, 4, updated.Stock)

	list, err := f.catalog.GetAllProducts(ctx, "spire", 1, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, f.catalog.DeleteProduct(ctx, p.ID))
	_, err = f.catalog.GetProductByID(ctx, p.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.ErrorIs(t, f.catalog.DeleteProduct(ctx, p.ID), ErrProductNotFound)

	list, err = f.catalog.GetAllProducts(ctx, "", 1, 10)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestProductService_PriceScale(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.catalog.CreateProduct(ctx, models.CreateProductRequest{Name: "Fractional", Price: decimal.RequireFromString("9.999")})
	assert.ErrorIs(t, err, ErrInvalidPrice)

	p, err := f.catalog.CreateProduct(ctx, models.CreateProductRequest{Name: "Trailing zero", Price: decimal.RequireFromString("9.990")})
	require.NoError(t, err)

	price := decimal.RequireFromString("0.001")
	_, err = f.catalog.UpdateProduct(ctx, p.ID, models.UpdateProductRequest{Price: &price})
	assert.ErrorIs(t, err, ErrInvalidPrice)

	got, err := f.catalog.GetProductByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "9.99", got.Price.StringFixed(2))
}

func TestProductService_HugePageIsEmpty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedProduct(t, "Only", "1.00", 1)

	list, err := f.catalog.GetAllProducts(ctx, "", math.MaxInt, 100)
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = f.catalog.GetAllProducts(ctx, "", 1, 100)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
