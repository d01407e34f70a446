package services

import (
	"context"
	"errors"
	"game-store/models"
	"game-store/repositories"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckStock(t *testing.T) {
	p := &models.Product{ID: 7, Name: "Rimworld", Stock: 3}

	assert.NoError(t, CheckStock(p, 7, 3))

	err := CheckStock(p, 7, 4)
	var se *InsufficientStockError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 3, se.Available)
	assert.Contains(t, err.Error(), "Rimworld")

	assert.ErrorIs(t, CheckStock(nil, 9, 1), ErrProductNotFound)
}

func TestStockValidator(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Noita", "19.99", 4)

	ok, err := f.validator.IsAvailable(ctx, p.ID, 4)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.validator.IsAvailable(ctx, p.ID, 5)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.validator.IsAvailable(ctx, 404, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := f.validator.AvailableStock(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = f.validator.AvailableStock(ctx, 404)
	require.NoError(t, err)
	assert.Zero(t, n)
}

type brokenProducts struct {
	repositories.ProductRepository
}

func (brokenProducts) GetByID(context.Context, int64) (*models.Product, error) {
	return nil, errors.New("connection refused")
}

func TestStockValidator_StorageFailure(t *testing.T) {
	v := NewStockValidator(brokenProducts{})

	_, err := v.AvailableStock(context.Background(), 1)
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = v.IsAvailable(context.Background(), 1, 1)
	assert.ErrorIs(t, err, ErrUnavailable)
}
