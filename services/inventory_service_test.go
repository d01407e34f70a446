package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventoryLedger_Decrement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Tunic", "29.99", 5)

	remaining, err := f.ledger.Decrement(ctx, p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, remaining)

	_, err = f.ledger.Decrement(ctx, p.ID, 3)
	var se *InsufficientStockError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 2, se.Available)
	assert.Equal(t, 2, f.stockOf(t, p.ID))

	remaining, err = f.ledger.Decrement(ctx, p.ID, 2)
	require.NoError(t, err)
	assert.Zero(t, remaining)

	_, err = f.ledger.Decrement(ctx, 404, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = f.ledger.Decrement(ctx, p.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestInventoryLedger_Restock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Tunic", "29.99", 0)

	stock, err := f.ledger.Restock(ctx, p.ID, 12)
	require.NoError(t, err)
	assert.Equal(t, 12, stock)
	assert.Equal(t, 12, f.stockOf(t, p.ID))

	_, err = f.ledger.Restock(ctx, p.ID, -1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = f.ledger.Restock(ctx, 404, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = f.ledger.CurrentStock(ctx, 404)
	assert.ErrorIs(t, err, ErrProductNotFound)
}
