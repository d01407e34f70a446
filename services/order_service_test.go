package services

import (
	"context"
	"game-store/models"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appendOrder(t *testing.T, f *fixture, userID string, qty int) *models.Order {
	t.Helper()
	o, err := f.journal.Append(context.Background(), &models.Order{
		UserID:      userID,
		Status:      models.OrderStatusCompleted,
		TotalAmount: decimal.NewFromInt(int64(qty)),
		Items: []models.OrderItem{
			{ProductID: 1, ProductName: "Gift Card", Quantity: qty, UnitPrice: decimal.NewFromInt(1)},
		},
	})
	require.NoError(t, err)
	return o
}

func TestOrderJournal_AppendAssignsIdentity(t *testing.T) {
	f := newFixture(t)

	o := appendOrder(t, f, "u1", 2)
	assert.NotZero(t, o.ID)
	assert.False(t, o.CreatedAt.IsZero())
	assert.NotZero(t, o.Items[0].ID)
	assert.Equal(t, o.ID, o.Items[0].OrderID)

	_, err := f.journal.Append(context.Background(), &models.Order{UserID: "u1"})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestOrderJournal_ListForUserNewestFirstAndRestartable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ids []int64
	for i := 1; i <= 3; i++ {
		ids = append(ids, appendOrder(t, f, "u1", i).ID)
	}
	appendOrder(t, f, "someone-else", 1)

	collect := func() []int64 {
		var got []int64
		for o, err := range f.journal.ListForUser(ctx, "u1") {
			require.NoError(t, err)
			got = append(got, o.ID)
		}
		return got
	}

	want := []int64{ids[2], ids[1], ids[0]}
	assert.Equal(t, want, collect())
	assert.Equal(t, want, collect())

	seq := f.journal.ListForUser(ctx, "u1")
	for o, err := range seq {
		require.NoError(t, err)
		assert.Equal(t, ids[2], o.ID)
		break
	}
	n := 0
	for range seq {
		n++
	}
	assert.Equal(t, 3, n)
}

func TestOrderJournal_Recent(t *testing.T) {
	f := newFixture(t)
	for i := 1; i <= 5; i++ {
		appendOrder(t, f, "u1", i)
	}

	orders, err := f.journal.Recent(context.Background(), "u1", 2)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, 5, orders[0].Items[0].Quantity)
	assert.Equal(t, 4, orders[1].Items[0].Quantity)

	orders, err = f.journal.Recent(context.Background(), "nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrderJournal_GetIsScopedToOwner(t *testing.T) {
	f := newFixture(t)
	o := appendOrder(t, f, "u1", 1)

	got, err := f.journal.Get(context.Background(), "u1", o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	_, err = f.journal.Get(context.Background(), "u2", o.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	_, err = f.journal.Get(context.Background(), "u1", 999)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
