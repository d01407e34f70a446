package repositories

import (
	"context"
	"errors"
	"game-store/models"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProduct(t *testing.T, repo ProductRepository, name string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Price: decimal.RequireFromString("9.99"), Stock: stock}
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func TestMemoryProducts_CRUD(t *testing.T) {
	ctx := context.Background()
	products := NewMemoryProducts(NewMemoryStore())

	p := seedProduct(t, products, "Aspirin Quest", 5)
	require.NotZero(t, p.ID)

	got, err := products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Aspirin Quest", got.Name)

	got.Name = "Aspirin Quest II"
	got.Stock = 999
	require.NoError(t, products.Update(ctx, got))
	got, err = products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Aspirin Quest II", got.Name)
	assert.Equal(t, 5, got.Stock, "Update must not touch stock")

	require.NoError(t, products.Deactivate(ctx, p.ID))
	_, err = products.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, products.Deactivate(ctx, p.ID), ErrNotFound)
}

func TestMemoryProducts_DecrementStock(t *testing.T) {
	ctx := context.Background()
	products := NewMemoryProducts(NewMemoryStore())
	p := seedProduct(t, products, "A", 3)

	remaining, err := products.DecrementStock(ctx, p.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)

	current, err := products.DecrementStock(ctx, p.ID, 2)
	assert.ErrorIs(t, err, ErrStockConflict)
	assert.Equal(t, 1, current)

	_, err = products.DecrementStock(ctx, 404, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryProducts_ListFilterAndPaging(t *testing.T) {
	ctx := context.Background()
	products := NewMemoryProducts(NewMemoryStore())
	for _, name := range []string{"Doom", "Doom Eternal", "Quake", "Heretic"} {
		seedProduct(t, products, name, 1)
	}

	list, err := products.List(ctx, models.ProductFilter{Search: "doom"})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = products.List(ctx, models.ProductFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Doom Eternal", list[0].Name)

	list, err = products.List(ctx, models.ProductFilter{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMemoryCarts_InsertConflictAndScope(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	products := NewMemoryProducts(store)
	carts := NewMemoryCarts(store)
	p := seedProduct(t, products, "A", 3)

	line := &models.CartItem{UserID: "u1", ProductID: p.ID, Quantity: 1}
	require.NoError(t, carts.Insert(ctx, line))
	assert.ErrorIs(t, carts.Insert(ctx, &models.CartItem{UserID: "u1", ProductID: p.ID, Quantity: 1}), ErrConflict)
	require.NoError(t, carts.Insert(ctx, &models.CartItem{UserID: "u2", ProductID: p.ID, Quantity: 1}))

	_, err := carts.FindByID(ctx, "u2", line.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, carts.UpdateQuantity(ctx, "u2", line.ID, 3), ErrNotFound)

	require.NoError(t, carts.ClearByUser(ctx, "u1"))
	items, err := carts.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, items)
	items, err = carts.ListByUser(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestMemoryCarts_DeleteLines(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	products := NewMemoryProducts(store)
	carts := NewMemoryCarts(store)
	a := seedProduct(t, products, "A", 3)
	b := seedProduct(t, products, "B", 3)

	mine := &models.CartItem{UserID: "u1", ProductID: a.ID, Quantity: 1}
	kept := &models.CartItem{UserID: "u1", ProductID: b.ID, Quantity: 1}
	theirs := &models.CartItem{UserID: "u2", ProductID: a.ID, Quantity: 1}
	for _, line := range []*models.CartItem{mine, kept, theirs} {
		require.NoError(t, carts.Insert(ctx, line))
	}

	require.NoError(t, carts.DeleteLines(ctx, "u1", []int64{mine.ID, theirs.ID}))

	items, err := carts.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, kept.ID, items[0].ID)

	items, err = carts.ListByUser(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, items, 1, "another user's line is not touched")
}

func TestMemoryTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	products := NewMemoryProducts(store)
	carts := NewMemoryCarts(store)
	orders := NewMemoryOrders(store)
	tx := NewMemoryTx(store)
	p := seedProduct(t, products, "A", 5)
	require.NoError(t, carts.Insert(ctx, &models.CartItem{UserID: "u1", ProductID: p.ID, Quantity: 2}))

	boom := errors.New("boom")
	err := tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := products.DecrementStock(ctx, p.ID, 2); err != nil {
			return err
		}
		o := &models.Order{UserID: "u1", Items: []models.OrderItem{{ProductID: p.ID, Quantity: 2}}}
		if err := orders.Create(ctx, o); err != nil {
			return err
		}
		if err := carts.ClearByUser(ctx, "u1"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock)
	items, err := carts.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, items, 1)
	count := 0
	for _, err := range orders.ListByUser(ctx, "u1", 10) {
		require.NoError(t, err)
		count++
	}
	assert.Zero(t, count, "order survived rollback")

	o := &models.Order{UserID: "u1", Items: []models.OrderItem{{ProductID: p.ID, Quantity: 1}}}
	require.NoError(t, orders.Create(ctx, o))
	assert.Equal(t, int64(1), o.ID, "ids handed out inside a rolled back tx are reused")
}

func TestMemoryTx_Nested(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	products := NewMemoryProducts(store)
	tx := NewMemoryTx(store)
	p := seedProduct(t, products, "A", 5)

	err := tx.WithTransaction(ctx, func(ctx context.Context) error {
		return tx.WithTransaction(ctx, func(ctx context.Context) error {
			_, err := products.DecrementStock(ctx, p.ID, 1)
			return err
		})
	})
	require.NoError(t, err)

	got, err := products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Stock)
}

func TestMemoryUsers(t *testing.T) {
	ctx := context.Background()
	users := NewMemoryUsers(NewMemoryStore())

	u := &models.User{Email: "a@example.com", Password: "x", Role: models.RoleCustomer}
	require.NoError(t, users.Create(ctx, u))
	assert.NotEmpty(t, u.ID)
	assert.ErrorIs(t, users.Create(ctx, &models.User{Email: "A@example.com"}), ErrConflict)

	require.NoError(t, users.UpdateRole(ctx, u.ID, models.RoleAdmin))
	got, err := users.FindByEmail(ctx, "A@EXAMPLE.COM")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)

	_, err = users.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
