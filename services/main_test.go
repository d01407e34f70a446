package services

import (
	"context"
	"game-store/libs"
	"game-store/models"
	"game-store/repositories"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixture struct {
	store     *repositories.MemoryStore
	products  *repositories.MemoryProducts
	carts     *repositories.MemoryCarts
	orders    *repositories.MemoryOrders
	users     *repositories.MemoryUsers
	tx        *repositories.MemoryTx
	locker    *libs.KeyedMutex
	ledger    *InventoryLedger
	journal   *OrderJournal
	validator *StockValidator
	cart      *CartService
	checkout  *CheckoutService
	catalog   *ProductService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repositories.NewMemoryStore()
	f := &fixture{
		store:    store,
		products: repositories.NewMemoryProducts(store),
		carts:    repositories.NewMemoryCarts(store),
		orders:   repositories.NewMemoryOrders(store),
		users:    repositories.NewMemoryUsers(store),
		tx:       repositories.NewMemoryTx(store),
		locker:   libs.NewKeyedMutex(),
	}
	f.ledger = NewInventoryLedger(f.products)
	f.journal = NewOrderJournal(f.orders)
	f.validator = NewStockValidator(f.products)
	f.cart = NewCartService(f.carts, f.products, f.tx, f.locker, DefaultCartMaxQuantity)
	f.checkout = NewCheckoutService(f.tx, f.carts, f.products, f.ledger, f.journal, f.locker, DefaultCheckoutTimeout)
	f.catalog = NewProductService(f.products)
	return f
}

func (f *fixture) seedProduct(t *testing.T, name, price string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:  name,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	}
	require.NoError(t, f.products.Create(context.Background(), p))
	return p
}

func (f *fixture) stockOf(t *testing.T, id int64) int {
	t.Helper()
	n, err := f.ledger.CurrentStock(context.Background(), id)
	require.NoError(t, err)
	return n
}

func (f *fixture) orderCount(t *testing.T, userID string) int {
	t.Helper()
	n := 0
	for _, err := range f.journal.ListForUser(context.Background(), userID) {
		require.NoError(t, err)
		n++
	}
	return n
}
