package services

import (
	"context"
	"errors"
	"fmt"
	"game-store/repositories"
	"log/slog"
)

// InventoryLedger is the only writer of product stock.
type InventoryLedger struct {
	products repositories.ProductRepository
}

func NewInventoryLedger(products repositories.ProductRepository) *InventoryLedger {
	return &InventoryLedger{products: products}
}

// Decrement removes amount units and returns the remaining stock. The
// check and the write are a single conditional update in the store.
func (l *InventoryLedger) Decrement(ctx context.Context, productID int64, amount int) (int, error) {
	if amount <= 0 {
		return 0, &InvalidQuantityError{Quantity: amount}
	}

	remaining, err := l.products.DecrementStock(ctx, productID, amount)
	switch {
	case err == nil:
		return remaining, nil
	case errors.Is(err, repositories.ErrNotFound):
		return 0, &ProductNotFoundError{ProductID: productID}
	case errors.Is(err, repositories.ErrStockConflict):
		return remaining, &InsufficientStockError{
			ProductID: productID,
			Requested: amount,
			Available: remaining,
		}
	default:
		return 0, unavailable("decrement stock", err)
	}
}

func (l *InventoryLedger) Restock(ctx context.Context, productID int64, amount int) (int, error) {
	if amount <= 0 {
		return 0, &InvalidQuantityError{Quantity: amount}
	}

	stock, err := l.products.IncrementStock(ctx, productID, amount)
	if err != nil {
		return 0, unavailable("restock", notFoundAs(err, productID))
	}

	slog.InfoContext(ctx, "product restocked",
		slog.Int64("product_id", productID),
		slog.Int("amount", amount),
		slog.Int("stock", stock),
	)
	return stock, nil
}

func (l *InventoryLedger) CurrentStock(ctx context.Context, productID int64) (int, error) {
	p, err := l.products.GetByID(ctx, productID)
	if err != nil {
		return 0, unavailable(fmt.Sprintf("stock of product %d", productID), notFoundAs(err, productID))
	}
	return p.Stock, nil
}
