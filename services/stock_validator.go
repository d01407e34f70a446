package services

import (
	"context"
	"errors"
	"game-store/models"
	"game-store/repositories"
)

// CheckStock rejects a request for more units than p currently holds.
// A nil product is reported as not found.
func CheckStock(p *models.Product, productID int64, requested int) error {
	if p == nil {
		return &ProductNotFoundError{ProductID: productID}
	}
	if requested > p.Stock {
		return &InsufficientStockError{
			ProductID:   p.ID,
			ProductName: p.Name,
			Requested:   requested,
			Available:   p.Stock,
		}
	}
	return nil
}

// StockValidator answers advisory stock questions. Its answers may be stale
// by the time the caller acts on them; checkout re-validates under lock.
type StockValidator struct {
	products repositories.ProductRepository
}

func NewStockValidator(products repositories.ProductRepository) *StockValidator {
	return &StockValidator{products: products}
}

func (v *StockValidator) IsAvailable(ctx context.Context, productID int64, quantity int) (bool, error) {
	p, err := v.products.GetByID(ctx, productID)
	if errors.Is(err, repositories.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, unavailable("check availability", err)
	}
	return quantity <= p.Stock, nil
}

// AvailableStock returns 0 for products that do not exist.
func (v *StockValidator) AvailableStock(ctx context.Context, productID int64) (int, error) {
	p, err := v.products.GetByID(ctx, productID)
	if errors.Is(err, repositories.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, unavailable("available stock", err)
	}
	return p.Stock, nil
}
