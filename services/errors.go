package services

import (
	"context"
	"errors"
	"fmt"
	"game-store/repositories"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrUnavailable       = errors.New("service temporarily unavailable")

	ErrOrderNotFound      = errors.New("order not found")
	ErrCartItemNotFound   = errors.New("cart item not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidPrice       = errors.New("price must be non-negative with at most 2 decimal places")
)

type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

func (e *ProductNotFoundError) Is(target error) bool { return target == ErrProductNotFound }

// InsufficientStockError carries the stock that was available when the
// request was rejected.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	name := e.ProductName
	if name == "" {
		name = fmt.Sprintf("product %d", e.ProductID)
	}
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", name, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

type InvalidQuantityError struct {
	Quantity int
	Max      int
}

func (e *InvalidQuantityError) Error() string {
	if e.Max <= 0 {
		return fmt.Sprintf("quantity %d must be positive", e.Quantity)
	}
	return fmt.Sprintf("quantity %d is out of range 1..%d", e.Quantity, e.Max)
}

func (e *InvalidQuantityError) Is(target error) bool { return target == ErrInvalidQuantity }

func isDomainError(err error) bool {
	return errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrEmptyCart) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrCartItemNotFound) ||
		errors.Is(err, ErrEmailTaken) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrInvalidPrice) ||
		errors.Is(err, ErrUnavailable)
}

// unavailable passes domain errors through and turns everything else
// (storage failures, timeouts, exhausted retries) into ErrUnavailable.
func unavailable(op string, err error) error {
	if err == nil || isDomainError(err) {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
}

func notFoundAs(err error, productID int64) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return &ProductNotFoundError{ProductID: productID}
	}
	return err
}
