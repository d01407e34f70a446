package services

import (
	"context"
	"errors"
	"game-store/libs"
	"game-store/models"
	"game-store/repositories"
	"log/slog"

	"github.com/shopspring/decimal"
)

const DefaultCartMaxQuantity = 100

// CartService owns per-user cart lines. Mutations for one user run under
// that user's lock and inside one transaction.
type CartService struct {
	carts       repositories.CartRepository
	products    repositories.ProductRepository
	tx          repositories.TxManager
	locker      libs.Locker
	maxQuantity int
}

func NewCartService(
	carts repositories.CartRepository,
	products repositories.ProductRepository,
	tx repositories.TxManager,
	locker libs.Locker,
	maxQuantity int,
) *CartService {
	if maxQuantity <= 0 {
		maxQuantity = DefaultCartMaxQuantity
	}
	return &CartService{
		carts:       carts,
		products:    products,
		tx:          tx,
		locker:      locker,
		maxQuantity: maxQuantity,
	}
}

func (s *CartService) MaxQuantity() int { return s.maxQuantity }

func cartLockKey(userID string) string { return "cart:" + userID }

// withCartLock runs fn in a transaction while holding the user's cart lock.
// Cart mutations and checkout both go through it.
func withCartLock(ctx context.Context, locker libs.Locker, tx repositories.TxManager, userID string, fn func(ctx context.Context) error) error {
	unlock, err := locker.Lock(ctx, cartLockKey(userID))
	if err != nil {
		return unavailable("lock cart", err)
	}
	defer unlock()
	return tx.WithTransaction(ctx, fn)
}

func (s *CartService) withUserLock(ctx context.Context, userID string, fn func(ctx context.Context) error) error {
	return withCartLock(ctx, s.locker, s.tx, userID, fn)
}

func (s *CartService) ListItems(ctx context.Context, userID string) ([]models.CartItem, error) {
	items, err := s.carts.ListByUser(ctx, userID)
	if err != nil {
		return nil, unavailable("list cart", err)
	}
	return items, nil
}

// AddOrMerge adds quantity units of a product, merging into the existing
// line for that product if there is one.
func (s *CartService) AddOrMerge(ctx context.Context, userID string, productID int64, quantity int) (*models.CartItem, error) {
	if quantity < 1 || quantity > s.maxQuantity {
		return nil, &InvalidQuantityError{Quantity: quantity, Max: s.maxQuantity}
	}

	var line *models.CartItem
	err := s.withUserLock(ctx, userID, func(ctx context.Context) error {
		product, err := s.products.GetByID(ctx, productID)
		if err != nil {
			return notFoundAs(err, productID)
		}

		existing, err := s.carts.FindByUserAndProduct(ctx, userID, productID)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return err
		}

		merged := quantity
		if existing != nil {
			merged += existing.Quantity
		}
		if merged > s.maxQuantity {
			return &InvalidQuantityError{Quantity: merged, Max: s.maxQuantity}
		}
		if err := CheckStock(product, productID, merged); err != nil {
			return err
		}

		if existing != nil {
			if err := s.carts.UpdateQuantity(ctx, userID, existing.ID, merged); err != nil {
				return err
			}
			existing.Quantity = merged
			existing.Product = product
			line = existing
			return nil
		}

		line = &models.CartItem{UserID: userID, ProductID: productID, Quantity: merged}
		if err := s.carts.Insert(ctx, line); err != nil {
			return err
		}
		line.Product = product
		return nil
	})
	if err != nil {
		return nil, unavailable("add to cart", err)
	}

	slog.DebugContext(ctx, "cart line saved",
		slog.String("user_id", userID),
		slog.Int64("product_id", productID),
		slog.Int("quantity", line.Quantity),
	)
	return line, nil
}

// SetQuantity replaces a line's quantity. Zero or less removes the line and
// is a no-op when the line is already gone.
func (s *CartService) SetQuantity(ctx context.Context, userID string, lineID int64, quantity int) error {
	if quantity <= 0 {
		return s.Remove(ctx, userID, lineID)
	}
	if quantity > s.maxQuantity {
		return &InvalidQuantityError{Quantity: quantity, Max: s.maxQuantity}
	}

	err := s.withUserLock(ctx, userID, func(ctx context.Context) error {
		line, err := s.carts.FindByID(ctx, userID, lineID)
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrCartItemNotFound
		}
		if err != nil {
			return err
		}

		product, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			return notFoundAs(err, line.ProductID)
		}
		if err := CheckStock(product, line.ProductID, quantity); err != nil {
			return err
		}
		return s.carts.UpdateQuantity(ctx, userID, lineID, quantity)
	})
	return unavailable("update cart", err)
}

func (s *CartService) Remove(ctx context.Context, userID string, lineID int64) error {
	err := s.withUserLock(ctx, userID, func(ctx context.Context) error {
		return s.carts.Delete(ctx, userID, lineID)
	})
	return unavailable("remove cart item", err)
}

func (s *CartService) Clear(ctx context.Context, userID string) error {
	err := s.withUserLock(ctx, userID, func(ctx context.Context) error {
		return s.carts.ClearByUser(ctx, userID)
	})
	return unavailable("clear cart", err)
}

// Total quotes the cart at current catalog prices. Lines whose product has
// left the catalog contribute nothing.
func (s *CartService) Total(ctx context.Context, userID string) (decimal.Decimal, error) {
	items, err := s.ListItems(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return SumLines(items), nil
}

func SumLines(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// View returns the lines and their total from one read.
func (s *CartService) View(ctx context.Context, userID string) (*models.CartView, error) {
	items, err := s.ListItems(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.CartView{Items: items, Total: SumLines(items)}, nil
}
