package services

import (
	"context"
	"errors"
	"game-store/libs"
	"game-store/models"
	"game-store/repositories"
	"log/slog"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

const DefaultCheckoutTimeout = 5 * time.Second

type CheckoutService struct {
	tx       repositories.TxManager
	carts    repositories.CartRepository
	products repositories.ProductRepository
	ledger   *InventoryLedger
	journal  *OrderJournal
	locker   libs.Locker
	timeout  time.Duration
}

func NewCheckoutService(
	tx repositories.TxManager,
	carts repositories.CartRepository,
	products repositories.ProductRepository,
	ledger *InventoryLedger,
	journal *OrderJournal,
	locker libs.Locker,
	timeout time.Duration,
) *CheckoutService {
	if timeout <= 0 {
		timeout = DefaultCheckoutTimeout
	}
	return &CheckoutService{
		tx:       tx,
		carts:    carts,
		products: products,
		ledger:   ledger,
		journal:  journal,
		locker:   locker,
		timeout:  timeout,
	}
}

// Checkout turns the user's cart into an order. Validation, stock
// decrements, the journal entry and removing the converted lines commit
// together or not at all. The user's cart lock is held throughout, so no
// cart mutation interleaves with it.
func (s *CheckoutService) Checkout(ctx context.Context, userID string) (*models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var order *models.Order
	err := withCartLock(ctx, s.locker, s.tx, userID, func(ctx context.Context) error {
		order = nil

		lines, err := s.carts.ListByUserForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		ids := make([]int64, 0, len(lines))
		lineIDs := make([]int64, 0, len(lines))
		for _, line := range lines {
			ids = append(ids, line.ProductID)
			lineIDs = append(lineIDs, line.ID)
		}
		slices.Sort(ids)
		ids = slices.Compact(ids)

		products, err := s.products.GetForUpdate(ctx, ids)
		if err != nil {
			return err
		}

		draft := &models.Order{
			UserID: userID,
			Status: models.OrderStatusCompleted,
			Items:  make([]models.OrderItem, 0, len(lines)),
		}
		total := decimal.Zero
		for _, line := range lines {
			p := products[line.ProductID]
			if err := CheckStock(p, line.ProductID, line.Quantity); err != nil {
				return err
			}
			item := models.OrderItem{
				ProductID:   p.ID,
				ProductName: p.Name,
				Quantity:    line.Quantity,
				UnitPrice:   p.Price,
			}
			total = total.Add(item.Subtotal())
			draft.Items = append(draft.Items, item)
		}
		draft.TotalAmount = total

		for _, line := range lines {
			if _, err := s.ledger.Decrement(ctx, line.ProductID, line.Quantity); err != nil {
				var ise *InsufficientStockError
				if errors.As(err, &ise) {
					ise.ProductName = products[line.ProductID].Name
				}
				return err
			}
		}

		if order, err = s.journal.Append(ctx, draft); err != nil {
			return err
		}
		return s.carts.DeleteLines(ctx, userID, lineIDs)
	})
	if err != nil {
		return nil, unavailable("checkout", err)
	}

	slog.InfoContext(ctx, "checkout completed",
		slog.String("user_id", userID),
		slog.Int64("order_id", order.ID),
		slog.Int("items", len(order.Items)),
		slog.String("total", order.TotalAmount.StringFixed(2)),
	)
	return order, nil
}
