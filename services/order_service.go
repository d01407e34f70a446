package services

import (
	"context"
	"errors"
	"fmt"
	"game-store/models"
	"game-store/repositories"
	"iter"
)

const defaultOrderPageSize = 20

// OrderJournal is append-only: orders are never updated or deleted.
type OrderJournal struct {
	orders   repositories.OrderRepository
	pageSize int
}

func NewOrderJournal(orders repositories.OrderRepository) *OrderJournal {
	return &OrderJournal{orders: orders, pageSize: defaultOrderPageSize}
}

// Append stores o and fills in its id, item ids and creation time.
func (j *OrderJournal) Append(ctx context.Context, o *models.Order) (*models.Order, error) {
	if len(o.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if err := j.orders.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("failed to append order: %w", err)
	}
	return o, nil
}

// ListForUser yields the user's orders newest first. The sequence is lazy
// and can be ranged over again to restart from the newest order.
func (j *OrderJournal) ListForUser(ctx context.Context, userID string) iter.Seq2[models.Order, error] {
	seq := j.orders.ListByUser(ctx, userID, j.pageSize)
	return func(yield func(models.Order, error) bool) {
		for o, err := range seq {
			if err != nil {
				yield(models.Order{}, unavailable("list orders", err))
				return
			}
			if !yield(o, nil) {
				return
			}
		}
	}
}

// Recent collects at most limit orders from ListForUser.
func (j *OrderJournal) Recent(ctx context.Context, userID string, limit int) ([]models.Order, error) {
	orders := make([]models.Order, 0, limit)
	if limit <= 0 {
		return orders, nil
	}
	for o, err := range j.ListForUser(ctx, userID) {
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
		if len(orders) == limit {
			break
		}
	}
	return orders, nil
}

func (j *OrderJournal) Get(ctx context.Context, userID string, orderID int64) (*models.Order, error) {
	o, err := j.orders.GetByID(ctx, userID, orderID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, unavailable("get order", err)
	}
	return o, nil
}
