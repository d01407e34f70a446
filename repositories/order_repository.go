package repositories

import (
	"context"
	"errors"
	"fmt"
	"game-store/models"
	"iter"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type orderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) OrderRepository {
	return &orderRepository{db: db}
}

// Create inserts the order header and its items. Callers run it inside a
// transaction so a failed item insert leaves no partial order behind.
func (r *orderRepository) Create(ctx context.Context, o *models.Order) error {
	db := conn(ctx, r.db)

	err := db.QueryRow(ctx, `
		INSERT INTO orders (user_id, total_amount, status)
		VALUES ($1, $2::numeric, $3)
		RETURNING id, created_at
	`, o.UserID, o.TotalAmount.String(), o.Status).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	batch := &pgx.Batch{}
	for i := range o.Items {
		o.Items[i].OrderID = o.ID
		batch.Queue(`
			INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5::numeric)
			RETURNING id
		`, o.ID, o.Items[i].ProductID, o.Items[i].ProductName, o.Items[i].Quantity, o.Items[i].UnitPrice.String())
	}

	br := db.SendBatch(ctx, batch)
	for i := range o.Items {
		if err := br.QueryRow().Scan(&o.Items[i].ID); err != nil {
			br.Close()
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to insert order items: %w", err)
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, userID string, id int64) (*models.Order, error) {
	db := conn(ctx, r.db)

	var o models.Order
	var total string
	err := db.QueryRow(ctx, `
		SELECT id, user_id, total_amount::text, status, created_at
		FROM orders
		WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(&o.ID, &o.UserID, &total, &o.Status, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order %d: %w", id, err)
	}
	if o.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("invalid total for order %d: %w", id, err)
	}

	items, err := r.itemsFor(ctx, db, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return &o, nil
}

// ListByUser pages through orders with a (created_at, id) keyset so
// concurrent inserts never shift a page.
func (r *orderRepository) ListByUser(ctx context.Context, userID string, pageSize int) iter.Seq2[models.Order, error] {
	if pageSize <= 0 {
		pageSize = 20
	}
	return func(yield func(models.Order, error) bool) {
		var (
			afterTime *time.Time
			afterID   int64
		)
		for {
			page, err := r.page(ctx, userID, afterTime, afterID, pageSize)
			if err != nil {
				yield(models.Order{}, err)
				return
			}
			for _, o := range page {
				if !yield(o, nil) {
					return
				}
			}
			if len(page) < pageSize {
				return
			}
			last := page[len(page)-1]
			afterTime, afterID = &last.CreatedAt, last.ID
		}
	}
}

func (r *orderRepository) page(ctx context.Context, userID string, afterTime *time.Time, afterID int64, limit int) ([]models.Order, error) {
	db := conn(ctx, r.db)

	rows, err := db.Query(ctx, `
		SELECT id, user_id, total_amount::text, status, created_at
		FROM orders
		WHERE user_id = $1
		  AND ($2::timestamptz IS NULL OR (created_at, id) < ($2::timestamptz, $3))
		ORDER BY created_at DESC, id DESC
		LIMIT $4
	`, userID, afterTime, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	orders := []models.Order{}
	ids := []int64{}
	for rows.Next() {
		var o models.Order
		var total string
		if err := rows.Scan(&o.ID, &o.UserID, &total, &o.Status, &o.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		if o.TotalAmount, err = decimal.NewFromString(total); err != nil {
			rows.Close()
			return nil, fmt.Errorf("invalid total for order %d: %w", o.ID, err)
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	items, err := r.itemsFor(ctx, db, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, nil
}

func (r *orderRepository) itemsFor(ctx context.Context, db DBTX, orderIDs []int64) (map[int64][]models.OrderItem, error) {
	rows, err := db.Query(ctx, `
		SELECT id, order_id, product_id, product_name, quantity, unit_price::text
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id
	`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]models.OrderItem, len(orderIDs))
	for rows.Next() {
		var item models.OrderItem
		var price string
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.Quantity, &price); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		if item.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("invalid unit price for order item %d: %w", item.ID, err)
		}
		out[item.OrderID] = append(out[item.OrderID], item)
	}
	return out, rows.Err()
}
