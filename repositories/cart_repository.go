package repositories

import (
	"context"
	"errors"
	"fmt"
	"game-store/models"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type cartRepository struct {
	db *pgxpool.Pool
}

func NewCartRepository(db *pgxpool.Pool) CartRepository {
	return &cartRepository{db: db}
}

const cartWithProductQuery = `
	SELECT ci.id, ci.user_id, ci.product_id, ci.quantity, ci.created_at, ci.updated_at,
	       p.id, p.name, p.description, p.price::text, p.stock, p.created_at, p.updated_at
	FROM cart_items ci
	LEFT JOIN products p ON p.id = ci.product_id AND p.is_active = true
	WHERE ci.user_id = $1
	ORDER BY ci.id
`

func (r *cartRepository) ListByUser(ctx context.Context, userID string) ([]models.CartItem, error) {
	return r.list(ctx, cartWithProductQuery, userID)
}

func (r *cartRepository) ListByUserForUpdate(ctx context.Context, userID string) ([]models.CartItem, error) {
	return r.list(ctx, cartWithProductQuery+` FOR UPDATE OF ci`, userID)
}

func (r *cartRepository) list(ctx context.Context, query, userID string) ([]models.CartItem, error) {
	rows, err := conn(ctx, r.db).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	defer rows.Close()

	items := []models.CartItem{}
	for rows.Next() {
		var (
			item         models.CartItem
			pID          *int64
			pName        *string
			pDescription *string
			pPrice       *string
			pStock       *int
			pCreatedAt   *time.Time
			pUpdatedAt   *time.Time
		)
		if err := rows.Scan(
			&item.ID,
			&item.UserID,
			&item.ProductID,
			&item.Quantity,
			&item.CreatedAt,
			&item.UpdatedAt,
			&pID,
			&pName,
			&pDescription,
			&pPrice,
			&pStock,
			&pCreatedAt,
			&pUpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}

		if pID != nil {
			price, err := decimal.NewFromString(*pPrice)
			if err != nil {
				return nil, fmt.Errorf("invalid price for product %d: %w", *pID, err)
			}
			item.Product = &models.Product{
				ID:          *pID,
				Name:        *pName,
				Description: *pDescription,
				Price:       price,
				Stock:       *pStock,
				IsActive:    true,
				CreatedAt:   *pCreatedAt,
				UpdatedAt:   *pUpdatedAt,
			}
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	return items, nil
}

func (r *cartRepository) scanOne(ctx context.Context, query string, args ...any) (*models.CartItem, error) {
	var item models.CartItem
	err := conn(ctx, r.db).QueryRow(ctx, query, args...).Scan(
		&item.ID,
		&item.UserID,
		&item.ProductID,
		&item.Quantity,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cart item: %w", err)
	}
	return &item, nil
}

func (r *cartRepository) FindByUserAndProduct(ctx context.Context, userID string, productID int64) (*models.CartItem, error) {
	return r.scanOne(ctx, `
		SELECT id, user_id, product_id, quantity, created_at, updated_at
		FROM cart_items
		WHERE user_id = $1 AND product_id = $2
	`, userID, productID)
}

func (r *cartRepository) FindByID(ctx context.Context, userID string, lineID int64) (*models.CartItem, error) {
	return r.scanOne(ctx, `
		SELECT id, user_id, product_id, quantity, created_at, updated_at
		FROM cart_items
		WHERE id = $1 AND user_id = $2
	`, lineID, userID)
}

func (r *cartRepository) Insert(ctx context.Context, item *models.CartItem) error {
	query := `
		INSERT INTO cart_items (user_id, product_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	err := conn(ctx, r.db).QueryRow(ctx, query, item.UserID, item.ProductID, item.Quantity).
		Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to insert cart item: %w", err)
	}
	return nil
}

func (r *cartRepository) UpdateQuantity(ctx context.Context, userID string, lineID int64, quantity int) error {
	tag, err := conn(ctx, r.db).Exec(ctx, `
		UPDATE cart_items SET quantity = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
	`, quantity, lineID, userID)
	if err != nil {
		return fmt.Errorf("failed to update cart item %d: %w", lineID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *cartRepository) Delete(ctx context.Context, userID string, lineID int64) error {
	_, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM cart_items WHERE id = $1 AND user_id = $2`, lineID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete cart item %d: %w", lineID, err)
	}
	return nil
}

func (r *cartRepository) DeleteLines(ctx context.Context, userID string, lineIDs []int64) error {
	if len(lineIDs) == 0 {
		return nil
	}
	_, err := conn(ctx, r.db).Exec(ctx,
		`DELETE FROM cart_items WHERE user_id = $1 AND id = ANY($2)`,
		userID, lineIDs,
	)
	if err != nil {
		return fmt.Errorf("failed to delete cart items: %w", err)
	}
	return nil
}

func (r *cartRepository) ClearByUser(ctx context.Context, userID string) error {
	_, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
