package repositories

import (
	"context"
	"errors"
	"fmt"
	"game-store/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const productColumns = `id, name, description, price::text, stock, is_active, created_at, updated_at`

type productRepository struct {
	db *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) ProductRepository {
	return &productRepository{db: db}
}

func scanProduct(row pgx.Row) (*models.Product, error) {
	var p models.Product
	var price string
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&price,
		&p.Stock,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	d, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q for product %d: %w", price, p.ID, err)
	}
	p.Price = d
	return &p, nil
}

func (r *productRepository) Create(ctx context.Context, p *models.Product) error {
	query := `
		INSERT INTO products (name, description, price, stock, is_active)
		VALUES ($1, $2, $3::numeric, $4, true)
		RETURNING id, is_active, created_at, updated_at
	`
	err := conn(ctx, r.db).QueryRow(ctx, query,
		p.Name, p.Description, p.Price.String(), p.Stock,
	).Scan(&p.ID, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND is_active = true`

	p, err := scanProduct(conn(ctx, r.db).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	return p, nil
}

func (r *productRepository) GetForUpdate(ctx context.Context, ids []int64) (map[int64]*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = ANY($1) AND is_active = true
		ORDER BY id
		FOR UPDATE
	`
	rows, err := conn(ctx, r.db).Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to lock products: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]*models.Product, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to lock products: %w", err)
	}
	return out, nil
}

func (r *productRepository) Update(ctx context.Context, p *models.Product) error {
	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3::numeric, updated_at = NOW()
		WHERE id = $4 AND is_active = true
		RETURNING ` + productColumns
	updated, err := scanProduct(conn(ctx, r.db).QueryRow(ctx, query,
		p.Name, p.Description, p.Price.String(), p.ID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update product %d: %w", p.ID, err)
	}
	*p = *updated
	return nil
}

func (r *productRepository) Deactivate(ctx context.Context, id int64) error {
	query := `UPDATE products SET is_active = false, updated_at = NOW() WHERE id = $1 AND is_active = true`
	tag, err := conn(ctx, r.db).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *productRepository) List(ctx context.Context, f models.ProductFilter) ([]models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE is_active = true AND ($1 = '' OR name ILIKE '%' || $1 || '%')
		ORDER BY id
		LIMIT NULLIF($2, 0) OFFSET $3
	`
	rows, err := conn(ctx, r.db).Query(ctx, query, f.Search, f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// DecrementStock only succeeds while stock >= amount, so concurrent callers
// can never drive stock negative even without a prior row lock.
func (r *productRepository) DecrementStock(ctx context.Context, id int64, amount int) (int, error) {
	db := conn(ctx, r.db)

	var remaining int
	err := db.QueryRow(ctx, `
		UPDATE products
		SET stock = stock - $2, updated_at = NOW()
		WHERE id = $1 AND is_active = true AND stock >= $2
		RETURNING stock
	`, id, amount).Scan(&remaining)
	if err == nil {
		return remaining, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("failed to decrement stock for product %d: %w", id, err)
	}
	return r.currentStock(ctx, db, id)
}

func (r *productRepository) currentStock(ctx context.Context, db DBTX, id int64) (int, error) {
	var current int
	err := db.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1 AND is_active = true`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read stock for product %d: %w", id, err)
	}
	return current, ErrStockConflict
}

func (r *productRepository) IncrementStock(ctx context.Context, id int64, amount int) (int, error) {
	var stock int
	err := conn(ctx, r.db).QueryRow(ctx, `
		UPDATE products
		SET stock = stock + $2, updated_at = NOW()
		WHERE id = $1 AND is_active = true
		RETURNING stock
	`, id, amount).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to restock product %d: %w", id, err)
	}
	return stock, nil
}
