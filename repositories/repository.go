package repositories

import (
	"context"
	"errors"
	"game-store/models"
	"iter"
	"strings"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict reports a unique constraint hit. Transactions that fail
	// with it are retried.
	ErrConflict = errors.New("conflict")
	// ErrStockConflict is returned by DecrementStock when the row holds less
	// than the requested amount; the current stock is returned alongside it.
	ErrStockConflict = errors.New("stock conflict")
)

type ProductRepository interface {
	Create(ctx context.Context, p *models.Product) error
	// GetByID returns ErrNotFound for missing and inactive products.
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	// GetForUpdate locks the active products among ids in ascending id
	// order. Ids without an active product are absent from the result.
	GetForUpdate(ctx context.Context, ids []int64) (map[int64]*models.Product, error)
	Update(ctx context.Context, p *models.Product) error
	Deactivate(ctx context.Context, id int64) error
	List(ctx context.Context, f models.ProductFilter) ([]models.Product, error)
	DecrementStock(ctx context.Context, id int64, amount int) (int, error)
	IncrementStock(ctx context.Context, id int64, amount int) (int, error)
}

type CartRepository interface {
	// ListByUser returns lines in insertion order with the live product
	// attached, or nil Product when it left the catalog.
	ListByUser(ctx context.Context, userID string) ([]models.CartItem, error)
	// ListByUserForUpdate is ListByUser that also locks the lines until
	// the surrounding transaction ends.
	ListByUserForUpdate(ctx context.Context, userID string) ([]models.CartItem, error)
	FindByUserAndProduct(ctx context.Context, userID string, productID int64) (*models.CartItem, error)
	FindByID(ctx context.Context, userID string, lineID int64) (*models.CartItem, error)
	Insert(ctx context.Context, item *models.CartItem) error
	UpdateQuantity(ctx context.Context, userID string, lineID int64, quantity int) error
	// Delete is a no-op when the line does not exist.
	Delete(ctx context.Context, userID string, lineID int64) error
	// DeleteLines removes only the given lines of the user's cart, so a line
	// added after a snapshot was taken survives.
	DeleteLines(ctx context.Context, userID string, lineIDs []int64) error
	ClearByUser(ctx context.Context, userID string) error
}

type OrderRepository interface {
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, userID string, id int64) (*models.Order, error)
	// ListByUser yields the user's orders newest first, fetching pageSize
	// orders at a time. Every range over the sequence starts from the top.
	ListByUser(ctx context.Context, userID string, pageSize int) iter.Seq2[models.Order, error]
}

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdateRole(ctx context.Context, id, role string) error
}

// TxManager runs fn as one atomic unit. Repositories called with the ctx
// passed to fn take part in the transaction.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

func containsIgnoreCase(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
