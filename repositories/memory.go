package repositories

import (
	"cmp"
	"context"
	"game-store/models"
	"iter"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps every table in process memory behind one RWMutex.
// It backs STORE_DRIVER=memory and the service tests.
type MemoryStore struct {
	mu sync.RWMutex

	nextProductID   int64
	nextCartID      int64
	nextOrderID     int64
	nextOrderItemID int64

	products map[int64]models.Product
	carts    map[int64]models.CartItem
	orders   map[int64]models.Order
	users    map[string]models.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextProductID:   1,
		nextCartID:      1,
		nextOrderID:     1,
		nextOrderItemID: 1,
		products:        make(map[int64]models.Product),
		carts:           make(map[int64]models.CartItem),
		orders:          make(map[int64]models.Order),
		users:           make(map[string]models.User),
	}
}

type memTxKey struct{}

// inTx reports whether ctx already holds this store's write lock.
func (m *MemoryStore) inTx(ctx context.Context) bool {
	s, ok := ctx.Value(memTxKey{}).(*MemoryStore)
	return ok && s == m
}

func (m *MemoryStore) rlock(ctx context.Context) {
	if !m.inTx(ctx) {
		m.mu.RLock()
	}
}

func (m *MemoryStore) runlock(ctx context.Context) {
	if !m.inTx(ctx) {
		m.mu.RUnlock()
	}
}

func (m *MemoryStore) wlock(ctx context.Context) {
	if !m.inTx(ctx) {
		m.mu.Lock()
	}
}

func (m *MemoryStore) wunlock(ctx context.Context) {
	if !m.inTx(ctx) {
		m.mu.Unlock()
	}
}

type memorySnapshot struct {
	nextProductID   int64
	nextCartID      int64
	nextOrderID     int64
	nextOrderItemID int64
	products        map[int64]models.Product
	carts           map[int64]models.CartItem
	orders          map[int64]models.Order
	users           map[string]models.User
}

// snapshot must be called with the write lock held. Order items are
// never mutated after creation so a shallow copy of orders is enough.
func (m *MemoryStore) snapshot() memorySnapshot {
	return memorySnapshot{
		nextProductID:   m.nextProductID,
		nextCartID:      m.nextCartID,
		nextOrderID:     m.nextOrderID,
		nextOrderItemID: m.nextOrderItemID,
		products:        maps.Clone(m.products),
		carts:           maps.Clone(m.carts),
		orders:          maps.Clone(m.orders),
		users:           maps.Clone(m.users),
	}
}

func (m *MemoryStore) restore(s memorySnapshot) {
	m.nextProductID = s.nextProductID
	m.nextCartID = s.nextCartID
	m.nextOrderID = s.nextOrderID
	m.nextOrderItemID = s.nextOrderItemID
	m.products = s.products
	m.carts = s.carts
	m.orders = s.orders
	m.users = s.users
}

// MemoryTx serialises transactions with the store's write lock and rolls
// the store back to its pre-transaction state when fn fails.
type MemoryTx struct{ store *MemoryStore }

func NewMemoryTx(store *MemoryStore) *MemoryTx { return &MemoryTx{store: store} }

var _ TxManager = (*MemoryTx)(nil)

func (tx *MemoryTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx.store.inTx(ctx) {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()

	snap := tx.store.snapshot()
	if err := fn(context.WithValue(ctx, memTxKey{}, tx.store)); err != nil {
		tx.store.restore(snap)
		return err
	}
	return nil
}

// MemoryProducts implements ProductRepository.
type MemoryProducts struct{ store *MemoryStore }

func NewMemoryProducts(store *MemoryStore) *MemoryProducts { return &MemoryProducts{store: store} }

var _ ProductRepository = (*MemoryProducts)(nil)

func (mp *MemoryProducts) Create(ctx context.Context, p *models.Product) error {
	mp.store.wlock(ctx)
	defer mp.store.wunlock(ctx)
	now := time.Now().UTC()
	p.ID = mp.store.nextProductID
	mp.store.nextProductID++
	p.IsActive = true
	p.CreatedAt = now
	p.UpdatedAt = now
	mp.store.products[p.ID] = *p
	return nil
}

func (mp *MemoryProducts) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	mp.store.rlock(ctx)
	defer mp.store.runlock(ctx)
	p, ok := mp.store.products[id]
	if !ok || !p.IsActive {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (mp *MemoryProducts) GetForUpdate(ctx context.Context, ids []int64) (map[int64]*models.Product, error) {
	mp.store.rlock(ctx)
	defer mp.store.runlock(ctx)
	out := make(map[int64]*models.Product, len(ids))
	for _, id := range ids {
		p, ok := mp.store.products[id]
		if !ok || !p.IsActive {
			continue
		}
		out[id] = &p
	}
	return out, nil
}

func (mp *MemoryProducts) Update(ctx context.Context, p *models.Product) error {
	mp.store.wlock(ctx)
	defer mp.store.wunlock(ctx)
	cur, ok := mp.store.products[p.ID]
	if !ok || !cur.IsActive {
		return ErrNotFound
	}
	cur.Name = p.Name
	cur.Description = p.Description
	cur.Price = p.Price
	cur.UpdatedAt = time.Now().UTC()
	mp.store.products[p.ID] = cur
	*p = cur
	return nil
}

func (mp *MemoryProducts) Deactivate(ctx context.Context, id int64) error {
	mp.store.wlock(ctx)
	defer mp.store.wunlock(ctx)
	cur, ok := mp.store.products[id]
	if !ok || !cur.IsActive {
		return ErrNotFound
	}
	cur.IsActive = false
	cur.UpdatedAt = time.Now().UTC()
	mp.store.products[id] = cur
	return nil
}

func (mp *MemoryProducts) List(ctx context.Context, f models.ProductFilter) ([]models.Product, error) {
	mp.store.rlock(ctx)
	defer mp.store.runlock(ctx)
	out := make([]models.Product, 0)
	for _, p := range mp.store.products {
		if !p.IsActive || !containsIgnoreCase(p.Name, f.Search) {
			continue
		}
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b models.Product) int { return cmp.Compare(a.ID, b.ID) })

	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []models.Product{}, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func (mp *MemoryProducts) DecrementStock(ctx context.Context, id int64, amount int) (int, error) {
	mp.store.wlock(ctx)
	defer mp.store.wunlock(ctx)
	cur, ok := mp.store.products[id]
	if !ok || !cur.IsActive {
		return 0, ErrNotFound
	}
	if cur.Stock < amount {
		return cur.Stock, ErrStockConflict
	}
	cur.Stock -= amount
	cur.UpdatedAt = time.Now().UTC()
	mp.store.products[id] = cur
	return cur.Stock, nil
}

func (mp *MemoryProducts) IncrementStock(ctx context.Context, id int64, amount int) (int, error) {
	mp.store.wlock(ctx)
	defer mp.store.wunlock(ctx)
	cur, ok := mp.store.products[id]
	if !ok || !cur.IsActive {
		return 0, ErrNotFound
	}
	cur.Stock += amount
	cur.UpdatedAt = time.Now().UTC()
	mp.store.products[id] = cur
	return cur.Stock, nil
}

// MemoryCarts implements CartRepository.
type MemoryCarts struct{ store *MemoryStore }

func NewMemoryCarts(store *MemoryStore) *MemoryCarts { return &MemoryCarts{store: store} }

var _ CartRepository = (*MemoryCarts)(nil)

func (mc *MemoryCarts) ListByUser(ctx context.Context, userID string) ([]models.CartItem, error) {
	mc.store.rlock(ctx)
	defer mc.store.runlock(ctx)
	out := make([]models.CartItem, 0)
	for _, item := range mc.store.carts {
		if item.UserID != userID {
			continue
		}
		if p, ok := mc.store.products[item.ProductID]; ok && p.IsActive {
			item.Product = &p
		}
		out = append(out, item)
	}
	slices.SortFunc(out, func(a, b models.CartItem) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

// ListByUserForUpdate relies on the store-wide transaction lock.
func (mc *MemoryCarts) ListByUserForUpdate(ctx context.Context, userID string) ([]models.CartItem, error) {
	return mc.ListByUser(ctx, userID)
}

func (mc *MemoryCarts) FindByUserAndProduct(ctx context.Context, userID string, productID int64) (*models.CartItem, error) {
	mc.store.rlock(ctx)
	defer mc.store.runlock(ctx)
	for _, item := range mc.store.carts {
		if item.UserID == userID && item.ProductID == productID {
			return &item, nil
		}
	}
	return nil, ErrNotFound
}

func (mc *MemoryCarts) FindByID(ctx context.Context, userID string, lineID int64) (*models.CartItem, error) {
	mc.store.rlock(ctx)
	defer mc.store.runlock(ctx)
	item, ok := mc.store.carts[lineID]
	if !ok || item.UserID != userID {
		return nil, ErrNotFound
	}
	return &item, nil
}

func (mc *MemoryCarts) Insert(ctx context.Context, item *models.CartItem) error {
	mc.store.wlock(ctx)
	defer mc.store.wunlock(ctx)
	for _, existing := range mc.store.carts {
		if existing.UserID == item.UserID && existing.ProductID == item.ProductID {
			return ErrConflict
		}
	}
	now := time.Now().UTC()
	item.ID = mc.store.nextCartID
	mc.store.nextCartID++
	item.CreatedAt = now
	item.UpdatedAt = now
	stored := *item
	stored.Product = nil
	mc.store.carts[item.ID] = stored
	return nil
}

func (mc *MemoryCarts) UpdateQuantity(ctx context.Context, userID string, lineID int64, quantity int) error {
	mc.store.wlock(ctx)
	defer mc.store.wunlock(ctx)
	item, ok := mc.store.carts[lineID]
	if !ok || item.UserID != userID {
		return ErrNotFound
	}
	item.Quantity = quantity
	item.UpdatedAt = time.Now().UTC()
	mc.store.carts[lineID] = item
	return nil
}

func (mc *MemoryCarts) Delete(ctx context.Context, userID string, lineID int64) error {
	mc.store.wlock(ctx)
	defer mc.store.wunlock(ctx)
	if item, ok := mc.store.carts[lineID]; ok && item.UserID == userID {
		delete(mc.store.carts, lineID)
	}
	return nil
}

func (mc *MemoryCarts) DeleteLines(ctx context.Context, userID string, lineIDs []int64) error {
	mc.store.wlock(ctx)
	defer mc.store.wunlock(ctx)
	for _, id := range lineIDs {
		if item, ok := mc.store.carts[id]; ok && item.UserID == userID {
			delete(mc.store.carts, id)
		}
	}
	return nil
}

func (mc *MemoryCarts) ClearByUser(ctx context.Context, userID string) error {
	mc.store.wlock(ctx)
	defer mc.store.wunlock(ctx)
	maps.DeleteFunc(mc.store.carts, func(_ int64, item models.CartItem) bool {
		return item.UserID == userID
	})
	return nil
}

// MemoryOrders implements OrderRepository.
type MemoryOrders struct{ store *MemoryStore }

func NewMemoryOrders(store *MemoryStore) *MemoryOrders { return &MemoryOrders{store: store} }

var _ OrderRepository = (*MemoryOrders)(nil)

func (mo *MemoryOrders) Create(ctx context.Context, o *models.Order) error {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	o.ID = mo.store.nextOrderID
	mo.store.nextOrderID++
	o.CreatedAt = time.Now().UTC()

	items := make([]models.OrderItem, len(o.Items))
	for i, item := range o.Items {
		item.ID = mo.store.nextOrderItemID
		mo.store.nextOrderItemID++
		item.OrderID = o.ID
		items[i] = item
	}
	o.Items = items

	stored := *o
	stored.Items = slices.Clone(items)
	mo.store.orders[o.ID] = stored
	return nil
}

func (mo *MemoryOrders) GetByID(ctx context.Context, userID string, id int64) (*models.Order, error) {
	mo.store.rlock(ctx)
	defer mo.store.runlock(ctx)
	o, ok := mo.store.orders[id]
	if !ok || o.UserID != userID {
		return nil, ErrNotFound
	}
	o.Items = slices.Clone(o.Items)
	return &o, nil
}

func (mo *MemoryOrders) ListByUser(ctx context.Context, userID string, pageSize int) iter.Seq2[models.Order, error] {
	return func(yield func(models.Order, error) bool) {
		mo.store.rlock(ctx)
		orders := make([]models.Order, 0)
		for _, o := range mo.store.orders {
			if o.UserID == userID {
				o.Items = slices.Clone(o.Items)
				orders = append(orders, o)
			}
		}
		mo.store.runlock(ctx)

		slices.SortFunc(orders, newestFirst)
		for _, o := range orders {
			if err := ctx.Err(); err != nil {
				yield(models.Order{}, err)
				return
			}
			if !yield(o, nil) {
				return
			}
		}
	}
}

func newestFirst(a, b models.Order) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(b.ID, a.ID)
}

// MemoryUsers implements UserRepository.
type MemoryUsers struct{ store *MemoryStore }

func NewMemoryUsers(store *MemoryStore) *MemoryUsers { return &MemoryUsers{store: store} }

var _ UserRepository = (*MemoryUsers)(nil)

func (us *MemoryUsers) Create(ctx context.Context, u *models.User) error {
	us.store.wlock(ctx)
	defer us.store.wunlock(ctx)
	for _, existing := range us.store.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrConflict
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	us.store.users[u.ID] = *u
	return nil
}

func (us *MemoryUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	us.store.rlock(ctx)
	defer us.store.runlock(ctx)
	for _, u := range us.store.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (us *MemoryUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	us.store.rlock(ctx)
	defer us.store.runlock(ctx)
	u, ok := us.store.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (us *MemoryUsers) UpdateRole(ctx context.Context, id, role string) error {
	us.store.wlock(ctx)
	defer us.store.wunlock(ctx)
	u, ok := us.store.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Role = role
	u.UpdatedAt = time.Now().UTC()
	us.store.users[id] = u
	return nil
}
