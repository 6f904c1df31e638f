// Package doctest provides in-memory collaborators for document engine tests.
package doctest

import (
	"context"
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"inventario/internal/core/apperror"
	"inventario/internal/core/entity"
	"inventario/internal/domain"
	"inventario/internal/domain/documents"
	"inventario/internal/domain/ledger"
)

// Passthrough runs fn directly without a transaction.
type Passthrough struct{}

// RunInTransaction implements tx.Manager.
func (Passthrough) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Restorer is a store whose state can be captured and put back.
type Restorer interface {
	Snapshot() (restore func())
}

type txKey struct{}

// Tx snapshots Stores before the outermost call and restores them all when
// fn fails. Nested calls join the outer one. Not for concurrent use.
type Tx struct {
	Stores []Restorer
}

// RunInTransaction implements tx.Manager.
func (t *Tx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	restores := make([]func(), 0, len(t.Stores))
	for _, s := range t.Stores {
		restores = append(restores, s.Snapshot())
	}
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}
	return nil
}

// Repository is a map-backed documents.Repository. Stored values are cloned
// on the way in and out so callers never share memory with the store.
type Repository[T documents.Doc] struct {
	mu    sync.Mutex
	clone func(T) T
	docs  map[entity.ID]T
	order []entity.ID

	// Creates counts successful inserts.
	Creates int
}

// NewRepository creates an empty repository.
func NewRepository[T documents.Doc](clone func(T) T) *Repository[T] {
	return &Repository[T]{clone: clone, docs: make(map[entity.ID]T)}
}

func (r *Repository[T]) Create(_ context.Context, doc T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := doc.Header()
	for _, stored := range r.docs {
		if stored.Header().Number == h.Number {
			return apperror.NewDuplicate("document", "number", h.Number)
		}
	}
	r.docs[h.ID] = r.clone(doc)
	r.order = append(r.order, h.ID)
	r.Creates++
	return nil
}

func (r *Repository[T]) GetByID(_ context.Context, id entity.ID) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		var zero T
		return zero, apperror.NewNotFound("document", id)
	}
	return r.clone(doc), nil
}

func (r *Repository[T]) GetForUpdate(ctx context.Context, id entity.ID) (T, error) {
	return r.GetByID(ctx, id)
}

func (r *Repository[T]) Update(_ context.Context, doc T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := doc.Header()
	stored, ok := r.docs[h.ID]
	if !ok {
		return apperror.NewNotFound("document", h.ID)
	}
	if stored.Header().Version != h.Version {
		return apperror.NewConcurrentModification("document", h.ID)
	}
	h.Version++
	next := r.clone(doc)
	*next.LineItems() = slices.Clone(*stored.LineItems())
	r.docs[h.ID] = next
	return nil
}

func (r *Repository[T]) ReplaceLines(_ context.Context, id entity.ID, lines []entity.LineItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.docs[id]
	if !ok {
		return apperror.NewNotFound("document", id)
	}
	*stored.LineItems() = slices.Clone(lines)
	return nil
}

func (r *Repository[T]) Delete(_ context.Context, id entity.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; !ok {
		return apperror.NewNotFound("document", id)
	}
	delete(r.docs, id)
	r.order = slices.DeleteFunc(r.order, func(x entity.ID) bool { return x == id })
	return nil
}

func (r *Repository[T]) List(_ context.Context, filter documents.ListFilter) (domain.ListResult[T], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []T
	for _, id := range r.order {
		doc := r.docs[id]
		if len(filter.Status) > 0 && !slices.Contains(filter.Status, doc.Header().Status) {
			continue
		}
		items = append(items, r.clone(doc))
	}
	total := int64(len(items))
	if filter.Offset < len(items) {
		items = items[filter.Offset:]
	} else {
		items = nil
	}
	if filter.Limit > 0 && len(items) > filter.Limit {
		items = items[:filter.Limit]
	}
	return domain.ListResult[T]{Items: items, TotalCount: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

// Snapshot implements Restorer.
func (r *Repository[T]) Snapshot() func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	docs := make(map[entity.ID]T, len(r.docs))
	for id, doc := range r.docs {
		docs[id] = r.clone(doc)
	}
	order := slices.Clone(r.order)
	creates := r.Creates
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.docs, r.order, r.Creates = docs, order, creates
	}
}

// Len returns the number of stored documents.
func (r *Repository[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.docs)
}

// Stored returns the persisted copy of id.
func (r *Repository[T]) Stored(id entity.ID) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return doc, false
	}
	return r.clone(doc), true
}

// Ledger is an in-memory stock ledger. Post applies all movements or none.
type Ledger struct {
	mu        sync.Mutex
	stock     map[entity.ID]int64
	Movements []ledger.Movement
	Posts     int
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{stock: make(map[entity.ID]int64)}
}

// AddProduct registers a product with its starting stock.
func (l *Ledger) AddProduct(stock int64) entity.ID {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := entity.NewID()
	l.stock[id] = stock
	return id
}

// Stock returns the current stock of id.
func (l *Ledger) Stock(id entity.ID) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stock[id]
}

// Snapshot implements Restorer.
func (l *Ledger) Snapshot() func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	stock := make(map[entity.ID]int64, len(l.stock))
	for id, v := range l.stock {
		stock[id] = v
	}
	movements := slices.Clone(l.Movements)
	posts := l.Posts
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.stock, l.Movements, l.Posts = stock, movements, posts
	}
}

func (l *Ledger) Post(_ context.Context, movements []ledger.Movement) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := make(map[entity.ID]int64, len(movements))
	for _, m := range movements {
		current, ok := next[m.ProductID]
		if !ok {
			current, ok = l.stock[m.ProductID]
			if !ok {
				return apperror.NewNotFound("product", m.ProductID)
			}
		}
		if current+m.Delta() < 0 {
			return apperror.NewInsufficientStock(m.ProductID.String(), m.Quantity, current)
		}
		next[m.ProductID] = current + m.Delta()
	}
	for id, v := range next {
		l.stock[id] = v
	}
	l.Movements = append(l.Movements, movements...)
	l.Posts++
	return nil
}

func (l *Ledger) CheckAvailable(_ context.Context, productID entity.ID, requested int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	available, ok := l.stock[productID]
	if !ok {
		return apperror.NewNotFound("product", productID)
	}
	if available < requested {
		return apperror.NewInsufficientStock(productID.String(), requested, available)
	}
	return nil
}

// Prices is a fixed price list.
type Prices map[entity.ID]decimal.Decimal

func (p Prices) UnitPrice(_ context.Context, productID entity.ID) (decimal.Decimal, error) {
	price, ok := p[productID]
	if !ok {
		return decimal.Zero, apperror.NewNotFound("product", productID)
	}
	return price, nil
}

var (
	_ Restorer              = (*Ledger)(nil)
	_ documents.Ledger      = (*Ledger)(nil)
	_ documents.PriceSource = Prices(nil)
)
