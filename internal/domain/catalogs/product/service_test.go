package product

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventario/internal/core/apperror"
	"inventario/internal/core/entity"
	"inventario/internal/core/tx"
	"inventario/internal/domain"
)

type memRepo struct {
	mu    sync.Mutex
	items map[entity.ID]Product
}

func newMemRepo() *memRepo { return &memRepo{items: make(map[entity.ID]Product)} }

func (r *memRepo) Create(_ context.Context, p *Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[p.ID] = *p
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id entity.ID) (*Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return nil, apperror.NewNotFound("product", id)
	}
	return &p, nil
}

func (r *memRepo) GetByCode(_ context.Context, code string) (*Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.items {
		if p.Code == code {
			return &p, nil
		}
	}
	return nil, apperror.NewNotFound("product", code)
}

func (r *memRepo) Update(_ context.Context, p *Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.items[p.ID]
	if !ok {
		return apperror.NewNotFound("product", p.ID)
	}
	if cur.Version != p.Version {
		return apperror.NewConcurrentModification("product", p.ID)
	}
	p.Version++
	p.CurrentStock = cur.CurrentStock
	r.items[p.ID] = *p
	return nil
}

func (r *memRepo) List(_ context.Context, f ListFilter) (domain.ListResult[*Product], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := domain.ListResult[*Product]{Limit: f.Limit, Offset: f.Offset}
	for _, p := range r.items {
		p := p
		res.Items = append(res.Items, &p)
	}
	res.TotalCount = int64(len(res.Items))
	return res, nil
}

func passthroughTx() tx.Manager {
	return tx.ManagerFunc(func(ctx context.Context, fn func(ctx context.Context) error) error {
		return fn(ctx)
	})
}

func TestService_CreateRejectsDuplicateCode(t *testing.T) {
	svc := NewService(newMemRepo(), passthroughTx())
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, NewProduct("P-001", "Guantes de nitrilo", decimal.NewFromInt(5))))

	err := svc.Create(ctx, NewProduct("P-001", "Duplicado", decimal.NewFromInt(1)))
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate), "got %v", err)
}

func TestService_CreateValidates(t *testing.T) {
	svc := NewService(newMemRepo(), passthroughTx())

	tests := []struct {
		name  string
		mut   func(p *Product)
		field string
	}{
		{"missing code", func(p *Product) { p.Code = "  " }, "code"},
		{"missing description", func(p *Product) { p.Description = "" }, "description"},
		{"negative price", func(p *Product) { p.UnitPrice = decimal.NewFromInt(-1) }, "unitPrice"},
		{"price below cent", func(p *Product) { p.UnitPrice = decimal.RequireFromString("0.125") }, "unitPrice"},
		{"negative stock", func(p *Product) { p.CurrentStock = -1 }, "currentStock"},
		{"max below min", func(p *Product) { p.MinStock, p.MaxStock = 10, 5 }, "maxStock"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProduct("X-1", "Item", decimal.NewFromInt(1))
			tt.mut(p)
			err := svc.Create(context.Background(), p)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok, "expected AppError, got %v", err)
			assert.Equal(t, tt.field, appErr.Details["field"])
		})
	}
}

func TestService_UpdateKeepsStock(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, passthroughTx())
	ctx := context.Background()

	p := NewProduct("P-002", "Casco", decimal.NewFromInt(20))
	p.CurrentStock = 12
	require.NoError(t, svc.Create(ctx, p))

	edit := *p
	edit.CurrentStock = 999
	edit.UnitPrice = decimal.NewFromInt(25)
	require.NoError(t, svc.Update(ctx, &edit))

	stored, err := svc.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(12), stored.CurrentStock)
	assert.True(t, stored.UnitPrice.Equal(decimal.NewFromInt(25)))
}

func TestService_GetPrice(t *testing.T) {
	svc := NewService(newMemRepo(), passthroughTx())
	ctx := context.Background()

	p := NewProduct("P-003", "Botas", decimal.RequireFromString("49.90"))
	p.Unit = "PAR"
	require.NoError(t, svc.Create(ctx, p))

	price, err := svc.GetPrice(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "PAR", price.Unit)
	assert.Equal(t, "P-003", price.Code)
	assert.True(t, price.UnitPrice.Equal(decimal.RequireFromString("49.90")))

	_, err = svc.GetPrice(ctx, entity.NewID())
	assert.True(t, apperror.IsNotFound(err))
}

func TestProduct_IsLowStockStrict(t *testing.T) {
	p := &Product{CurrentStock: 10, MinStock: 10}
	assert.False(t, p.IsLowStock())
	p.CurrentStock = 9
	assert.True(t, p.IsLowStock())
}
