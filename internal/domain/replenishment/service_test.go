package replenishment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventario/internal/core/apperror"
	appctx "inventario/internal/core/context"
	"inventario/internal/core/entity"
	"inventario/internal/domain/catalogs/product"
	"inventario/internal/domain/ledger"
)

func TestPolicy_DefaultRule(t *testing.T) {
	p, err := NewPolicy("")
	require.NoError(t, err)

	tests := []struct {
		name              string
		current, min, max int64
		want              int64
	}{
		{"refill to max", 2, 10, 50, 48},
		{"no max orders min", 2, 10, 0, 10},
		{"at max orders min", 50, 10, 50, 10},
		{"never below one", 5, 0, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Quantity(tt.current, tt.min, tt.max)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPolicy_CustomAndInvalid(t *testing.T) {
	p, err := NewPolicy("min_stock * 2 - current_stock")
	require.NoError(t, err)
	got, err := p.Quantity(3, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(17), got)

	_, err = NewPolicy("current_stock >")
	assert.Error(t, err)

	_, err = NewPolicy("current_stock > 3")
	assert.ErrorContains(t, err, "must return int")
}

type products map[entity.ID]*product.Product

func (m products) GetByID(_ context.Context, id entity.ID) (*product.Product, error) {
	if p, ok := m[id]; ok {
		return p, nil
	}
	return nil, apperror.NewNotFound("product", id)
}

type captureNotifier struct{ got []Request }

func (c *captureNotifier) Notify(_ context.Context, r Request) error {
	c.got = append(c.got, r)
	return nil
}

func TestRequest_Notifies(t *testing.T) {
	p := &product.Product{ID: entity.NewID(), Code: "TOR-10", CurrentStock: 4, MinStock: 10, MaxStock: 30}
	policy, err := NewPolicy(DefaultRule)
	require.NoError(t, err)
	n := &captureNotifier{}
	svc := NewService(products{p.ID: p}, policy, n)

	ctx := appctx.WithUserID(context.Background(), "warehouse")
	req, err := svc.Request(ctx, p.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(26), req.Quantity)
	assert.Equal(t, "warehouse", req.RequestedBy)
	require.Len(t, n.got, 1)
	assert.Equal(t, "TOR-10", n.got[0].Code)

	_, err = svc.Request(ctx, entity.NewID())
	assert.True(t, apperror.IsNotFound(err))
	assert.Len(t, n.got, 1)
}

type lowStock []ledger.LowStockItem

func (l lowStock) LowStock(_ context.Context, limit int) ([]ledger.LowStockItem, error) {
	if len(l) > limit {
		return l[:limit], nil
	}
	return l, nil
}

func TestSweep_SkipsFailures(t *testing.T) {
	a := &product.Product{ID: entity.NewID(), Code: "A", CurrentStock: 2, MinStock: 10}
	b := &product.Product{ID: entity.NewID(), Code: "B", CurrentStock: 1, MinStock: 5, MaxStock: 20}
	policy, err := NewPolicy(DefaultRule)
	require.NoError(t, err)
	n := &captureNotifier{}
	svc := NewService(products{a.ID: a, b.ID: b}, policy, n)

	got, err := svc.Sweep(context.Background(), lowStock{
		{ProductID: a.ID, Code: "A"},
		{ProductID: entity.NewID(), Code: "GONE"},
		{ProductID: b.ID, Code: "B"},
	}, 10)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, int64(10), got[0].Quantity)
	assert.Equal(t, int64(19), got[1].Quantity)
	assert.Len(t, n.got, 2)
}
