package reception

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventario/internal/core/apperror"
	"inventario/internal/core/entity"
	"inventario/internal/core/numerator"
	"inventario/internal/domain/documents"
	"inventario/internal/domain/documents/doctest"
	"inventario/internal/domain/ledger"
)

func newService(now time.Time) (*Service, *doctest.Ledger) {
	l := doctest.NewLedger()
	svc := NewService(documents.Config[*ReceptionNote]{
		Repo:      doctest.NewRepository((*ReceptionNote).Clone),
		TxManager: doctest.Passthrough{},
		Numerator: &numerator.MockGenerator{},
		Ledger:    l,
		Now:       func() time.Time { return now },
	}, DefaultOptions())
	return svc, l
}

func TestReceive_TotalAndSingleIncrement(t *testing.T) {
	svc, l := newService(time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC))
	p1 := l.AddProduct(0)
	p2 := l.AddProduct(4)
	ctx := context.Background()

	r := New()
	r.Supplier = "Distribuidora Norte"
	r.Lines = []entity.LineItem{
		{ProductID: p1, Quantity: 5, UnitPrice: decimal.NewFromInt(10)},
		{ProductID: p2, Quantity: 3, UnitPrice: decimal.NewFromInt(2)},
	}
	require.NoError(t, svc.Create(ctx, r))

	assert.Equal(t, "REC-2025-03-0001", r.Number)
	assert.True(t, r.Total.Equal(decimal.NewFromInt(56)))
	assert.True(t, r.Lines[0].Subtotal.Equal(decimal.NewFromInt(50)))

	got, err := svc.Receive(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusReceived, got.Status)

	_, err = svc.Receive(ctx, r.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeIllegalTransition))

	assert.Equal(t, int64(5), l.Stock(p1))
	assert.Equal(t, int64(7), l.Stock(p2))
	require.Len(t, l.Movements, 2)
	for _, mv := range l.Movements {
		assert.Equal(t, ledger.DirectionIn, mv.Direction)
		assert.Equal(t, string(documents.TypeReceptionNote), mv.DocumentType)
	}
}

func TestCreate_MonthlyNumbering(t *testing.T) {
	svc, l := newService(time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC))
	p := l.AddProduct(0)

	r := New()
	r.Lines = []entity.LineItem{{ProductID: p, Quantity: 1, UnitPrice: decimal.Zero}}
	require.NoError(t, svc.Create(context.Background(), r))

	assert.Equal(t, "REC-2025-11-0001", r.Number)
	assert.Equal(t, time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC), r.ReceiptDate)
}

func TestCancel_NoStockEffect(t *testing.T) {
	svc, l := newService(time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC))
	p := l.AddProduct(1)
	ctx := context.Background()

	r := New()
	r.Lines = []entity.LineItem{{ProductID: p, Quantity: 9, UnitPrice: decimal.NewFromInt(1)}}
	require.NoError(t, svc.Create(ctx, r))

	_, err := svc.Cancel(ctx, r.ID)
	require.NoError(t, err)
	_, err = svc.Receive(ctx, r.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeIllegalTransition))
	assert.Equal(t, int64(1), l.Stock(p))
}
