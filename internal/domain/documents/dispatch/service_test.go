package dispatch

import (
	"context"
	"strings"
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
	"inventario/internal/domain/lifecycle"
)

type env struct {
	svc    *Service
	repo   *doctest.Repository[*DispatchNote]
	ledger *doctest.Ledger
	prices doctest.Prices
}

func newEnv(opts Options) *env {
	e := &env{
		repo:   doctest.NewRepository((*DispatchNote).Clone),
		ledger: doctest.NewLedger(),
		prices: doctest.Prices{},
	}
	e.svc = NewService(documents.Config[*DispatchNote]{
		Repo:      e.repo,
		TxManager: doctest.Passthrough{},
		Numerator: &numerator.MockGenerator{},
		Ledger:    e.ledger,
		Prices:    e.prices,
		Now:       func() time.Time { return time.Date(2025, 5, 2, 8, 0, 0, 0, time.UTC) },
	}, opts)
	return e
}

func (e *env) product(stock int64, price string) entity.ID {
	id := e.ledger.AddProduct(stock)
	e.prices[id] = decimal.RequireFromString(price)
	return id
}

func TestCreate_NumberingAndPriceDefault(t *testing.T) {
	e := newEnv(DefaultOptions())
	p := e.product(10, "4.50")
	ctx := context.Background()

	generated := New()
	generated.Lines = []entity.LineItem{{ProductID: p, Quantity: 2, Brand: "Acme", Model: "X1"}}
	require.NoError(t, e.svc.Create(ctx, generated))
	assert.Equal(t, "DES-2025-0001", generated.Number)
	assert.True(t, generated.Lines[0].UnitPrice.Equal(decimal.RequireFromString("4.50")))
	assert.True(t, generated.Total.Equal(decimal.NewFromInt(9)))
	assert.Equal(t, "Acme", generated.Lines[0].Brand)

	manual := New()
	manual.Number = "GUIA-0042"
	manual.Lines = []entity.LineItem{{ProductID: p, Quantity: 1, UnitPrice: decimal.NewFromInt(3)}}
	require.NoError(t, e.svc.Create(ctx, manual))
	assert.Equal(t, "GUIA-0042", manual.Number)
	assert.True(t, manual.Total.Equal(decimal.NewFromInt(3)))
}

func TestCreate_HeaderLengths(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(d *DispatchNote)
		wantField string
	}{
		{"number at column width", func(d *DispatchNote) { d.Number = strings.Repeat("9", MaxNumberLength) }, ""},
		{"number over column width", func(d *DispatchNote) { d.Number = strings.Repeat("9", MaxNumberLength+1) }, "number"},
		{"order number over width", func(d *DispatchNote) { d.OrderNumber = strings.Repeat("O", 51) }, "orderNumber"},
		{"license plate over width", func(d *DispatchNote) { d.LicensePlate = strings.Repeat("P", 21) }, "licensePlate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(DefaultOptions())
			p := e.product(5, "1")

			d := New()
			d.Lines = []entity.LineItem{{ProductID: p, Quantity: 1}}
			tt.mutate(d)
			err := e.svc.Create(context.Background(), d)

			if tt.wantField == "" {
				require.NoError(t, err)
				assert.Len(t, d.Number, MaxNumberLength)
				return
			}
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok, "got %v", err)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
			assert.Equal(t, tt.wantField, appErr.Details["field"])
			assert.Zero(t, e.repo.Creates)
		})
	}
}

func TestCreate_LineRejectedWithoutStock(t *testing.T) {
	e := newEnv(DefaultOptions())
	p := e.product(2, "1")

	d := New()
	d.Lines = []entity.LineItem{{ProductID: p, Quantity: 3}}
	err := e.svc.Create(context.Background(), d)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
	assert.Equal(t, int64(2), appErr.Details["available"])
	assert.Zero(t, e.repo.Creates)
}

func TestSaveItem_ChecksStock(t *testing.T) {
	e := newEnv(DefaultOptions())
	p := e.product(5, "1")
	ctx := context.Background()

	d := New()
	d.Lines = []entity.LineItem{{ProductID: p, Quantity: 4}}
	require.NoError(t, e.svc.Create(ctx, d))

	_, err := e.svc.SaveItem(ctx, d.ID, entity.LineItem{ProductID: p, Quantity: 2})
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))

	got, err := e.svc.SaveItem(ctx, d.ID, entity.LineItem{ProductID: p, Quantity: 1})
	require.NoError(t, err)
	assert.True(t, got.Total.Equal(decimal.NewFromInt(5)))
}

func TestDispatch_StockDecrementConfigurable(t *testing.T) {
	tests := []struct {
		name      string
		decrement bool
		wantStock int64
	}{
		{"default leaves stock", false, 10},
		{"decrement enabled", true, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.DecrementStock = tt.decrement
			e := newEnv(opts)
			p := e.product(10, "1")
			ctx := context.Background()

			d := New()
			d.Lines = []entity.LineItem{{ProductID: p, Quantity: 3}}
			require.NoError(t, e.svc.Create(ctx, d))

			got, err := e.svc.Dispatch(ctx, d.ID)
			require.NoError(t, err)
			assert.Equal(t, StatusDispatched, got.Status)
			assert.Equal(t, tt.wantStock, e.ledger.Stock(p))

			_, err = e.svc.Dispatch(ctx, d.ID)
			assert.True(t, apperror.HasCode(err, apperror.CodeIllegalTransition))
			assert.Equal(t, tt.wantStock, e.ledger.Stock(p))
		})
	}
}

func TestMachine_Events(t *testing.T) {
	m := NewMachine(false)
	assert.Equal(t, []lifecycle.Event{EventCancel, EventDispatch}, m.AllowedEvents(StatusPending))
	assert.True(t, m.IsTerminal(StatusCancelled))
	assert.True(t, m.IsTerminal(StatusDispatched))
}
