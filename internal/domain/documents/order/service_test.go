package order

import (
	"context"
	"sync"
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
)

var testNow = time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)

func newTestService(opts Options) (*Service, *doctest.Repository[*Order], *doctest.Ledger) {
	repo := doctest.NewRepository((*Order).Clone)
	ledger := doctest.NewLedger()
	svc := NewService(documents.Config[*Order]{
		Repo:      repo,
		TxManager: doctest.Passthrough{},
		Numerator: &numerator.MockGenerator{},
		Ledger:    ledger,
		Now:       func() time.Time { return testNow },
	}, opts)
	return svc, repo, ledger
}

func item(p entity.ID, qty int64, price string) entity.LineItem {
	return entity.LineItem{ProductID: p, Quantity: qty, UnitPrice: decimal.RequireFromString(price)}
}

func TestCreate_FirstOrdersOfYear(t *testing.T) {
	svc, _, ledger := newTestService(DefaultOptions())
	p := ledger.AddProduct(0)
	ctx := context.Background()

	first := New()
	first.Lines = []entity.LineItem{item(p, 1, "5")}
	require.NoError(t, svc.Create(ctx, first))

	second := New()
	second.Lines = []entity.LineItem{item(p, 1, "5")}
	require.NoError(t, svc.Create(ctx, second))

	assert.Equal(t, "ORD-2025-0001", first.Number)
	assert.Equal(t, "ORD-2025-0002", second.Number)
	assert.Equal(t, testNow, first.OrderDate)
	assert.Equal(t, StatusPending, first.Status)
}

func TestCreate_PriceMustBePositive(t *testing.T) {
	svc, repo, ledger := newTestService(DefaultOptions())
	p := ledger.AddProduct(0)

	o := New()
	o.Lines = []entity.LineItem{item(p, 1, "0")}
	err := svc.Create(context.Background(), o)

	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidPrice))
	assert.Zero(t, repo.Creates)
}

func TestCreate_DeliveryDateInPast(t *testing.T) {
	svc, _, ledger := newTestService(DefaultOptions())
	p := ledger.AddProduct(0)

	yesterday := testNow.AddDate(0, 0, -1)
	o := New()
	o.DeliveryDate = &yesterday
	o.Lines = []entity.LineItem{item(p, 1, "1")}

	err := svc.Create(context.Background(), o)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestLifecycle_DeliverIncrementsStockOnce(t *testing.T) {
	svc, _, ledger := newTestService(DefaultOptions())
	p := ledger.AddProduct(2)
	ctx := context.Background()

	o := New()
	o.Lines = []entity.LineItem{item(p, 8, "1.10")}
	require.NoError(t, svc.Create(ctx, o))

	_, err := svc.Deliver(ctx, o.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeIllegalTransition))

	_, err = svc.Approve(ctx, o.ID)
	require.NoError(t, err)
	got, err := svc.Deliver(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, got.Status)
	assert.Equal(t, int64(10), ledger.Stock(p))

	_, err = svc.Cancel(ctx, o.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeIllegalTransition))
	assert.Empty(t, svc.AllowedEvents(got))
}

func TestLifecycle_CancelFromApproved(t *testing.T) {
	svc, _, ledger := newTestService(DefaultOptions())
	p := ledger.AddProduct(0)
	ctx := context.Background()

	o := New()
	o.Lines = []entity.LineItem{item(p, 1, "1")}
	require.NoError(t, svc.Create(ctx, o))
	_, err := svc.Approve(ctx, o.ID)
	require.NoError(t, err)

	got, err := svc.Cancel(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
	assert.Zero(t, ledger.Posts)
}

func TestCreate_ConcurrentNumbersUnique(t *testing.T) {
	svc, _, ledger := newTestService(DefaultOptions())
	p := ledger.AddProduct(0)

	const n = 25
	numbers := make(chan string, n)
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o := New()
			o.Lines = []entity.LineItem{item(p, 1, "1")}
			if err := svc.Create(context.Background(), o); err == nil {
				numbers <- o.Number
			}
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]bool)
	for num := range numbers {
		assert.False(t, seen[num], num)
		seen[num] = true
	}
	assert.Len(t, seen, n)
	assert.True(t, seen["ORD-2025-0025"])
}
