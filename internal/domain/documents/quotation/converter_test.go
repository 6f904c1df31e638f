package quotation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventario/internal/core/apperror"
	appctx "inventario/internal/core/context"
	"inventario/internal/core/entity"
	"inventario/internal/core/numerator"
	"inventario/internal/domain/audit"
	"inventario/internal/domain/documents"
	"inventario/internal/domain/documents/dispatch"
	"inventario/internal/domain/documents/doctest"
)

var testNow = time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

type recorder struct {
	entries []audit.Entry
	failOn  audit.Action
}

func (r *recorder) Record(_ context.Context, e audit.Entry) error {
	if e.Action == r.failOn {
		return errors.New("audit store unavailable")
	}
	r.entries = append(r.entries, e)
	return nil
}

type env struct {
	quotes     *Service
	dispatches *dispatch.Service
	converter  *Converter
	qRepo      *doctest.Repository[*Quotation]
	dRepo      *doctest.Repository[*dispatch.DispatchNote]
	ledger     *doctest.Ledger
	audit      *recorder
}

func newEnv() *env {
	e := &env{
		qRepo:  doctest.NewRepository((*Quotation).Clone),
		dRepo:  doctest.NewRepository((*dispatch.DispatchNote).Clone),
		ledger: doctest.NewLedger(),
		audit:  &recorder{},
	}
	txm := &doctest.Tx{Stores: []doctest.Restorer{e.qRepo, e.dRepo, e.ledger}}
	gen := &numerator.MockGenerator{}
	now := func() time.Time { return testNow }

	e.quotes = NewService(documents.Config[*Quotation]{
		Repo: e.qRepo, TxManager: txm, Numerator: gen, Ledger: e.ledger, Audit: e.audit, Now: now,
	}, DefaultOptions())
	e.dispatches = dispatch.NewService(documents.Config[*dispatch.DispatchNote]{
		Repo: e.dRepo, TxManager: txm, Numerator: gen, Ledger: e.ledger, Prices: doctest.Prices{}, Audit: e.audit, Now: now,
	}, dispatch.DefaultOptions())
	e.converter = NewConverter(e.quotes, e.dispatches, txm, e.audit)
	return e
}

func (e *env) approved(t *testing.T, ctx context.Context) *Quotation {
	t.Helper()
	p1 := e.ledger.AddProduct(0)
	p2 := e.ledger.AddProduct(0)

	q := New()
	q.Client = "Ferretería Central"
	q.Lines = []entity.LineItem{
		{ProductID: p1, Quantity: 5, UnitPrice: decimal.RequireFromString("10.00")},
		{ProductID: p2, Quantity: 3, UnitPrice: decimal.Zero},
	}
	require.NoError(t, e.quotes.Create(ctx, q))
	_, err := e.quotes.Send(ctx, q.ID)
	require.NoError(t, err)
	got, err := e.quotes.Approve(ctx, q.ID)
	require.NoError(t, err)
	return got
}

func TestConvert_CopiesLinesAndLinks(t *testing.T) {
	e := newEnv()
	ctx := appctx.WithUserID(context.Background(), "seller-7")
	q := e.approved(t, ctx)

	ok, err := e.converter.CanConvert(ctx, q.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	note, err := e.converter.Convert(ctx, q.ID)
	require.NoError(t, err)

	assert.Equal(t, dispatch.StatusPending, note.Status)
	assert.Equal(t, "DES-2025-0001", note.Number)
	assert.Equal(t, q.Client, note.Client)
	assert.Equal(t, "Generated from quotation COT-2025-0001", note.Notes)
	assert.Equal(t, "seller-7", note.CreatedBy)
	require.Len(t, note.Lines, len(q.Lines))
	for i := range q.Lines {
		assert.Equal(t, q.Lines[i].ProductID, note.Lines[i].ProductID)
		assert.Equal(t, q.Lines[i].Quantity, note.Lines[i].Quantity)
		assert.True(t, q.Lines[i].UnitPrice.Equal(note.Lines[i].UnitPrice))
		assert.NotEqual(t, q.Lines[i].ID, note.Lines[i].ID)
	}
	assert.True(t, note.Total.Equal(q.Total))

	stored, _ := e.qRepo.Stored(q.ID)
	assert.Equal(t, StatusConverted, stored.Status)
	require.NotNil(t, stored.DispatchNoteID)
	assert.Equal(t, note.ID, *stored.DispatchNoteID)
	assert.NotNil(t, stored.DateSent)
	assert.NotNil(t, stored.DateApproved)

	last := e.audit.entries[len(e.audit.entries)-1]
	assert.Equal(t, audit.ActionConvert, last.Action)
	assert.Equal(t, "seller-7", last.UserID)
}

func TestConvert_SecondCallIsRejectedWithoutSideEffects(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	q := e.approved(t, ctx)

	_, err := e.converter.Convert(ctx, q.ID)
	require.NoError(t, err)

	note, err := e.converter.Convert(ctx, q.ID)
	assert.Nil(t, note)
	assert.True(t, apperror.HasCode(err, apperror.CodeConversionNotAllowed))
	assert.Equal(t, 1, e.dRepo.Len())

	ok, err := e.converter.CanConvert(ctx, q.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConvert_NotApproved(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	p := e.ledger.AddProduct(0)

	q := New()
	q.Client = "ACME"
	q.Lines = []entity.LineItem{{ProductID: p, Quantity: 1, UnitPrice: decimal.NewFromInt(1)}}
	require.NoError(t, e.quotes.Create(ctx, q))

	_, err := e.converter.Convert(ctx, q.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeConversionNotAllowed))
	assert.Zero(t, e.dRepo.Len())
}

func TestConvert_FailureRollsBackEverything(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	q := e.approved(t, ctx)
	e.audit.failOn = audit.ActionConvert

	_, err := e.converter.Convert(ctx, q.ID)
	require.Error(t, err)

	assert.Zero(t, e.dRepo.Len())
	stored, _ := e.qRepo.Stored(q.ID)
	assert.Equal(t, StatusApproved, stored.Status)
	assert.Nil(t, stored.DispatchNoteID)
}

func TestConvert_InternalEventHiddenFromCallers(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	q := e.approved(t, ctx)

	_, err := e.quotes.Transition(ctx, q.ID, EventConvert)
	assert.True(t, apperror.HasCode(err, apperror.CodeIllegalTransition))
	assert.Empty(t, e.quotes.AllowedEvents(q))
}
