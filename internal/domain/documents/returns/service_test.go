package returns

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
	"inventario/internal/domain/documents/dispatch"
	"inventario/internal/domain/documents/doctest"
)

type dispatchStub map[entity.ID]*dispatch.DispatchNote

func (s dispatchStub) Get(_ context.Context, id entity.ID) (*dispatch.DispatchNote, error) {
	if d, ok := s[id]; ok {
		return d, nil
	}
	return nil, apperror.NewNotFound("dispatch note", id)
}

func setup() (*Service, *doctest.Ledger, dispatchStub) {
	l := doctest.NewLedger()
	stub := dispatchStub{}
	svc := NewService(documents.Config[*ReturnNote]{
		Repo:      doctest.NewRepository((*ReturnNote).Clone),
		TxManager: doctest.Passthrough{},
		Numerator: &numerator.MockGenerator{},
		Ledger:    l,
		Now:       func() time.Time { return time.Date(2025, 9, 9, 0, 0, 0, 0, time.UTC) },
	}, stub, DefaultOptions())
	return svc, l, stub
}

func TestCreate_ClientFromDispatchNote(t *testing.T) {
	svc, l, stub := setup()
	p := l.AddProduct(0)

	note := dispatch.New()
	note.Client = "Constructora Sur"
	stub[note.ID] = note

	r := New()
	r.DispatchNoteID = &note.ID
	r.Reason = "damaged"
	r.Lines = []entity.LineItem{{ProductID: p, Quantity: 2, UnitPrice: decimal.NewFromInt(3)}}
	require.NoError(t, svc.Create(context.Background(), r))

	assert.Equal(t, "DEV-2025-0001", r.Number)
	assert.Equal(t, "Constructora Sur", r.Client)

	explicit := New()
	explicit.DispatchNoteID = &note.ID
	explicit.Client = "Other"
	explicit.Lines = []entity.LineItem{{ProductID: p, Quantity: 1}}
	require.NoError(t, svc.Create(context.Background(), explicit))
	assert.Equal(t, "Other", explicit.Client)
}

func TestCreate_UnknownDispatchNote(t *testing.T) {
	svc, l, _ := setup()
	p := l.AddProduct(0)

	missing := entity.NewID()
	r := New()
	r.DispatchNoteID = &missing
	r.Lines = []entity.LineItem{{ProductID: p, Quantity: 1}}

	err := svc.Create(context.Background(), r)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestProcess_RestocksOnce(t *testing.T) {
	svc, l, _ := setup()
	p := l.AddProduct(3)
	ctx := context.Background()

	r := New()
	r.Lines = []entity.LineItem{{ProductID: p, Quantity: 4}}
	require.NoError(t, svc.Create(ctx, r))

	got, err := svc.Process(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusReturned, got.Status)

	_, err = svc.Process(ctx, r.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeIllegalTransition))
	_, err = svc.Cancel(ctx, r.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeIllegalTransition))
	assert.Equal(t, int64(7), l.Stock(p))
}
