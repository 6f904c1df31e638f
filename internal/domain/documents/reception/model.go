// Package reception implements reception notes: goods received from a
// supplier enter stock when the note is received.
package reception

import (
	"context"
	"time"

	"inventario/internal/core/apperror"
	"inventario/internal/core/entity"
	"inventario/internal/core/numerator"
	"inventario/internal/domain/documents"
	"inventario/internal/domain/lifecycle"
)

const (
	StatusPending   entity.Status = "PENDING"
	StatusReceived  entity.Status = "RECEIVED"
	StatusCancelled entity.Status = "CANCELLED"
)

const (
	EventReceive lifecycle.Event = "receive"
	EventCancel  lifecycle.Event = "cancel"
)

// Machine is the reception lifecycle.
var Machine = lifecycle.New("reception note", StatusPending, StatusPending,
	lifecycle.Transition{
		From:    []entity.Status{StatusPending},
		Event:   EventReceive,
		To:      StatusReceived,
		Effects: []lifecycle.Effect{lifecycle.EffectStockIn},
	},
	lifecycle.Transition{
		From:  []entity.Status{StatusPending},
		Event: EventCancel,
		To:    StatusCancelled,
	},
)

// ReceptionNote records goods received from a supplier.
type ReceptionNote struct {
	entity.Document

	Supplier    string    `db:"supplier" json:"supplier,omitempty"`
	ReceiptDate time.Time `db:"receipt_date" json:"receiptDate"`

	Lines []entity.LineItem `db:"-" json:"lines"`
}

// New creates a reception note in its initial status.
func New() *ReceptionNote {
	return &ReceptionNote{Document: entity.NewDocument(StatusPending)}
}

func (r *ReceptionNote) Validate(_ context.Context) error {
	if len(r.Supplier) > 200 {
		return apperror.NewValidation("supplier is too long").WithDetail("field", "supplier")
	}
	return nil
}

func (r *ReceptionNote) LineItems() *[]entity.LineItem { return &r.Lines }

func (r *ReceptionNote) Clone() *ReceptionNote {
	out := *r
	out.Lines = documents.CloneLines(r.Lines)
	return &out
}

// Options are the configurable reception policies.
type Options struct {
	PriceRule entity.PriceRule
}

func DefaultOptions() Options {
	return Options{PriceRule: entity.PriceNonNegative}
}

// NewKind describes reception notes. Numbers restart every month
// (REC-2025-03-0001) and the period is the creation month.
func NewKind(opts Options) documents.Kind {
	if !opts.PriceRule.Valid() {
		opts.PriceRule = entity.PriceNonNegative
	}
	return documents.Kind{
		Type:      documents.TypeReceptionNote,
		Scheme:    numerator.NewScheme(string(documents.TypeReceptionNote), "REC", numerator.PeriodMonth),
		PriceRule: opts.PriceRule,
		Machine:   Machine,
	}
}

// Service manages reception notes.
type Service struct {
	*documents.Manager[*ReceptionNote]
}

func NewService(cfg documents.Config[*ReceptionNote], opts Options) *Service {
	cfg.Kind = NewKind(opts)
	m := documents.NewManager(cfg)
	m.Hooks().OnBeforeCreate(func(_ context.Context, r *ReceptionNote) error {
		if r.ReceiptDate.IsZero() {
			r.ReceiptDate = r.CreatedAt
		}
		return nil
	})
	return &Service{Manager: m}
}

// Receive books every line into stock.
func (s *Service) Receive(ctx context.Context, id entity.ID) (*ReceptionNote, error) {
	return s.Transition(ctx, id, EventReceive)
}

func (s *Service) Cancel(ctx context.Context, id entity.ID) (*ReceptionNote, error) {
	return s.Transition(ctx, id, EventCancel)
}

var _ documents.Doc = (*ReceptionNote)(nil)
