package returns

import (
	"context"
	"fmt"

	"inventario/internal/core/apperror"
	"inventario/internal/core/entity"
	"inventario/internal/core/numerator"
	"inventario/internal/domain/documents"
	"inventario/internal/domain/documents/dispatch"
	"inventario/internal/domain/lifecycle"
)

const (
	StatusPending   entity.Status = "PENDING"
	StatusReturned  entity.Status = "RETURNED"
	StatusCancelled entity.Status = "CANCELLED"
)

const (
	EventProcess lifecycle.Event = "process"
	EventCancel  lifecycle.Event = "cancel"
)

// Machine is the return lifecycle. Processing puts every line back into stock.
var Machine = lifecycle.New("return note", StatusPending, StatusPending,
	lifecycle.Transition{
		From:    []entity.Status{StatusPending},
		Event:   EventProcess,
		To:      StatusReturned,
		Effects: []lifecycle.Effect{lifecycle.EffectStockIn},
	},
	lifecycle.Transition{
		From:  []entity.Status{StatusPending},
		Event: EventCancel,
		To:    StatusCancelled,
	},
)

// Options are the configurable return policies.
type Options struct {
	PriceRule entity.PriceRule
}

func DefaultOptions() Options {
	return Options{PriceRule: entity.PriceNonNegative}
}

func NewKind(opts Options) documents.Kind {
	if !opts.PriceRule.Valid() {
		opts.PriceRule = entity.PriceNonNegative
	}
	return documents.Kind{
		Type:      documents.TypeReturnNote,
		Scheme:    numerator.NewScheme(string(documents.TypeReturnNote), "DEV", numerator.PeriodYear),
		PriceRule: opts.PriceRule,
		Machine:   Machine,
	}
}

// DispatchLookup loads the dispatch note a return refers to.
type DispatchLookup interface {
	Get(ctx context.Context, id entity.ID) (*dispatch.DispatchNote, error)
}

// Service manages return notes.
type Service struct {
	*documents.Manager[*ReturnNote]
	dispatches DispatchLookup
}

// NewService wires the return manager. A referenced dispatch note must
// exist and supplies the client when none is given.
func NewService(cfg documents.Config[*ReturnNote], dispatches DispatchLookup, opts Options) *Service {
	cfg.Kind = NewKind(opts)
	s := &Service{
		Manager:    documents.NewManager(cfg),
		dispatches: dispatches,
	}
	s.Hooks().OnBeforeCreate(s.fillFromDispatch)
	s.Hooks().OnBeforeUpdate(s.fillFromDispatch)
	return s
}

func (s *Service) fillFromDispatch(ctx context.Context, r *ReturnNote) error {
	if r.ReturnDate.IsZero() {
		r.ReturnDate = r.CreatedAt
	}
	if r.DispatchNoteID == nil || s.dispatches == nil {
		return nil
	}
	note, err := s.dispatches.Get(ctx, *r.DispatchNoteID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewValidation("dispatch note does not exist").
				WithDetail("field", "dispatchNoteId")
		}
		return fmt.Errorf("load dispatch note: %w", err)
	}
	if r.Client == "" {
		r.Client = note.Client
	}
	return nil
}

// Process books the returned goods back into stock.
func (s *Service) Process(ctx context.Context, id entity.ID) (*ReturnNote, error) {
	return s.Transition(ctx, id, EventProcess)
}

func (s *Service) Cancel(ctx context.Context, id entity.ID) (*ReturnNote, error) {
	return s.Transition(ctx, id, EventCancel)
}
