package dispatch

import (
	"context"

	"inventario/internal/core/entity"
	"inventario/internal/domain/documents"
)

// Service manages dispatch notes.
type Service struct {
	*documents.Manager[*DispatchNote]
}

// NewService wires the dispatch manager. cfg.Kind is derived from opts and
// cfg.Prices must be set.
func NewService(cfg documents.Config[*DispatchNote], opts Options) *Service {
	cfg.Kind = NewKind(opts)
	m := documents.NewManager(cfg)

	m.Hooks().OnBeforeCreate(func(_ context.Context, d *DispatchNote) error {
		if d.DispatchDate.IsZero() {
			d.DispatchDate = d.CreatedAt
		}
		return nil
	})

	return &Service{Manager: m}
}

// Dispatch marks a pending note as dispatched.
func (s *Service) Dispatch(ctx context.Context, id entity.ID) (*DispatchNote, error) {
	return s.Transition(ctx, id, EventDispatch)
}

// Cancel cancels a pending note.
func (s *Service) Cancel(ctx context.Context, id entity.ID) (*DispatchNote, error) {
	return s.Transition(ctx, id, EventCancel)
}
