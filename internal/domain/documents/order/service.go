package order

import (
	"context"

	"inventario/internal/core/entity"
	"inventario/internal/domain/documents"
)

// Service manages orders.
type Service struct {
	*documents.Manager[*Order]
}

// NewService wires the order manager. cfg.Kind is derived from opts.
func NewService(cfg documents.Config[*Order], opts Options) *Service {
	cfg.Kind = NewKind(opts)
	m := documents.NewManager(cfg)

	m.Hooks().OnBeforeCreate(func(_ context.Context, o *Order) error {
		if o.OrderDate.IsZero() {
			o.OrderDate = o.CreatedAt
		}
		return nil
	})

	return &Service{Manager: m}
}

// Approve moves a pending order to APPROVED.
func (s *Service) Approve(ctx context.Context, id entity.ID) (*Order, error) {
	return s.Transition(ctx, id, EventApprove)
}

// Deliver receives an approved order and increments stock for every line.
func (s *Service) Deliver(ctx context.Context, id entity.ID) (*Order, error) {
	return s.Transition(ctx, id, EventDeliver)
}

// Cancel cancels a pending or approved order.
func (s *Service) Cancel(ctx context.Context, id entity.ID) (*Order, error) {
	return s.Transition(ctx, id, EventCancel)
}
