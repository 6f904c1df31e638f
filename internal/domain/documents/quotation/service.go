package quotation

import (
	"context"

	"inventario/internal/core/entity"
	"inventario/internal/domain/documents"
)

// Service manages quotations.
type Service struct {
	*documents.Manager[*Quotation]
}

// NewService wires the quotation manager. cfg.Kind is derived from opts.
func NewService(cfg documents.Config[*Quotation], opts Options) *Service {
	cfg.Kind = NewKind(opts)
	m := documents.NewManager(cfg)

	// Conversion links are never taken from input.
	m.Hooks().OnBeforeCreate(func(_ context.Context, q *Quotation) error {
		q.DateSent = nil
		q.DateApproved = nil
		q.DispatchNoteID = nil
		return nil
	})

	return &Service{Manager: m}
}

// Send moves a draft to SENT and stamps the send date.
func (s *Service) Send(ctx context.Context, id entity.ID) (*Quotation, error) {
	return s.Transition(ctx, id, EventSend)
}

// Approve moves a sent quotation to APPROVED and stamps the approval date.
func (s *Service) Approve(ctx context.Context, id entity.ID) (*Quotation, error) {
	return s.Transition(ctx, id, EventApprove)
}

// Reject moves a sent quotation to REJECTED.
func (s *Service) Reject(ctx context.Context, id entity.ID) (*Quotation, error) {
	return s.Transition(ctx, id, EventReject)
}
