// Package returns implements return notes: goods coming back from a client,
// optionally against the dispatch note they left with.
package returns

import (
	"context"
	"time"

	"inventario/internal/core/apperror"
	"inventario/internal/core/entity"
	"inventario/internal/domain/documents"
)

// ReturnNote records goods returned by a client.
type ReturnNote struct {
	entity.Document

	DispatchNoteID *entity.ID `db:"dispatch_note_id" json:"dispatchNoteId,omitempty"`
	Client         string     `db:"client" json:"client,omitempty"`
	ReturnDate     time.Time  `db:"return_date" json:"returnDate"`
	Reason         string     `db:"reason" json:"reason,omitempty"`

	Lines []entity.LineItem `db:"-" json:"lines"`
}

// New creates a return note in its initial status.
func New() *ReturnNote {
	return &ReturnNote{Document: entity.NewDocument(StatusPending)}
}

func (r *ReturnNote) Validate(_ context.Context) error {
	if len(r.Reason) > 500 {
		return apperror.NewValidation("reason is too long").WithDetail("field", "reason")
	}
	return nil
}

func (r *ReturnNote) LineItems() *[]entity.LineItem { return &r.Lines }

func (r *ReturnNote) Clone() *ReturnNote {
	out := *r
	out.Lines = documents.CloneLines(r.Lines)
	if r.DispatchNoteID != nil {
		id := *r.DispatchNoteID
		out.DispatchNoteID = &id
	}
	return &out
}

var _ documents.Doc = (*ReturnNote)(nil)
