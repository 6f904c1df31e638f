// Package quotation implements client quotations and their conversion into
// dispatch notes.
package quotation

import (
	"context"
	"strings"
	"time"

	"inventario/internal/core/apperror"
	"inventario/internal/core/entity"
	"inventario/internal/domain/documents"
	"inventario/internal/domain/lifecycle"
)

// Quotation is a price offer to a client.
type Quotation struct {
	entity.Document

	Client     string     `db:"client" json:"client"`
	ValidUntil *time.Time `db:"valid_until" json:"validUntil,omitempty"`

	// Set by the lifecycle, never by callers.
	DateSent       *time.Time `db:"date_sent" json:"dateSent,omitempty"`
	DateApproved   *time.Time `db:"date_approved" json:"dateApproved,omitempty"`
	DispatchNoteID *entity.ID `db:"dispatch_note_id" json:"dispatchNoteId,omitempty"`

	Lines []entity.LineItem `db:"-" json:"lines"`
}

// New creates a quotation in DRAFT.
func New() *Quotation {
	return &Quotation{Document: entity.NewDocument(StatusDraft)}
}

// Validate checks header fields.
func (q *Quotation) Validate(_ context.Context) error {
	if strings.TrimSpace(q.Client) == "" {
		return apperror.NewValidation("client is required").WithDetail("field", "client")
	}
	return nil
}

// ValidateCreate rejects a validity date in the past.
func (q *Quotation) ValidateCreate(_ context.Context, now time.Time) error {
	return documents.CheckNotPast("validUntil", q.ValidUntil, now)
}

// ApplyEffect stamps the send and approval moments.
func (q *Quotation) ApplyEffect(effect lifecycle.Effect, at time.Time) {
	switch effect {
	case lifecycle.EffectStampSent:
		q.DateSent = &at
	case lifecycle.EffectStampApproved:
		q.DateApproved = &at
	}
}

// KeepSystemFields carries lifecycle-owned fields over a caller update.
func (q *Quotation) KeepSystemFields(stored documents.Doc) {
	if s, ok := stored.(*Quotation); ok {
		q.DateSent = s.DateSent
		q.DateApproved = s.DateApproved
		q.DispatchNoteID = s.DispatchNoteID
	}
}

// CanConvert reports whether the quotation may become a dispatch note:
// it is approved and not yet linked to one.
func (q *Quotation) CanConvert() bool {
	return q.DispatchNoteID == nil && Machine.CanFire(q.Status, EventConvert)
}

// LineItems implements documents.Doc.
func (q *Quotation) LineItems() *[]entity.LineItem { return &q.Lines }

// Clone returns a deep copy.
func (q *Quotation) Clone() *Quotation {
	out := *q
	out.Lines = documents.CloneLines(q.Lines)
	out.ValidUntil = cloneTime(q.ValidUntil)
	out.DateSent = cloneTime(q.DateSent)
	out.DateApproved = cloneTime(q.DateApproved)
	if q.DispatchNoteID != nil {
		id := *q.DispatchNoteID
		out.DispatchNoteID = &id
	}
	return &out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

var (
	_ documents.Doc               = (*Quotation)(nil)
	_ documents.CreateValidator   = (*Quotation)(nil)
	_ documents.EffectApplier     = (*Quotation)(nil)
	_ documents.SystemFieldKeeper = (*Quotation)(nil)
)
