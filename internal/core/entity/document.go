package entity

import (
	"github.com/shopspring/decimal"
)

// Status is a document lifecycle state.
type Status string

// Document is the header shared by orders, quotations, dispatch notes,
// reception notes and return notes.
type Document struct {
	BaseDocument

	// Number is assigned once, inside the creating transaction, and never changes.
	Number string `db:"number" json:"number"`

	Status Status `db:"status" json:"status"`

	// Total is always the sum of line subtotals.
	Total decimal.Decimal `db:"total" json:"total"`

	Notes string `db:"notes" json:"notes,omitempty"`
}

// NewDocument creates a header in the given initial status.
func NewDocument(initial Status) Document {
	return Document{
		BaseDocument: NewBaseDocument(),
		Status:       initial,
		Total:        decimal.Zero,
	}
}

// Header gives generic code access to the embedded header.
func (d *Document) Header() *Document {
	return d
}
