// Package documents is the engine shared by every commercial document:
// numbering at first persistence, line validation and totals, the editable
// guard, and lifecycle transitions with their stock effects.
package documents

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"inventario/internal/core/entity"
	"inventario/internal/core/numerator"
	"inventario/internal/domain/ledger"
	"inventario/internal/domain/lifecycle"
)

// Type identifies a document type. It scopes numbering and is stored on movements.
type Type string

const (
	TypeOrder         Type = "order"
	TypeQuotation     Type = "quotation"
	TypeDispatchNote  Type = "dispatch_note"
	TypeReceptionNote Type = "reception_note"
	TypeReturnNote    Type = "return_note"
)

// Kind is the static description of one document type.
type Kind struct {
	Type Type

	// Scheme formats numbers; used only when the caller supplied none or
	// CallerNumbers is false.
	Scheme numerator.Scheme

	// CallerNumbers keeps a number provided on create (dispatch notes).
	CallerNumbers bool

	PriceRule entity.PriceRule

	Machine *lifecycle.Machine

	// CheckStock validates every line against current stock when saved.
	CheckStock bool

	// DefaultPriceFromProduct fills zero unit prices from the product catalog.
	DefaultPriceFromProduct bool
}

// Doc is implemented by every document aggregate (pointer types).
type Doc interface {
	entity.Validatable
	Header() *entity.Document
	LineItems() *[]entity.LineItem
}

// CreateValidator is implemented by documents with rules that apply only
// when they are first created (dates that must not be in the past).
type CreateValidator interface {
	ValidateCreate(ctx context.Context, now time.Time) error
}

// EffectApplier is implemented by documents that react to non-stock effects
// (quotation timestamps).
type EffectApplier interface {
	ApplyEffect(effect lifecycle.Effect, at time.Time)
}

// Ledger is the subset of the stock ledger used by documents.
type Ledger interface {
	Post(ctx context.Context, movements []ledger.Movement) error
	CheckAvailable(ctx context.Context, productID entity.ID, requested int64) error
}

// PriceSource resolves a product's current unit price.
type PriceSource interface {
	UnitPrice(ctx context.Context, productID entity.ID) (decimal.Decimal, error)
}

// Recalculate derives every subtotal and the document total.
func Recalculate(doc Doc) {
	h := doc.Header()
	lines := doc.LineItems()
	entity.PrepareLines(h.ID, *lines)
	h.Total = entity.SumSubtotals(*lines)
}
