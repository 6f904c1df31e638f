package entity

import (
	"context"

	"github.com/shopspring/decimal"

	"inventario/internal/core/apperror"
)

// PriceRule is the minimum unit price policy of a document type.
type PriceRule string

const (
	// PricePositive rejects unit_price <= 0.
	PricePositive PriceRule = "positive"
	// PriceNonNegative rejects unit_price < 0.
	PriceNonNegative PriceRule = "non_negative"
)

// PriceScale is the number of decimal places stored for prices, subtotals and totals.
const PriceScale int32 = 2

// HasPriceScale reports whether price fits PriceScale without rounding.
// Trailing zeros beyond the scale are accepted.
func HasPriceScale(price decimal.Decimal) bool {
	return price.Equal(price.Round(PriceScale))
}

// Valid reports whether r is a known rule.
func (r PriceRule) Valid() bool {
	return r == PricePositive || r == PriceNonNegative
}

// LineItem is one product line of a document.
// Brand and Model are only persisted for dispatch notes.
type LineItem struct {
	ID         ID              `db:"id" json:"id"`
	DocumentID ID              `db:"document_id" json:"documentId"`
	LineNo     int             `db:"line_no" json:"lineNo"`
	ProductID  ID              `db:"product_id" json:"productId"`
	Quantity   int64           `db:"quantity" json:"quantity"`
	UnitPrice  decimal.Decimal `db:"unit_price" json:"unitPrice"`
	Subtotal   decimal.Decimal `db:"subtotal" json:"subtotal"`
	Brand      string          `db:"brand" json:"brand,omitempty"`
	Model      string          `db:"model" json:"model,omitempty"`
}

// Recalculate derives the subtotal. Any externally supplied subtotal is overwritten.
func (l *LineItem) Recalculate() {
	l.Subtotal = l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}

// Validate checks product, quantity and price against rule.
func (l *LineItem) Validate(_ context.Context, rule PriceRule) error {
	if l.ProductID == (ID{}) {
		return apperror.NewValidation("product is required").
			WithDetail("field", "productId").
			WithDetail("line", l.LineNo)
	}
	if l.Quantity <= 0 {
		return apperror.NewInvalidQuantity(l.Quantity).WithDetail("line", l.LineNo)
	}

	invalid := l.UnitPrice.IsNegative()
	if rule == PricePositive {
		invalid = !l.UnitPrice.IsPositive()
	}
	if invalid {
		return apperror.NewInvalidPrice(l.UnitPrice.String(), string(rule)).WithDetail("line", l.LineNo)
	}
	if !HasPriceScale(l.UnitPrice) {
		return apperror.NewInvalidPriceScale(l.UnitPrice.String(), PriceScale).WithDetail("line", l.LineNo)
	}
	return nil
}

// SumSubtotals returns the total of already recalculated lines.
func SumSubtotals(lines []LineItem) decimal.Decimal {
	total := decimal.Zero
	for i := range lines {
		total = total.Add(lines[i].Subtotal)
	}
	return total
}

// PrepareLines numbers, identifies and recalculates lines for documentID.
func PrepareLines(documentID ID, lines []LineItem) {
	for i := range lines {
		if lines[i].ID == (ID{}) {
			lines[i].ID = NewID()
		}
		lines[i].DocumentID = documentID
		lines[i].LineNo = i + 1
		lines[i].Recalculate()
	}
}
