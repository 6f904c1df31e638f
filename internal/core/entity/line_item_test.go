package entity

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventario/internal/core/apperror"
)

func TestLineItem_RecalculateOverwritesSubtotal(t *testing.T) {
	l := LineItem{Quantity: 3, UnitPrice: decimal.RequireFromString("2.50"), Subtotal: decimal.NewFromInt(999)}
	l.Recalculate()
	assert.True(t, l.Subtotal.Equal(decimal.RequireFromString("7.50")), "got %s", l.Subtotal)
}

func TestLineItem_Validate(t *testing.T) {
	product := NewID()
	tests := []struct {
		name     string
		line     LineItem
		rule     PriceRule
		wantCode string
	}{
		{"ok positive", LineItem{ProductID: product, Quantity: 1, UnitPrice: decimal.NewFromInt(1)}, PricePositive, ""},
		{"zero price allowed non-negative", LineItem{ProductID: product, Quantity: 1, UnitPrice: decimal.Zero}, PriceNonNegative, ""},
		{"zero price rejected positive", LineItem{ProductID: product, Quantity: 1, UnitPrice: decimal.Zero}, PricePositive, apperror.CodeInvalidPrice},
		{"negative price", LineItem{ProductID: product, Quantity: 1, UnitPrice: decimal.NewFromInt(-1)}, PriceNonNegative, apperror.CodeInvalidPrice},
		{"zero quantity", LineItem{ProductID: product, Quantity: 0, UnitPrice: decimal.NewFromInt(1)}, PriceNonNegative, apperror.CodeInvalidQuantity},
		{"negative quantity", LineItem{ProductID: product, Quantity: -2, UnitPrice: decimal.NewFromInt(1)}, PriceNonNegative, apperror.CodeInvalidQuantity},
		{"two decimals", LineItem{ProductID: product, Quantity: 1, UnitPrice: decimal.RequireFromString("1.25")}, PricePositive, ""},
		{"trailing zeros", LineItem{ProductID: product, Quantity: 1, UnitPrice: decimal.RequireFromString("1.2500")}, PricePositive, ""},
		{"three decimals", LineItem{ProductID: product, Quantity: 1, UnitPrice: decimal.RequireFromString("1.005")}, PricePositive, apperror.CodeInvalidPrice},
		{"missing product", LineItem{Quantity: 1, UnitPrice: decimal.NewFromInt(1)}, PriceNonNegative, apperror.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.line.Validate(context.Background(), tt.rule)
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperror.HasCode(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestPrepareLines_TotalEqualsSumOfSubtotals(t *testing.T) {
	docID := NewID()
	lines := []LineItem{
		{ProductID: NewID(), Quantity: 5, UnitPrice: decimal.NewFromInt(10)},
		{ProductID: NewID(), Quantity: 3, UnitPrice: decimal.NewFromInt(2)},
	}

	PrepareLines(docID, lines)

	assert.True(t, SumSubtotals(lines).Equal(decimal.NewFromInt(56)))
	for i, l := range lines {
		assert.Equal(t, docID, l.DocumentID)
		assert.Equal(t, i+1, l.LineNo)
		assert.NotEqual(t, ID{}, l.ID)
		assert.True(t, l.Subtotal.Equal(l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))))
	}
}

// Money columns keep two decimals, so every accepted line must survive that
// rounding with total == sum(subtotal) still holding on the stored values.
func TestPrepareLines_StoredValuesKeepTotal(t *testing.T) {
	lines := []LineItem{
		{ProductID: NewID(), Quantity: 1, UnitPrice: decimal.RequireFromString("1.005")},
		{ProductID: NewID(), Quantity: 1, UnitPrice: decimal.RequireFromString("1.005")},
	}
	for i := range lines {
		require.Error(t, lines[i].Validate(context.Background(), PricePositive))
	}

	lines[0].UnitPrice = decimal.RequireFromString("1.01")
	lines[1].UnitPrice = decimal.RequireFromString("3.33")
	lines[1].Quantity = 7
	PrepareLines(NewID(), lines)

	stored := decimal.Zero
	for _, l := range lines {
		require.NoError(t, l.Validate(context.Background(), PricePositive))
		assert.True(t, l.Subtotal.Equal(l.Subtotal.Round(PriceScale)))
		stored = stored.Add(l.Subtotal.Round(PriceScale))
	}
	total := SumSubtotals(lines)
	assert.True(t, total.Round(PriceScale).Equal(stored), "total %s stored %s", total, stored)
}
