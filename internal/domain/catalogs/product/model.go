// Package product provides the product catalog: codes, prices, units and stock thresholds.
// Current stock is read here but only ever changed through the stock ledger.
package product

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"inventario/internal/core/apperror"
	"inventario/internal/core/entity"
)

// Product is a stocked item.
type Product struct {
	ID           entity.ID       `db:"id" json:"id"`
	Code         string          `db:"code" json:"code"`
	Description  string          `db:"description" json:"description"`
	Unit         string          `db:"unit" json:"unit"`
	UnitPrice    decimal.Decimal `db:"unit_price" json:"unitPrice"`
	CurrentStock int64           `db:"current_stock" json:"currentStock"`
	MinStock     int64           `db:"min_stock" json:"minStock"`
	MaxStock     int64           `db:"max_stock" json:"maxStock"`
	Category     string          `db:"category" json:"category,omitempty"`
	Supplier     string          `db:"supplier" json:"supplier,omitempty"`
	Location     string          `db:"location" json:"location,omitempty"`
	IsActive     bool            `db:"is_active" json:"isActive"`
	Version      int             `db:"version" json:"version"`
	CreatedAt    time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updatedAt"`
}

// DefaultUnit is used when a product is created without a unit of measure.
const DefaultUnit = "UND"

// NewProduct creates an active product with a generated id.
func NewProduct(code, description string, price decimal.Decimal) *Product {
	now := time.Now().UTC()
	return &Product{
		ID:          entity.NewID(),
		Code:        code,
		Description: description,
		Unit:        DefaultUnit,
		UnitPrice:   price,
		IsActive:    true,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate implements entity.Validatable.
func (p *Product) Validate(_ context.Context) error {
	p.Code = strings.TrimSpace(p.Code)
	if p.Code == "" {
		return apperror.NewValidation("code is required").WithDetail("field", "code")
	}
	if len(p.Code) > 50 {
		return apperror.NewValidation("code must be at most 50 characters").WithDetail("field", "code")
	}
	if strings.TrimSpace(p.Description) == "" {
		return apperror.NewValidation("description is required").WithDetail("field", "description")
	}
	if p.Unit == "" {
		p.Unit = DefaultUnit
	}
	if p.UnitPrice.IsNegative() {
		return apperror.NewValidation("unit price cannot be negative").WithDetail("field", "unitPrice")
	}
	if !entity.HasPriceScale(p.UnitPrice) {
		return apperror.NewInvalidPriceScale(p.UnitPrice.String(), entity.PriceScale)
	}
	if p.CurrentStock < 0 {
		return apperror.NewValidation("stock cannot be negative").WithDetail("field", "currentStock")
	}
	if p.MinStock < 0 {
		return apperror.NewValidation("minimum stock cannot be negative").WithDetail("field", "minStock")
	}
	if p.MaxStock < 0 {
		return apperror.NewValidation("maximum stock cannot be negative").WithDetail("field", "maxStock")
	}
	if p.MaxStock > 0 && p.MaxStock < p.MinStock {
		return apperror.NewValidation("maximum stock must not be below minimum stock").WithDetail("field", "maxStock")
	}
	return nil
}

// IsLowStock reports current_stock < min_stock (strict).
func (p *Product) IsLowStock() bool {
	return p.CurrentStock < p.MinStock
}

// Price is the answer to "what does this product cost now".
type Price struct {
	ProductID   entity.ID       `json:"productId"`
	Code        string          `json:"code"`
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Unit        string          `json:"unit"`
}

// ListFilter narrows product listings.
type ListFilter struct {
	Search     string
	Category   string
	ActiveOnly bool
	Limit      int
	Offset     int
}
