package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"inventario/internal/core/entity"
	"inventario/internal/domain/catalogs/product"
	"inventario/internal/domain/ledger"
)

// ProductRequest creates or updates a product. CurrentStock is the opening
// balance and is ignored on update; stock then moves only through documents.
type ProductRequest struct {
	Code         string          `json:"code" binding:"required,max=50"`
	Description  string          `json:"description" binding:"required,max=255"`
	Unit         string          `json:"unit" binding:"max=20"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	CurrentStock int64           `json:"currentStock" binding:"min=0"`
	MinStock     int64           `json:"minStock" binding:"min=0"`
	MaxStock     int64           `json:"maxStock" binding:"min=0"`
	Category     string          `json:"category" binding:"max=100"`
	Supplier     string          `json:"supplier" binding:"max=200"`
	Location     string          `json:"location" binding:"max=100"`
	IsActive     *bool           `json:"isActive"`
	Version      int             `json:"version" binding:"min=0"`
}

// ToProduct builds a new product.
func (r ProductRequest) ToProduct() *product.Product {
	p := product.NewProduct(r.Code, r.Description, r.UnitPrice)
	r.Apply(p)
	p.CurrentStock = r.CurrentStock
	return p
}

// Apply writes the catalog fields onto p.
func (r ProductRequest) Apply(p *product.Product) {
	p.Code = r.Code
	p.Description = r.Description
	if r.Unit != "" {
		p.Unit = r.Unit
	}
	p.UnitPrice = r.UnitPrice
	p.MinStock = r.MinStock
	p.MaxStock = r.MaxStock
	p.Category = r.Category
	p.Supplier = r.Supplier
	p.Location = r.Location
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
	if r.Version > 0 {
		p.Version = r.Version
	}
}

// ProductListQuery filters product listings.
type ProductListQuery struct {
	Search     string `form:"search" binding:"max=100"`
	Category   string `form:"category"`
	ActiveOnly bool   `form:"activeOnly"`
	Limit      int    `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset     int    `form:"offset" binding:"omitempty,min=0"`
}

// ToFilter converts the query into a product filter.
func (q ProductListQuery) ToFilter() product.ListFilter {
	return product.ListFilter{
		Search:     q.Search,
		Category:   q.Category,
		ActiveOnly: q.ActiveOnly,
		Limit:      q.Limit,
		Offset:     q.Offset,
	}
}

// MovementQuery filters the movement history of one product.
type MovementQuery struct {
	Direction string     `form:"direction" binding:"omitempty,oneof=IN OUT"`
	From      *time.Time `form:"from" time_format:"2006-01-02"`
	To        *time.Time `form:"to" time_format:"2006-01-02"`
	Limit     int        `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset    int        `form:"offset" binding:"omitempty,min=0"`
}

// ToFilter converts the query into a ledger filter for productID.
func (q MovementQuery) ToFilter(productID entity.ID) ledger.MovementFilter {
	f := ledger.MovementFilter{
		ProductID: &productID,
		From:      q.From,
		Limit:     q.Limit,
		Offset:    q.Offset,
	}
	if q.Direction != "" {
		d := ledger.Direction(q.Direction)
		f.Direction = &d
	}
	if q.To != nil {
		end := q.To.AddDate(0, 0, 1)
		f.To = &end
	}
	return f
}
