// Package order implements purchase orders: stock arrives when an approved
// order is delivered.
package order

import (
	"context"
	"time"

	"inventario/internal/core/apperror"
	"inventario/internal/core/entity"
	"inventario/internal/domain/documents"
)

// Order is a purchase order placed with a supplier, optionally for a client.
type Order struct {
	entity.Document

	Client       string     `db:"client" json:"client,omitempty"`
	Supplier     string     `db:"supplier" json:"supplier,omitempty"`
	OrderDate    time.Time  `db:"order_date" json:"orderDate"`
	DeliveryDate *time.Time `db:"delivery_date" json:"deliveryDate,omitempty"`

	Lines []entity.LineItem `db:"-" json:"lines"`
}

// New creates an order in its initial status.
func New() *Order {
	return &Order{Document: entity.NewDocument(StatusPending)}
}

// Validate checks header fields.
func (o *Order) Validate(_ context.Context) error {
	if len(o.Client) > 200 {
		return apperror.NewValidation("client is too long").WithDetail("field", "client")
	}
	if len(o.Supplier) > 200 {
		return apperror.NewValidation("supplier is too long").WithDetail("field", "supplier")
	}
	return nil
}

// ValidateCreate rejects a delivery date in the past.
func (o *Order) ValidateCreate(_ context.Context, now time.Time) error {
	return documents.CheckNotPast("deliveryDate", o.DeliveryDate, now)
}

// LineItems implements documents.Doc.
func (o *Order) LineItems() *[]entity.LineItem { return &o.Lines }

// Clone returns a deep copy.
func (o *Order) Clone() *Order {
	out := *o
	out.Lines = documents.CloneLines(o.Lines)
	if o.DeliveryDate != nil {
		d := *o.DeliveryDate
		out.DeliveryDate = &d
	}
	return &out
}

var (
	_ documents.Doc             = (*Order)(nil)
	_ documents.CreateValidator = (*Order)(nil)
)
