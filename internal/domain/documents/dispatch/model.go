// Package dispatch implements dispatch (delivery) notes.
package dispatch

import (
	"context"
	"time"

	"inventario/internal/core/apperror"
	"inventario/internal/core/entity"
	"inventario/internal/domain/documents"
)

// DispatchNote records goods leaving for a client, with the transport details.
type DispatchNote struct {
	entity.Document

	Client       string    `db:"client" json:"client,omitempty"`
	Beneficiary  string    `db:"beneficiary" json:"beneficiary,omitempty"`
	Supplier     string    `db:"supplier" json:"supplier,omitempty"`
	OrderNumber  string    `db:"order_number" json:"orderNumber,omitempty"`
	DispatchDate time.Time `db:"dispatch_date" json:"dispatchDate"`

	DriverName   string `db:"driver_name" json:"driverName,omitempty"`
	DriverID     string `db:"driver_id" json:"driverId,omitempty"`
	VehicleType  string `db:"vehicle_type" json:"vehicleType,omitempty"`
	VehicleColor string `db:"vehicle_color" json:"vehicleColor,omitempty"`
	LicensePlate string `db:"license_plate" json:"licensePlate,omitempty"`

	Lines []entity.LineItem `db:"-" json:"lines"`
}

// MaxNumberLength bounds a caller supplied number to the stored column width.
const MaxNumberLength = 30

// New creates a dispatch note in its initial status.
func New() *DispatchNote {
	return &DispatchNote{Document: entity.NewDocument(StatusPending)}
}

// Validate checks header fields.
func (d *DispatchNote) Validate(_ context.Context) error {
	if len(d.Number) > MaxNumberLength {
		return apperror.NewValidation("number is too long").
			WithDetail("field", "number").
			WithDetail("max", MaxNumberLength)
	}
	if len(d.OrderNumber) > 50 {
		return apperror.NewValidation("order number is too long").WithDetail("field", "orderNumber")
	}
	if len(d.LicensePlate) > 20 {
		return apperror.NewValidation("license plate is too long").WithDetail("field", "licensePlate")
	}
	for i, l := range d.Lines {
		if len(l.Brand) > 100 || len(l.Model) > 100 {
			return apperror.NewValidation("brand and model are limited to 100 characters").
				WithDetail("field", "brand").
				WithDetail("line", i+1)
		}
	}
	return nil
}

// LineItems implements documents.Doc.
func (d *DispatchNote) LineItems() *[]entity.LineItem { return &d.Lines }

// Clone returns a deep copy.
func (d *DispatchNote) Clone() *DispatchNote {
	out := *d
	out.Lines = documents.CloneLines(d.Lines)
	return &out
}

var _ documents.Doc = (*DispatchNote)(nil)
