package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"inventario/internal/core/entity"
	"inventario/internal/domain/documents/dispatch"
	"inventario/internal/domain/documents/order"
	"inventario/internal/domain/documents/quotation"
	"inventario/internal/domain/documents/reception"
	"inventario/internal/domain/documents/returns"
)

// LineRequest is one document line. Subtotals are always derived; a
// client-supplied subtotal is not accepted.
type LineRequest struct {
	ID        string          `json:"id" binding:"omitempty,uuid"`
	ProductID string          `json:"productId" binding:"required,uuid"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Brand     string          `json:"brand" binding:"max=100"`
	Model     string          `json:"model" binding:"max=100"`
}

// ToLine converts the request. IDs were validated by binding.
func (r LineRequest) ToLine() entity.LineItem {
	line := entity.LineItem{
		Quantity:  r.Quantity,
		UnitPrice: r.UnitPrice,
		Brand:     r.Brand,
		Model:     r.Model,
	}
	line.ProductID, _ = entity.ParseID(r.ProductID)
	if r.ID != "" {
		line.ID, _ = entity.ParseID(r.ID)
	}
	return line
}

// DocumentRequest holds the fields shared by every document request.
type DocumentRequest struct {
	Notes   string        `json:"notes" binding:"max=2000"`
	Version int           `json:"version" binding:"min=0"`
	Lines   []LineRequest `json:"lines" binding:"omitempty,dive"`
}

// applyTo copies notes, version and, when present, the full line set.
// A request without "lines" leaves stored lines untouched.
func (r DocumentRequest) applyTo(h *entity.Document, lines *[]entity.LineItem) {
	h.Notes = r.Notes
	if r.Version > 0 {
		h.Version = r.Version
	}
	if r.Lines == nil {
		return
	}
	out := make([]entity.LineItem, 0, len(r.Lines))
	for _, l := range r.Lines {
		out = append(out, l.ToLine())
	}
	*lines = out
}

// --- Order ---

// OrderRequest creates or updates an order.
type OrderRequest struct {
	DocumentRequest
	Client       string     `json:"client" binding:"max=200"`
	Supplier     string     `json:"supplier" binding:"max=200"`
	OrderDate    *time.Time `json:"orderDate"`
	DeliveryDate *time.Time `json:"deliveryDate"`
}

// Apply writes the request onto o.
func (r OrderRequest) Apply(o *order.Order) {
	r.applyTo(o.Header(), &o.Lines)
	o.Client = r.Client
	o.Supplier = r.Supplier
	if r.OrderDate != nil {
		o.OrderDate = *r.OrderDate
	}
	o.DeliveryDate = r.DeliveryDate
}

// --- Quotation ---

// QuotationRequest creates or updates a quotation.
type QuotationRequest struct {
	DocumentRequest
	Client     string     `json:"client" binding:"required,max=200"`
	ValidUntil *time.Time `json:"validUntil"`
}

// Apply writes the request onto q.
func (r QuotationRequest) Apply(q *quotation.Quotation) {
	r.applyTo(q.Header(), &q.Lines)
	q.Client = r.Client
	q.ValidUntil = r.ValidUntil
}

// --- Dispatch note ---

// DispatchNoteRequest creates or updates a dispatch note. Number is only
// honoured on create.
type DispatchNoteRequest struct {
	DocumentRequest
	Number       string     `json:"number" binding:"max=30"`
	Client       string     `json:"client" binding:"max=200"`
	Beneficiary  string     `json:"beneficiary" binding:"max=200"`
	Supplier     string     `json:"supplier" binding:"max=200"`
	OrderNumber  string     `json:"orderNumber" binding:"max=50"`
	DispatchDate *time.Time `json:"dispatchDate"`
	DriverName   string     `json:"driverName" binding:"max=100"`
	DriverID     string     `json:"driverId" binding:"max=50"`
	VehicleType  string     `json:"vehicleType" binding:"max=50"`
	VehicleColor string     `json:"vehicleColor" binding:"max=30"`
	LicensePlate string     `json:"licensePlate" binding:"max=20"`
}

// Apply writes the request onto d.
func (r DispatchNoteRequest) Apply(d *dispatch.DispatchNote) {
	r.applyTo(d.Header(), &d.Lines)
	if d.Number == "" {
		d.Number = r.Number
	}
	d.Client = r.Client
	d.Beneficiary = r.Beneficiary
	d.Supplier = r.Supplier
	d.OrderNumber = r.OrderNumber
	if r.DispatchDate != nil {
		d.DispatchDate = *r.DispatchDate
	}
	d.DriverName = r.DriverName
	d.DriverID = r.DriverID
	d.VehicleType = r.VehicleType
	d.VehicleColor = r.VehicleColor
	d.LicensePlate = r.LicensePlate
}

// --- Reception note ---

// ReceptionNoteRequest creates or updates a reception note.
type ReceptionNoteRequest struct {
	DocumentRequest
	Supplier    string     `json:"supplier" binding:"max=200"`
	ReceiptDate *time.Time `json:"receiptDate"`
}

// Apply writes the request onto rn.
func (r ReceptionNoteRequest) Apply(rn *reception.ReceptionNote) {
	r.applyTo(rn.Header(), &rn.Lines)
	rn.Supplier = r.Supplier
	if r.ReceiptDate != nil {
		rn.ReceiptDate = *r.ReceiptDate
	}
}

// --- Return note ---

// ReturnNoteRequest creates or updates a return note.
type ReturnNoteRequest struct {
	DocumentRequest
	DispatchNoteID string     `json:"dispatchNoteId" binding:"omitempty,uuid"`
	Client         string     `json:"client" binding:"max=200"`
	ReturnDate     *time.Time `json:"returnDate"`
	Reason         string     `json:"reason" binding:"max=500"`
}

// Apply writes the request onto rn.
func (r ReturnNoteRequest) Apply(rn *returns.ReturnNote) {
	r.applyTo(rn.Header(), &rn.Lines)
	rn.DispatchNoteID = nil
	if r.DispatchNoteID != "" {
		if id, err := entity.ParseID(r.DispatchNoteID); err == nil {
			rn.DispatchNoteID = &id
		}
	}
	rn.Client = r.Client
	if r.ReturnDate != nil {
		rn.ReturnDate = *r.ReturnDate
	}
	rn.Reason = r.Reason
}
