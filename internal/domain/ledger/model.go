// Package ledger is the single entry point for stock quantity changes.
// Every document transition that moves goods posts movements here; the ledger
// applies them as in-database increments and keeps one movement row per change.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"inventario/internal/core/entity"
)

// Direction of a stock movement.
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// Valid reports whether d is IN or OUT.
func (d Direction) Valid() bool {
	return d == DirectionIn || d == DirectionOut
}

// Movement is one recorded stock change.
type Movement struct {
	ID              entity.ID       `db:"id" json:"id"`
	ProductID       entity.ID       `db:"product_id" json:"productId"`
	Direction       Direction       `db:"direction" json:"direction"`
	Quantity        int64           `db:"quantity" json:"quantity"`
	UnitPrice       decimal.Decimal `db:"unit_price" json:"unitPrice"`
	DocumentType    string          `db:"document_type" json:"documentType,omitempty"`
	DocumentID      *entity.ID      `db:"document_id" json:"documentId,omitempty"`
	ReferenceNumber string          `db:"reference_number" json:"referenceNumber,omitempty"`
	Notes           string          `db:"notes" json:"notes,omitempty"`
	CreatedBy       string          `db:"created_by" json:"createdBy,omitempty"`
	RecordedAt      time.Time       `db:"recorded_at" json:"recordedAt"`
}

// Delta is the signed stock change of the movement.
func (m Movement) Delta() int64 {
	if m.Direction == DirectionOut {
		return -m.Quantity
	}
	return m.Quantity
}

// LowStockItem is a product below its minimum.
type LowStockItem struct {
	ProductID    entity.ID `db:"id" json:"productId"`
	Code         string    `db:"code" json:"code"`
	Description  string    `db:"description" json:"description"`
	Unit         string    `db:"unit" json:"unit"`
	CurrentStock int64     `db:"current_stock" json:"currentStock"`
	MinStock     int64     `db:"min_stock" json:"minStock"`
	// Gap is current_stock - min_stock; the most negative is the most critical.
	Gap int64 `db:"gap" json:"gap"`
}

// MovementFilter narrows movement history queries.
type MovementFilter struct {
	ProductID  *entity.ID
	DocumentID *entity.ID
	Direction  *Direction
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}
