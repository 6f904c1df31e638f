// Package entity provides the core records shared by documents and catalogs.
package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ID is the primary key type of every record (UUIDv7, time-ordered).
type ID = uuid.UUID

// NewID generates a new UUIDv7.
func NewID() ID {
	v, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return v
}

// ParseID converts string to ID with validation.
func ParseID(s string) (ID, error) {
	return uuid.Parse(s)
}

// Validatable is implemented by records that check their own invariants
// without database access.
type Validatable interface {
	Validate(ctx context.Context) error
}

// BaseDocument contains identity, optimistic-lock version and audit fields.
type BaseDocument struct {
	ID        ID        `db:"id" json:"id"`
	Version   int       `db:"version" json:"version"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
	CreatedBy string    `db:"created_by" json:"createdBy,omitempty"`
}

// NewBaseDocument creates a BaseDocument with generated ID and timestamps.
func NewBaseDocument() BaseDocument {
	now := time.Now().UTC()
	return BaseDocument{
		ID:        NewID(),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch updates the UpdatedAt timestamp and increments version.
func (b *BaseDocument) Touch() {
	b.UpdatedAt = time.Now().UTC()
	b.Version++
}
