package documents

import (
	"context"
	"time"

	"inventario/internal/core/entity"
	"inventario/internal/domain"
)

// Repository persists one document type with its lines.
type Repository[T Doc] interface {
	// Create inserts header and lines.
	Create(ctx context.Context, doc T) error

	// GetByID loads header and lines.
	GetByID(ctx context.Context, id entity.ID) (T, error)

	// GetForUpdate loads header and lines with the header row locked until
	// the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id entity.ID) (T, error)

	// Update writes the header when the stored version equals doc's version
	// and bumps it; otherwise CONCURRENT_MODIFICATION.
	Update(ctx context.Context, doc T) error

	// ReplaceLines swaps the whole line set.
	ReplaceLines(ctx context.Context, documentID entity.ID, lines []entity.LineItem) error

	// Delete removes the header; lines cascade.
	Delete(ctx context.Context, id entity.ID) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[T], error)
}

// ListFilter narrows document listings.
type ListFilter struct {
	domain.ListFilter

	Status []entity.Status
	From   *time.Time
	To     *time.Time
}
