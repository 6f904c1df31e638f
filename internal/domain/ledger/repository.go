package ledger

import (
	"context"

	"inventario/internal/core/entity"
)

// Repository is the persistence side of the ledger.
type Repository interface {
	// Adjust adds delta to current_stock in one statement and returns the new
	// quantity. It never lets stock drop below zero: such a call fails with
	// INSUFFICIENT_STOCK and changes nothing. Unknown products yield NOT_FOUND.
	Adjust(ctx context.Context, productID entity.ID, delta int64) (int64, error)

	// CurrentStock reads the quantity without locking.
	CurrentStock(ctx context.Context, productID entity.ID) (int64, error)

	// InsertMovements appends movement rows.
	InsertMovements(ctx context.Context, movements []Movement) error

	// LowStock returns active products with current_stock < min_stock,
	// ordered by gap ascending.
	LowStock(ctx context.Context, limit int) ([]LowStockItem, error)

	ListMovements(ctx context.Context, filter MovementFilter) ([]Movement, error)
}
