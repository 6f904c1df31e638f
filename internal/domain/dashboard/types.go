// Package dashboard aggregates the headline inventory figures.
package dashboard

import (
	"context"
	"time"

	"inventario/internal/domain/ledger"
)

// Summary is the dashboard payload. A metric whose query failed is zero and
// named in Degraded.
type Summary struct {
	TotalProducts     int64                 `json:"totalProducts"`
	CriticalProducts  int64                 `json:"criticalProducts"`
	MovementsInToday  int64                 `json:"movementsInToday"`
	MovementsOutToday int64                 `json:"movementsOutToday"`
	LowStock          []ledger.LowStockItem `json:"lowStock"`
	GeneratedAt       time.Time             `json:"generatedAt"`
	Degraded          []string              `json:"degraded,omitempty"`
}

// Repository runs the individual dashboard queries.
type Repository interface {
	TotalProductCount(ctx context.Context) (int64, error)

	// CriticalStockCount counts active products strictly below their minimum.
	CriticalStockCount(ctx context.Context) (int64, error)

	// MovementsSince counts movements in direction recorded at or after since.
	MovementsSince(ctx context.Context, direction ledger.Direction, since time.Time) (int64, error)

	LowStock(ctx context.Context, limit int) ([]ledger.LowStockItem, error)
}

// Cache stores a computed summary. A miss is (nil, nil).
type Cache interface {
	Get(ctx context.Context) (*Summary, error)
	Set(ctx context.Context, s *Summary, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}
