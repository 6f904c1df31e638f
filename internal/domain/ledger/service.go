package ledger

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"time"

	"inventario/internal/core/apperror"
	"inventario/internal/core/entity"
	"inventario/internal/core/tx"
	"inventario/pkg/logger"
)

const (
	DefaultLowStockLimit = 10
	MaxLowStockLimit     = 100
)

// Service is the stock ledger.
type Service struct {
	repo      Repository
	txManager tx.Manager
	now       func() time.Time
}

// NewService creates a new stock ledger.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Adjust applies delta to a product's stock and returns the new quantity.
// No movement is recorded; document transitions use Post instead.
func (s *Service) Adjust(ctx context.Context, productID entity.ID, delta int64) (int64, error) {
	if delta == 0 {
		return s.repo.CurrentStock(ctx, productID)
	}
	return s.repo.Adjust(ctx, productID, delta)
}

// Available reports whether requested units can be taken from stock now.
func (s *Service) Available(ctx context.Context, productID entity.ID, requested int64) (bool, error) {
	current, err := s.repo.CurrentStock(ctx, productID)
	if err != nil {
		return false, err
	}
	return requested <= current, nil
}

// CheckAvailable fails with INSUFFICIENT_STOCK when requested exceeds current stock.
func (s *Service) CheckAvailable(ctx context.Context, productID entity.ID, requested int64) error {
	current, err := s.repo.CurrentStock(ctx, productID)
	if err != nil {
		return err
	}
	if requested > current {
		return apperror.NewInsufficientStock(productID.String(), requested, current)
	}
	return nil
}

// Post applies movements and records them, all or nothing.
// Adjustments run in product id order so concurrent posts lock rows in the
// same sequence.
func (s *Service) Post(ctx context.Context, movements []Movement) error {
	if len(movements) == 0 {
		return nil
	}

	prepared := make([]Movement, len(movements))
	copy(prepared, movements)
	now := s.now()
	for i := range prepared {
		m := &prepared[i]
		if m.Quantity <= 0 {
			return apperror.NewInvalidQuantity(m.Quantity).WithDetail("movement", i)
		}
		if !m.Direction.Valid() {
			return apperror.NewValidation(fmt.Sprintf("movement %d: unknown direction %q", i, m.Direction))
		}
		if m.ID == (entity.ID{}) {
			m.ID = entity.NewID()
		}
		if m.RecordedAt.IsZero() {
			m.RecordedAt = now
		}
	}

	slices.SortStableFunc(prepared, func(a, b Movement) int {
		return bytes.Compare(a.ProductID[:], b.ProductID[:])
	})

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, m := range prepared {
			qty, err := s.repo.Adjust(ctx, m.ProductID, m.Delta())
			if err != nil {
				return err
			}
			logger.Debug(ctx, "stock adjusted",
				"product_id", m.ProductID,
				"delta", m.Delta(),
				"stock", qty,
				"reference", m.ReferenceNumber,
			)
		}
		if err := s.repo.InsertMovements(ctx, prepared); err != nil {
			return fmt.Errorf("insert movements: %w", err)
		}
		return nil
	})
}

// LowStock lists products below their minimum, most critical first.
func (s *Service) LowStock(ctx context.Context, limit int) ([]LowStockItem, error) {
	if limit <= 0 {
		limit = DefaultLowStockLimit
	}
	if limit > MaxLowStockLimit {
		limit = MaxLowStockLimit
	}
	return s.repo.LowStock(ctx, limit)
}

// Movements returns movement history.
func (s *Service) Movements(ctx context.Context, filter MovementFilter) ([]Movement, error) {
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 100
	}
	return s.repo.ListMovements(ctx, filter)
}
