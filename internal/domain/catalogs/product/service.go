package product

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"inventario/internal/core/apperror"
	"inventario/internal/core/entity"
	"inventario/internal/core/tx"
	"inventario/internal/domain"
	"inventario/pkg/logger"
)

// Service provides product catalog operations.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new product service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{repo: repo, txManager: txManager}
}

// Create validates and stores a new product. Opening stock may be set here;
// afterwards only the ledger changes it.
func (s *Service) Create(ctx context.Context, p *Product) error {
	if p.ID == (entity.ID{}) {
		p.ID = entity.NewID()
	}
	if p.Version == 0 {
		p.Version = 1
	}
	if err := p.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetByCode(ctx, p.Code)
		if err != nil && !apperror.IsNotFound(err) {
			return fmt.Errorf("check product code: %w", err)
		}
		if existing != nil {
			return apperror.NewDuplicate("product", "code", p.Code)
		}
		if err := s.repo.Create(ctx, p); err != nil {
			return fmt.Errorf("create product: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "product created", "product_id", p.ID, "code", p.Code)
	return nil
}

// GetByID retrieves a product.
func (s *Service) GetByID(ctx context.Context, id entity.ID) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByCode retrieves a product by its unique code.
func (s *Service) GetByCode(ctx context.Context, code string) (*Product, error) {
	return s.repo.GetByCode(ctx, code)
}

// Update changes catalog fields. Stock is carried over from the stored row.
func (s *Service) Update(ctx context.Context, p *Product) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetByID(ctx, p.ID)
		if err != nil {
			return err
		}
		p.CurrentStock = current.CurrentStock
		p.CreatedAt = current.CreatedAt
		if err := p.Validate(ctx); err != nil {
			return err
		}
		if p.Code != current.Code {
			other, err := s.repo.GetByCode(ctx, p.Code)
			if err != nil && !apperror.IsNotFound(err) {
				return fmt.Errorf("check product code: %w", err)
			}
			if other != nil && other.ID != p.ID {
				return apperror.NewDuplicate("product", "code", p.Code)
			}
		}
		if err := s.repo.Update(ctx, p); err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		return nil
	})
}

// List returns a page of products.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Product], error) {
	paging := domain.ListFilter{Limit: filter.Limit, Offset: filter.Offset}
	paging.Normalize()
	filter.Limit, filter.Offset = paging.Limit, paging.Offset
	return s.repo.List(ctx, filter)
}

// GetPrice returns the current price and unit of measure of a product.
func (s *Service) GetPrice(ctx context.Context, id entity.ID) (*Price, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Price{
		ProductID:   p.ID,
		Code:        p.Code,
		Description: p.Description,
		UnitPrice:   p.UnitPrice,
		Unit:        p.Unit,
	}, nil
}

// UnitPrice returns only the price; used to default dispatch line prices.
func (s *Service) UnitPrice(ctx context.Context, id entity.ID) (decimal.Decimal, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	return p.UnitPrice, nil
}
