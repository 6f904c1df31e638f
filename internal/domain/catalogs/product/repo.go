package product

import (
	"context"

	"inventario/internal/core/entity"
	"inventario/internal/domain"
)

// Repository defines product persistence.
type Repository interface {
	Create(ctx context.Context, p *Product) error

	GetByID(ctx context.Context, id entity.ID) (*Product, error)

	GetByCode(ctx context.Context, code string) (*Product, error)

	// Update writes catalog fields with an optimistic version check.
	// current_stock is never written here.
	Update(ctx context.Context, p *Product) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Product], error)
}
