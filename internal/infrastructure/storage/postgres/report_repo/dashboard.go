// Package report_repo provides the PostgreSQL queries behind the dashboard.
package report_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"inventario/internal/domain/dashboard"
	"inventario/internal/domain/ledger"
	"inventario/internal/infrastructure/storage/postgres"
	"inventario/internal/infrastructure/storage/postgres/catalog_repo"
	"inventario/internal/infrastructure/storage/postgres/ledger_repo"
)

// DashboardRepo implements dashboard.Repository.
type DashboardRepo struct {
	txManager *postgres.TxManager
	stock     *ledger_repo.StockRepo
}

// NewDashboardRepo creates a dashboard repository.
func NewDashboardRepo(txManager *postgres.TxManager) *DashboardRepo {
	return &DashboardRepo{
		txManager: txManager,
		stock:     ledger_repo.NewStockRepo(txManager),
	}
}

var _ dashboard.Repository = (*DashboardRepo)(nil)

// Builder returns a new squirrel builder.
func (r *DashboardRepo) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// TotalProductCount counts every product, active or not.
func (r *DashboardRepo) TotalProductCount(ctx context.Context) (int64, error) {
	return r.count(ctx, r.Builder().Select("COUNT(*)").From(catalog_repo.ProductsTable), "count products")
}

// CriticalStockCount implements dashboard.Repository.
func (r *DashboardRepo) CriticalStockCount(ctx context.Context) (int64, error) {
	return r.count(ctx, r.criticalQuery(), "count critical products")
}

// MovementsSince implements dashboard.Repository.
func (r *DashboardRepo) MovementsSince(ctx context.Context, direction ledger.Direction, since time.Time) (int64, error) {
	return r.count(ctx, r.movementsQuery(direction, since), "count movements")
}

// LowStock implements dashboard.Repository.
func (r *DashboardRepo) LowStock(ctx context.Context, limit int) ([]ledger.LowStockItem, error) {
	return r.stock.LowStock(ctx, limit)
}

func (r *DashboardRepo) criticalQuery() squirrel.SelectBuilder {
	return r.Builder().
		Select("COUNT(*)").
		From(catalog_repo.ProductsTable).
		Where(squirrel.Eq{"is_active": true}).
		Where("current_stock < min_stock")
}

func (r *DashboardRepo) movementsQuery(direction ledger.Direction, since time.Time) squirrel.SelectBuilder {
	return r.Builder().
		Select("COUNT(*)").
		From(ledger_repo.MovementsTable).
		Where(squirrel.Eq{"direction": direction}).
		Where(squirrel.GtOrEq{"recorded_at": since})
}

func (r *DashboardRepo) count(ctx context.Context, q squirrel.SelectBuilder, what string) (int64, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var n int64
	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", what, err)
	}
	return n, nil
}
