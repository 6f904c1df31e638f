// Package ledger_repo provides the PostgreSQL stock ledger.
// Quantities live on cat_products.current_stock; every change is mirrored by a
// row in reg_stock_movements.
package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"inventario/internal/core/apperror"
	"inventario/internal/core/entity"
	"inventario/internal/domain/ledger"
	"inventario/internal/infrastructure/storage/postgres"
	"inventario/internal/infrastructure/storage/postgres/catalog_repo"
)

// MovementsTable is the append-only movement history.
const MovementsTable = "reg_stock_movements"

// StockRepo implements ledger.Repository.
type StockRepo struct {
	txManager *postgres.TxManager
	cols      []string
}

// NewStockRepo creates a stock ledger repository.
func NewStockRepo(txManager *postgres.TxManager) *StockRepo {
	return &StockRepo{
		txManager: txManager,
		cols:      postgres.ExtractDBColumns[ledger.Movement](),
	}
}

var _ ledger.Repository = (*StockRepo)(nil)

// Builder returns a new squirrel builder.
func (r *StockRepo) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// adjustQuery is a single conditional increment. The row lock taken by the
// UPDATE serialises concurrent adjustments of the same product.
func (r *StockRepo) adjustQuery(productID entity.ID, delta int64) squirrel.UpdateBuilder {
	return r.Builder().
		Update(catalog_repo.ProductsTable).
		Set("current_stock", squirrel.Expr("current_stock + ?", delta)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Expr("id = ?", productID)).
		Where(squirrel.Expr("current_stock + ? >= 0", delta)).
		Suffix("RETURNING current_stock")
}

// Adjust implements ledger.Repository.
func (r *StockRepo) Adjust(ctx context.Context, productID entity.ID, delta int64) (int64, error) {
	sql, args, err := r.adjustQuery(productID, delta).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build adjust: %w", err)
	}

	var qty int64
	err = r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&qty)
	if err == nil {
		return qty, nil
	}
	if !postgres.IsNoRows(err) {
		return 0, fmt.Errorf("adjust stock: %w", err)
	}

	// Nothing matched: either the product is missing or the guard rejected the delta.
	current, err := r.CurrentStock(ctx, productID)
	if err != nil {
		return 0, err
	}
	return 0, apperror.NewInsufficientStock(productID.String(), -delta, current)
}

// CurrentStock implements ledger.Repository.
func (r *StockRepo) CurrentStock(ctx context.Context, productID entity.ID) (int64, error) {
	sql, args, err := r.Builder().
		Select("current_stock").
		From(catalog_repo.ProductsTable).
		Where(squirrel.Expr("id = ?", productID)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var qty int64
	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&qty); err != nil {
		if postgres.IsNoRows(err) {
			return 0, apperror.NewNotFound("product", productID.String())
		}
		return 0, fmt.Errorf("read stock: %w", err)
	}
	return qty, nil
}

// InsertMovements implements ledger.Repository. Inside a transaction rows go
// through COPY; otherwise a multi-row INSERT is used.
func (r *StockRepo) InsertMovements(ctx context.Context, movements []ledger.Movement) error {
	if len(movements) == 0 {
		return nil
	}

	if r.txManager.GetTx(ctx) != nil {
		inserter := postgres.NewBatchInserter(r.txManager)
		if _, err := postgres.CopyStructs(ctx, inserter, MovementsTable, movements); err != nil {
			return fmt.Errorf("copy movements: %w", err)
		}
		return nil
	}

	q := r.Builder().Insert(MovementsTable).Columns(r.cols...)
	for i := range movements {
		q = q.Values(postgres.ValuesFor(postgres.StructToMap(movements[i]), r.cols)...)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movements: %w", err)
	}
	return nil
}

func (r *StockRepo) lowStockQuery(limit int) squirrel.SelectBuilder {
	return r.Builder().
		Select("id", "code", "description", "unit", "current_stock", "min_stock", "current_stock - min_stock AS gap").
		From(catalog_repo.ProductsTable).
		Where(squirrel.Eq{"is_active": true}).
		Where("current_stock < min_stock").
		OrderBy("gap ASC", "code ASC").
		Limit(uint64(limit))
}

// LowStock implements ledger.Repository.
func (r *StockRepo) LowStock(ctx context.Context, limit int) ([]ledger.LowStockItem, error) {
	sql, args, err := r.lowStockQuery(limit).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	items := make([]ledger.LowStockItem, 0, limit)
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}
	return items, nil
}

func (r *StockRepo) movementsQuery(filter ledger.MovementFilter) squirrel.SelectBuilder {
	q := r.Builder().Select(r.cols...).From(MovementsTable)
	if filter.ProductID != nil {
		q = q.Where(squirrel.Expr("product_id = ?", *filter.ProductID))
	}
	if filter.DocumentID != nil {
		q = q.Where(squirrel.Expr("document_id = ?", *filter.DocumentID))
	}
	if filter.Direction != nil {
		q = q.Where(squirrel.Eq{"direction": *filter.Direction})
	}
	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"recorded_at": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.Lt{"recorded_at": *filter.To})
	}
	q = q.OrderBy("recorded_at DESC", "id DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}
	return q
}

// ListMovements implements ledger.Repository.
func (r *StockRepo) ListMovements(ctx context.Context, filter ledger.MovementFilter) ([]ledger.Movement, error) {
	sql, args, err := r.movementsQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []ledger.Movement
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	return movements, nil
}
