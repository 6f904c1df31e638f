// Package catalog_repo provides the PostgreSQL product catalog.
package catalog_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"inventario/internal/core/apperror"
	"inventario/internal/core/entity"
	"inventario/internal/domain"
	"inventario/internal/domain/catalogs/product"
	"inventario/internal/infrastructure/storage/postgres"
)

// ProductsTable holds the catalog and the current stock of every product.
const ProductsTable = "cat_products"

// ProductRepo implements product.Repository.
type ProductRepo struct {
	txManager *postgres.TxManager
	cols      []string
}

// NewProductRepo creates a product repository.
func NewProductRepo(txManager *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		txManager: txManager,
		cols:      postgres.ExtractDBColumns[product.Product](),
	}
}

var _ product.Repository = (*ProductRepo)(nil)

// Builder returns a new squirrel builder.
func (r *ProductRepo) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts a product with its initial stock.
func (r *ProductRepo) Create(ctx context.Context, p *product.Product) error {
	sql, args, err := r.Builder().
		Insert(ProductsTable).
		SetMap(postgres.StructToMap(p)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert product: %w", postgres.TranslateError(err, "product"))
	}
	return nil
}

// GetByID retrieves a product.
func (r *ProductRepo) GetByID(ctx context.Context, id entity.ID) (*product.Product, error) {
	return r.getOne(ctx, squirrel.Expr("id = ?", id), id.String())
}

// GetByCode retrieves a product by code.
func (r *ProductRepo) GetByCode(ctx context.Context, code string) (*product.Product, error) {
	return r.getOne(ctx, squirrel.Eq{"code": code}, code)
}

func (r *ProductRepo) getOne(ctx context.Context, where squirrel.Sqlizer, key string) (*product.Product, error) {
	sql, args, err := r.Builder().Select(r.cols...).From(ProductsTable).Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	p := &product.Product{}
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("product", key)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// Update writes catalog fields. current_stock belongs to the stock ledger
// and is never part of the statement.
func (r *ProductRepo) Update(ctx context.Context, p *product.Product) error {
	values := postgres.StructToMap(p, "id", "version", "created_at", "current_stock")

	sql, args, err := r.Builder().
		Update(ProductsTable).
		SetMap(values).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Expr("id = ?", p.ID)).
		Where(squirrel.Eq{"version": p.Version}).
		Suffix("RETURNING version").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&p.Version); err != nil {
		if postgres.IsNoRows(err) {
			return apperror.NewConcurrentModification("product", p.ID.String())
		}
		return fmt.Errorf("update product: %w", postgres.TranslateError(err, "product"))
	}
	return nil
}

// List retrieves a page of products ordered by code.
func (r *ProductRepo) List(ctx context.Context, filter product.ListFilter) (domain.ListResult[*product.Product], error) {
	result := domain.ListResult[*product.Product]{Limit: filter.Limit, Offset: filter.Offset}

	countSQL, countArgs, err := r.Builder().Select("COUNT(*)").FromSelect(r.filtered(filter), "sub").ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count products: %w", err)
	}

	sql, args, err := r.listQuery(filter).ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list products: %w", err)
	}
	return result, nil
}

func (r *ProductRepo) filtered(filter product.ListFilter) squirrel.SelectBuilder {
	q := r.Builder().Select(r.cols...).From(ProductsTable)
	if filter.ActiveOnly {
		q = q.Where(squirrel.Eq{"is_active": true})
	}
	if filter.Category != "" {
		q = q.Where(squirrel.Eq{"category": filter.Category})
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		q = q.Where(squirrel.Or{
			squirrel.ILike{"code": "%" + s + "%"},
			squirrel.ILike{"description": "%" + s + "%"},
		})
	}
	return q
}

func (r *ProductRepo) listQuery(filter product.ListFilter) squirrel.SelectBuilder {
	q := r.filtered(filter).OrderBy("code")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}
	return q
}
