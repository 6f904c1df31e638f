// Package document_repo provides the PostgreSQL repositories of all document types.
// One generic repository serves every type; types differ only in tables and columns.
package document_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"inventario/internal/core/apperror"
	"inventario/internal/core/entity"
	"inventario/internal/domain"
	"inventario/internal/domain/documents"
	"inventario/internal/infrastructure/storage/postgres"
)

// Table names the header and line tables of one document type.
type Table struct {
	Name  string
	Lines string
	// LineExclude lists LineItem columns the line table does not have.
	LineExclude []string
}

// Repo implements documents.Repository for T.
type Repo[T documents.Doc] struct {
	txManager *postgres.TxManager
	batch     *postgres.BatchInserter
	table     Table
	cols      []string
	lineCols  []string
	newFn     func() T
}

// NewRepo creates a document repository. cols are the header columns of T.
func NewRepo[T documents.Doc](txManager *postgres.TxManager, table Table, cols []string, newFn func() T) *Repo[T] {
	return &Repo[T]{
		txManager: txManager,
		batch:     postgres.NewBatchInserter(txManager),
		table:     table,
		cols:      cols,
		lineCols:  postgres.ExtractDBColumns[entity.LineItem](table.LineExclude...),
		newFn:     newFn,
	}
}

// Builder returns a new squirrel builder.
//
// IDs are bound with squirrel.Expr: uuid.UUID is an array and squirrel.Eq
// would expand it into an IN list of bytes.
func (r *Repo[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts the header and its lines.
func (r *Repo[T]) Create(ctx context.Context, doc T) error {
	data := postgres.StructToMap(doc)
	values := make(map[string]any, len(r.cols))
	for _, col := range r.cols {
		if v, ok := data[col]; ok {
			values[col] = v
		}
	}

	sql, args, err := r.Builder().Insert(r.table.Name).SetMap(values).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", r.table.Name, postgres.TranslateError(err, r.table.Name))
	}

	return r.insertLines(ctx, *doc.LineItems())
}

// Update writes the header if the stored version still matches and bumps it.
func (r *Repo[T]) Update(ctx context.Context, doc T) error {
	h := doc.Header()
	data := postgres.StructToMap(doc)

	values := make(map[string]any, len(r.cols))
	for _, col := range r.cols {
		switch col {
		case "id", "version", "created_at", "created_by", "number":
			continue
		}
		if v, ok := data[col]; ok {
			values[col] = v
		}
	}

	sql, args, err := r.Builder().
		Update(r.table.Name).
		SetMap(values).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Expr("id = ?", h.ID)).
		Where(squirrel.Eq{"version": h.Version}).
		Suffix("RETURNING version").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, args...).Scan(&h.Version); err != nil {
		if postgres.IsNoRows(err) {
			return apperror.NewConcurrentModification(r.table.Name, h.ID.String())
		}
		return fmt.Errorf("update %s: %w", r.table.Name, postgres.TranslateError(err, r.table.Name))
	}
	return nil
}

// ReplaceLines swaps the whole line set of a document.
func (r *Repo[T]) ReplaceLines(ctx context.Context, documentID entity.ID, lines []entity.LineItem) error {
	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, "DELETE FROM "+r.table.Lines+" WHERE document_id = $1", documentID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}
	return r.insertLines(ctx, lines)
}

func (r *Repo[T]) insertLines(ctx context.Context, lines []entity.LineItem) error {
	if len(lines) == 0 {
		return nil
	}
	if _, err := postgres.CopyStructs(ctx, r.batch, r.table.Lines, lines, r.table.LineExclude...); err != nil {
		return postgres.TranslateError(err, r.table.Lines)
	}
	return nil
}

// Delete removes a document; its lines cascade.
func (r *Repo[T]) Delete(ctx context.Context, id entity.ID) error {
	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, "DELETE FROM "+r.table.Name+" WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.table.Name, postgres.TranslateError(err, r.table.Name))
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.table.Name, id.String())
	}
	return nil
}

// GetByID retrieves a document with its lines.
func (r *Repo[T]) GetByID(ctx context.Context, id entity.ID) (T, error) {
	return r.get(ctx, r.selectByID(id))
}

// GetForUpdate retrieves a document with its header row locked.
func (r *Repo[T]) GetForUpdate(ctx context.Context, id entity.ID) (T, error) {
	return r.get(ctx, r.selectByID(id).Suffix("FOR UPDATE"))
}

func (r *Repo[T]) selectByID(id entity.ID) squirrel.SelectBuilder {
	return r.Builder().
		Select(r.cols...).
		From(r.table.Name).
		Where(squirrel.Expr("id = ?", id))
}

func (r *Repo[T]) get(ctx context.Context, q squirrel.SelectBuilder) (T, error) {
	doc := r.newFn()
	sql, args, err := q.ToSql()
	if err != nil {
		return doc, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, doc, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return doc, apperror.NewNotFound(r.table.Name, args[0])
		}
		return doc, fmt.Errorf("get %s: %w", r.table.Name, err)
	}

	lines, err := r.loadLines(ctx, doc.Header().ID)
	if err != nil {
		return doc, err
	}
	*doc.LineItems() = lines[doc.Header().ID]
	return doc, nil
}

func (r *Repo[T]) loadLines(ctx context.Context, ids ...entity.ID) (map[entity.ID][]entity.LineItem, error) {
	out := make(map[entity.ID][]entity.LineItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	sql, args, err := r.linesQuery(ids).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lines query: %w", err)
	}

	var lines []entity.LineItem
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	for _, l := range lines {
		out[l.DocumentID] = append(out[l.DocumentID], l)
	}
	return out, nil
}

func (r *Repo[T]) linesQuery(ids []entity.ID) squirrel.SelectBuilder {
	return r.Builder().
		Select(r.lineCols...).
		From(r.table.Lines).
		Where(squirrel.Eq{"document_id": ids}).
		OrderBy("document_id", "line_no")
}

// List retrieves a page of documents with their lines.
func (r *Repo[T]) List(ctx context.Context, filter documents.ListFilter) (domain.ListResult[T], error) {
	result := domain.ListResult[T]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q, err := r.listQuery(filter)
	if err != nil {
		return result, err
	}

	countSQL, countArgs, err := r.Builder().Select("COUNT(*)").FromSelect(r.filtered(filter), "sub").ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list %s: %w", r.table.Name, err)
	}

	ids := make([]entity.ID, len(result.Items))
	for i, doc := range result.Items {
		ids[i] = doc.Header().ID
	}
	lines, err := r.loadLines(ctx, ids...)
	if err != nil {
		return result, err
	}
	for _, doc := range result.Items {
		*doc.LineItems() = lines[doc.Header().ID]
	}

	return result, nil
}

func (r *Repo[T]) filtered(filter documents.ListFilter) squirrel.SelectBuilder {
	q := r.Builder().Select(r.cols...).From(r.table.Name)

	if len(filter.Status) > 0 {
		q = q.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.Lt{"created_at": *filter.To})
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		q = q.Where(squirrel.Or{
			squirrel.ILike{"number": "%" + s + "%"},
			squirrel.ILike{"notes": "%" + s + "%"},
		})
	}
	return q
}

func (r *Repo[T]) listQuery(filter documents.ListFilter) (squirrel.SelectBuilder, error) {
	orderBy, err := r.parseOrderBy(filter.OrderBy)
	if err != nil {
		return squirrel.SelectBuilder{}, err
	}

	q := r.filtered(filter).OrderBy(orderBy, "id DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}
	return q, nil
}

func (r *Repo[T]) parseOrderBy(orderBy string) (string, error) {
	if strings.TrimSpace(orderBy) == "" {
		return "created_at DESC", nil
	}

	direction := "ASC"
	field := orderBy
	if strings.HasPrefix(orderBy, "-") {
		direction = "DESC"
		field = strings.TrimPrefix(orderBy, "-")
	} else if strings.HasPrefix(orderBy, "+") {
		field = strings.TrimPrefix(orderBy, "+")
	}

	field = strings.TrimSpace(field)
	for _, col := range r.cols {
		if col == field {
			return field + " " + direction, nil
		}
	}
	return "", apperror.NewValidation("invalid orderBy").WithDetail("orderBy", orderBy).WithDetail("field", field)
}
