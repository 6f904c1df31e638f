// Package numerator is the PostgreSQL implementation of document numbering.
// It implements core/numerator.Generator.
package numerator

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	corenumerator "inventario/internal/core/numerator"
	"inventario/internal/domain/documents"
	"inventario/pkg/logger"
)

// Querier is the subset of pgx used here; pgx.Tx satisfies it.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// QuerierFunc resolves the querier bound to ctx (the creating transaction).
type QuerierFunc func(ctx context.Context) Querier

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// DocumentTables maps each document type to the table holding its numbers.
func DocumentTables() map[string]string {
	return map[string]string{
		string(documents.TypeOrder):         "doc_orders",
		string(documents.TypeQuotation):     "doc_quotations",
		string(documents.TypeDispatchNote):  "doc_dispatch_notes",
		string(documents.TypeReceptionNote): "doc_reception_notes",
		string(documents.TypeReturnNote):    "doc_return_notes",
	}
}

// Service derives the next number from the highest number already stored.
//
// Next must run inside the transaction that inserts the document: the
// advisory lock it takes is held until that transaction ends, so two
// creators of the same type and period are serialised and the second one
// sees the first one's number. UNIQUE constraints on the number columns are
// the backstop.
type Service struct {
	querier QuerierFunc
	tables  map[string]string
}

var _ corenumerator.Generator = (*Service)(nil)

// New creates a numerator. tables maps document type to table name.
func New(querier QuerierFunc, tables map[string]string) *Service {
	return &Service{querier: querier, tables: tables}
}

// Next implements corenumerator.Generator.
func (s *Service) Next(ctx context.Context, scheme corenumerator.Scheme, at time.Time) (string, error) {
	if s == nil {
		return "", fmt.Errorf("numerator service is not initialized")
	}
	if err := scheme.Validate(); err != nil {
		return "", err
	}
	table, ok := s.tables[scheme.DocumentType]
	if !ok {
		return "", fmt.Errorf("numerator: no table for document type %q", scheme.DocumentType)
	}

	q := s.querier(ctx)
	if _, err := q.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", LockKey(scheme, at)); err != nil {
		return "", fmt.Errorf("lock sequence %s: %w", LockKey(scheme, at), err)
	}

	query, args, err := LastNumberQuery(table, scheme.ScopePrefix(at)).ToSql()
	if err != nil {
		return "", fmt.Errorf("build last number query: %w", err)
	}

	var last string
	if err := q.QueryRow(ctx, query, args...).Scan(&last); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("read last %s number: %w", scheme.DocumentType, err)
	}

	n, parseErr := corenumerator.Next(last)
	if parseErr != nil {
		logger.Warn(ctx, "unparsable document number, restarting sequence at 1",
			"document_type", scheme.DocumentType,
			"last", last,
			"error", parseErr)
	}
	return scheme.Format(at, n), nil
}

// LockKey names the advisory lock of a (type, period) sequence.
func LockKey(scheme corenumerator.Scheme, at time.Time) string {
	return scheme.DocumentType + ":" + scheme.PeriodKey(at)
}

// LastNumberQuery selects the highest generated number with scope as prefix.
// Length is compared first so that 10000 sorts after 9999; numbers that do
// not end in digits (caller supplied) are ignored. The restart-at-1 fallback
// in Next therefore only triggers when the numeric tail overflows int64.
func LastNumberQuery(table, scope string) sq.SelectBuilder {
	return psql.Select("number").
		From(table).
		Where(sq.Like{"number": escapeLike(scope) + "%"}).
		Where(sq.Expr("number ~ ?", "^"+regexp.QuoteMeta(scope)+"[0-9]+$")).
		OrderBy("length(number) DESC", "number DESC").
		Limit(1)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
