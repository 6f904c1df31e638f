package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// BatchInserter writes many rows in one round trip using the COPY protocol.
// Used for document lines and stock movements.
type BatchInserter struct {
	txManager *TxManager
}

// NewBatchInserter creates a new batch inserter.
func NewBatchInserter(txManager *TxManager) *BatchInserter {
	return &BatchInserter{txManager: txManager}
}

// CopyFromSlice bulk-inserts rows into table. It must run inside a transaction
// so the rows become visible together with the rest of the unit of work.
func (b *BatchInserter) CopyFromSlice(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	tx := b.txManager.GetTx(ctx)
	if tx == nil {
		return 0, fmt.Errorf("copy into %s requires transaction context", table)
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return n, fmt.Errorf("copy into %s: %w", table, err)
	}
	return n, nil
}

// CopyStructs bulk-inserts records of T using their "db" columns.
func CopyStructs[T any](ctx context.Context, b *BatchInserter, table string, records []T, exclude ...string) (int64, error) {
	columns := ExtractDBColumns[T](exclude...)
	rows := make([][]any, 0, len(records))
	for i := range records {
		row := ValuesFor(StructToMap(&records[i]), columns)
		for j, v := range row {
			row[j] = copyValue(v)
		}
		rows = append(rows, row)
	}
	return b.CopyFromSlice(ctx, table, columns, rows)
}

// copyValue adapts values whose binary COPY encoding pgx cannot derive.
func copyValue(v any) any {
	if d, ok := v.(decimal.Decimal); ok {
		return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
	}
	return v
}
