package document_repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventario/internal/core/apperror"
	"inventario/internal/core/entity"
	"inventario/internal/domain"
	"inventario/internal/domain/documents"
	"inventario/internal/domain/documents/dispatch"
	"inventario/internal/domain/documents/order"
	"inventario/internal/infrastructure/storage/postgres"
)

func orderRepo() *Repo[*order.Order] {
	return NewRepo(nil, OrdersTable, postgres.ExtractDBColumns[order.Order](), order.New)
}

func TestColumns(t *testing.T) {
	r := orderRepo()
	assert.Equal(t, []string{
		"id", "version", "created_at", "updated_at", "created_by",
		"number", "status", "total", "notes",
		"client", "supplier", "order_date", "delivery_date",
	}, r.cols)
	assert.NotContains(t, r.lineCols, "brand")

	d := NewRepo(nil, DispatchNotesTable, postgres.ExtractDBColumns[dispatch.DispatchNote](), dispatch.New)
	assert.Contains(t, d.lineCols, "brand")
	assert.Contains(t, d.lineCols, "model")
	assert.Contains(t, d.cols, "license_plate")
}

func TestListQuery(t *testing.T) {
	r := orderRepo()
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	q, err := r.listQuery(documents.ListFilter{
		ListFilter: domain.ListFilter{Search: "ORD-2025", OrderBy: "-number", Limit: 20, Offset: 40},
		Status:     []entity.Status{order.StatusPending, order.StatusApproved},
		From:       &from,
	})
	require.NoError(t, err)

	sql, args, err := q.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "FROM doc_orders WHERE status IN ($1,$2) AND created_at >= $3 AND (number ILIKE $4 OR notes ILIKE $5)")
	assert.Contains(t, sql, "ORDER BY number DESC, id DESC LIMIT 20 OFFSET 40")
	assert.Equal(t, []any{order.StatusPending, order.StatusApproved, from, "%ORD-2025%", "%ORD-2025%"}, args)
}

func TestListQuery_DefaultOrder(t *testing.T) {
	q, err := orderRepo().listQuery(documents.ListFilter{})
	require.NoError(t, err)
	sql, _, err := q.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "ORDER BY created_at DESC, id DESC")
	assert.NotContains(t, sql, "WHERE")
}

func TestParseOrderBy_RejectsUnknownColumn(t *testing.T) {
	_, err := orderRepo().parseOrderBy("password; DROP TABLE doc_orders")
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	got, err := orderRepo().parseOrderBy("+total")
	require.NoError(t, err)
	assert.Equal(t, "total ASC", got)
}

func TestSelectByID_BindsWholeUUID(t *testing.T) {
	id := entity.NewID()
	sql, args, err := orderRepo().selectByID(id).Suffix("FOR UPDATE").ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM doc_orders WHERE id = $1 FOR UPDATE")
	assert.Equal(t, []any{id}, args)
}

func TestLinesQuery(t *testing.T) {
	a, b := entity.NewID(), entity.NewID()
	sql, args, err := orderRepo().linesQuery([]entity.ID{a, b}).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT id, document_id, line_no, product_id, quantity, unit_price, subtotal FROM doc_order_items WHERE document_id IN ($1,$2) ORDER BY document_id, line_no",
		sql)
	assert.Equal(t, []any{a, b}, args)
}
