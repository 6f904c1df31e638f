package report_repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventario/internal/domain/ledger"
)

func TestCriticalQuery(t *testing.T) {
	sql, args, err := NewDashboardRepo(nil).criticalQuery().ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT COUNT(*) FROM cat_products WHERE is_active = $1 AND current_stock < min_stock", sql)
	assert.Equal(t, []any{true}, args)
}

func TestMovementsQuery(t *testing.T) {
	since := time.Date(2025, 6, 2, 5, 0, 0, 0, time.UTC)

	sql, args, err := NewDashboardRepo(nil).movementsQuery(ledger.DirectionIn, since).ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT COUNT(*) FROM reg_stock_movements WHERE direction = $1 AND recorded_at >= $2", sql)
	assert.Equal(t, []any{ledger.DirectionIn, since}, args)
}
