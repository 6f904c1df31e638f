package numerator

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corenumerator "inventario/internal/core/numerator"
)

type mockRow struct {
	val string
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if ptr, ok := dest[0].(*string); ok {
		*ptr = m.val
	}
	return nil
}

type mockQuerier struct {
	last    string
	noRows  bool
	execErr error

	locks []string
	sql   string
	args  []any
}

func (m *mockQuerier) Exec(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
	if m.execErr != nil {
		return pgconn.CommandTag{}, m.execErr
	}
	m.locks = append(m.locks, args[0].(string))
	return pgconn.NewCommandTag("SELECT 1"), nil
}

func (m *mockQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	m.sql, m.args = sql, args
	if m.noRows {
		return &mockRow{err: pgx.ErrNoRows}
	}
	return &mockRow{val: m.last}
}

// tableQuerier evaluates the last-number query against an in-memory column.
type tableQuerier struct {
	numbers []string
}

func (m *tableQuerier) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag("SELECT 1"), nil
}

func (m *tableQuerier) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	prefix := strings.TrimSuffix(args[0].(string), "%")
	prefix = strings.NewReplacer(`\\`, `\`, `\%`, `%`, `\_`, `_`).Replace(prefix)
	re := regexp.MustCompile(args[1].(string))

	var matched []string
	for _, n := range m.numbers {
		if strings.HasPrefix(n, prefix) && re.MatchString(n) {
			matched = append(matched, n)
		}
	}
	if len(matched) == 0 {
		return &mockRow{err: pgx.ErrNoRows}
	}
	sort.Slice(matched, func(i, j int) bool {
		if len(matched[i]) != len(matched[j]) {
			return len(matched[i]) > len(matched[j])
		}
		return matched[i] > matched[j]
	})
	return &mockRow{val: matched[0]}
}

func newService(q Querier) *Service {
	return New(func(context.Context) Querier { return q }, DocumentTables())
}

var (
	orders     = corenumerator.NewScheme("order", "ORD", corenumerator.PeriodYear)
	receptions = corenumerator.NewScheme("reception_note", "REC", corenumerator.PeriodMonth)
	at         = time.Date(2025, 3, 9, 10, 0, 0, 0, time.UTC)
)

func TestNext(t *testing.T) {
	tests := []struct {
		name   string
		scheme corenumerator.Scheme
		q      *mockQuerier
		want   string
	}{
		{"first of year", orders, &mockQuerier{noRows: true}, "ORD-2025-0001"},
		{"increments last", orders, &mockQuerier{last: "ORD-2025-0041"}, "ORD-2025-0042"},
		{"grows past pad width", orders, &mockQuerier{last: "ORD-2025-9999"}, "ORD-2025-10000"},
		{"suffix overflow restarts", orders, &mockQuerier{last: "ORD-2025-99999999999999999999"}, "ORD-2025-0001"},
		{"monthly scope", receptions, &mockQuerier{last: "REC-2025-03-0007"}, "REC-2025-03-0008"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newService(tt.q).Next(context.Background(), tt.scheme, at)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			require.Len(t, tt.q.locks, 1)
			assert.Equal(t, LockKey(tt.scheme, at), tt.q.locks[0])
		})
	}
}

func TestNext_SkipsNonNumericNumbers(t *testing.T) {
	tests := []struct {
		name    string
		numbers []string
		want    string
	}{
		{"manual number sorts highest", []string{"ORD-2025-0041", "ORD-2025-0042", "ORD-2025-0099X"}, "ORD-2025-0043"},
		{"longer manual number", []string{"ORD-2025-0007", "ORD-2025-0008-REV2"}, "ORD-2025-0009"},
		{"only manual numbers", []string{"ORD-2025-A", "ORD-2025-"}, "ORD-2025-0001"},
		{"other period ignored", []string{"ORD-2024-0500", "ORD-2025-0002"}, "ORD-2025-0003"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newService(&tableQuerier{numbers: tt.numbers}).Next(context.Background(), orders, at)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNext_Errors(t *testing.T) {
	_, err := newService(&mockQuerier{}).Next(context.Background(),
		corenumerator.NewScheme("invoice", "INV", corenumerator.PeriodYear), at)
	assert.ErrorContains(t, err, "no table")

	_, err = newService(&mockQuerier{execErr: errors.New("conn closed")}).Next(context.Background(), orders, at)
	assert.ErrorContains(t, err, "lock sequence order:2025")

	_, err = newService(&mockQuerier{}).Next(context.Background(), corenumerator.Scheme{}, at)
	assert.Error(t, err)
}

func TestLastNumberQuery(t *testing.T) {
	sql, args, err := LastNumberQuery("doc_orders", "ORD-2025-").ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT number FROM doc_orders WHERE number LIKE $1 AND number ~ $2 ORDER BY length(number) DESC, number DESC LIMIT 1",
		sql)
	assert.Equal(t, []any{"ORD-2025-%", `^ORD-2025-[0-9]+$`}, args)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `A\_B\%-`, escapeLike("A_B%-"))
	assert.False(t, strings.Contains(escapeLike("DES-2025-"), `\`))
}

func TestLockKey(t *testing.T) {
	assert.Equal(t, "order:2025", LockKey(orders, at))
	assert.Equal(t, "reception_note:2025-03", LockKey(receptions, at))
}
