package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventario/internal/core/entity"
	"inventario/internal/domain/ledger"
)

type fakeRepo struct {
	total, critical int64
	in, out         int64
	low             []ledger.LowStockItem
	failing         map[string]bool
	since           time.Time
	calls           int
}

var errDown = errors.New("relation does not exist")

func (f *fakeRepo) TotalProductCount(context.Context) (int64, error) {
	f.calls++
	if f.failing[MetricTotalProducts] {
		return 0, errDown
	}
	return f.total, nil
}

func (f *fakeRepo) CriticalStockCount(context.Context) (int64, error) {
	if f.failing[MetricCritical] {
		return 0, errDown
	}
	return f.critical, nil
}

func (f *fakeRepo) MovementsSince(_ context.Context, d ledger.Direction, since time.Time) (int64, error) {
	f.since = since
	if d == ledger.DirectionIn {
		if f.failing[MetricMovementsIn] {
			return 0, errDown
		}
		return f.in, nil
	}
	if f.failing[MetricMovementsOut] {
		return 0, errDown
	}
	return f.out, nil
}

func (f *fakeRepo) LowStock(_ context.Context, limit int) ([]ledger.LowStockItem, error) {
	if f.failing[MetricLowStock] {
		return nil, errDown
	}
	if len(f.low) > limit {
		return f.low[:limit], nil
	}
	return f.low, nil
}

type memCache struct {
	stored        *Summary
	getErr        error
	invalidateErr error
	invalidations int
}

func (c *memCache) Get(context.Context) (*Summary, error) { return c.stored, c.getErr }

func (c *memCache) Set(_ context.Context, s *Summary, _ time.Duration) error {
	c.stored = s
	return nil
}

func (c *memCache) Invalidate(context.Context) error {
	c.invalidations++
	if c.invalidateErr != nil {
		return c.invalidateErr
	}
	c.stored = nil
	return nil
}

func fixedNow() time.Time { return time.Date(2025, 4, 8, 16, 45, 0, 0, time.UTC) }

func TestSummary_AllMetrics(t *testing.T) {
	repo := &fakeRepo{
		total: 42, critical: 1, in: 3, out: 5,
		low: []ledger.LowStockItem{{ProductID: entity.NewID(), Code: "A", CurrentStock: 2, MinStock: 10, Gap: -8}},
	}
	svc := NewService(repo, nil, Config{Now: fixedNow})

	sum := svc.Summary(context.Background())

	assert.Equal(t, int64(42), sum.TotalProducts)
	assert.Equal(t, int64(1), sum.CriticalProducts)
	assert.Equal(t, int64(3), sum.MovementsInToday)
	assert.Equal(t, int64(5), sum.MovementsOutToday)
	require.Len(t, sum.LowStock, 1)
	assert.Empty(t, sum.Degraded)
	assert.Equal(t, time.Date(2025, 4, 8, 0, 0, 0, 0, time.UTC), repo.since)
}

func TestSummary_FailingMetricIsZeroed(t *testing.T) {
	repo := &fakeRepo{
		total: 42, critical: 4, in: 3, out: 5,
		failing: map[string]bool{MetricCritical: true, MetricLowStock: true},
	}
	svc := NewService(repo, nil, Config{Now: fixedNow})

	sum := svc.Summary(context.Background())

	assert.Equal(t, int64(42), sum.TotalProducts)
	assert.Zero(t, sum.CriticalProducts)
	assert.Equal(t, int64(3), sum.MovementsInToday)
	assert.NotNil(t, sum.LowStock)
	assert.Empty(t, sum.LowStock)
	assert.ElementsMatch(t, []string{MetricCritical, MetricLowStock}, sum.Degraded)
}

func TestSummary_CacheHitAndDegradedNotCached(t *testing.T) {
	repo := &fakeRepo{total: 7}
	cache := &memCache{}
	svc := NewService(repo, cache, Config{Now: fixedNow, CacheTTL: time.Minute})
	ctx := context.Background()

	first := svc.Summary(ctx)
	second := svc.Summary(ctx)
	assert.Same(t, first, second)
	assert.Equal(t, 1, repo.calls)

	cache.stored = nil
	repo.failing = map[string]bool{MetricTotalProducts: true}
	svc.Summary(ctx)
	assert.Nil(t, cache.stored)
}

func TestSummary_CacheErrorFallsBackToQuery(t *testing.T) {
	repo := &fakeRepo{total: 9}
	svc := NewService(repo, &memCache{getErr: errors.New("connection refused")}, Config{Now: fixedNow, CacheTTL: time.Minute})

	sum := svc.Summary(context.Background())
	assert.Equal(t, int64(9), sum.TotalProducts)
}

func TestInvalidate_NextSummaryRecomputes(t *testing.T) {
	tests := []struct {
		name      string
		cache     *memCache
		wantCalls int
	}{
		{"cache cleared", &memCache{}, 2},
		{"invalidation fails", &memCache{invalidateErr: errors.New("connection refused")}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{total: 3}
			svc := NewService(repo, tt.cache, Config{Now: fixedNow, CacheTTL: time.Minute})
			ctx := context.Background()

			svc.Summary(ctx)
			svc.Invalidate(ctx)
			svc.Summary(ctx)

			assert.Equal(t, 1, tt.cache.invalidations)
			assert.Equal(t, tt.wantCalls, repo.calls)
		})
	}

	assert.NotPanics(t, func() { NewService(&fakeRepo{}, nil, Config{}).Invalidate(context.Background()) })
}

func TestLowStock_LimitBounds(t *testing.T) {
	low := make([]ledger.LowStockItem, 150)
	svc := NewService(&fakeRepo{low: low}, nil, Config{})

	items, err := svc.LowStock(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, items, DefaultLowStockLimit)

	items, err = svc.LowStock(context.Background(), 1000)
	require.NoError(t, err)
	assert.Len(t, items, maxLowStockLimit)
}
