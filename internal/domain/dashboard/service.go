package dashboard

import (
	"context"
	"time"

	"inventario/internal/domain/ledger"
	"inventario/pkg/logger"
)

// Metric names reported in Summary.Degraded.
const (
	MetricTotalProducts = "totalProducts"
	MetricCritical      = "criticalProducts"
	MetricMovementsIn   = "movementsInToday"
	MetricMovementsOut  = "movementsOutToday"
	MetricLowStock      = "lowStock"
)

const (
	DefaultLowStockLimit = 10
	maxLowStockLimit     = 100
)

// Config tunes the aggregator.
type Config struct {
	LowStockLimit int
	// CacheTTL of zero disables caching even when a Cache is set.
	CacheTTL time.Duration
	Location *time.Location
	Now      func() time.Time
}

// Service builds the dashboard summary.
type Service struct {
	repo  Repository
	cache Cache
	cfg   Config
}

// NewService creates a dashboard service. cache may be nil.
func NewService(repo Repository, cache Cache, cfg Config) *Service {
	if cfg.LowStockLimit <= 0 {
		cfg.LowStockLimit = DefaultLowStockLimit
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{repo: repo, cache: cache, cfg: cfg}
}

// Summary returns the dashboard figures. It never fails: each metric is
// queried on its own and a failing one is logged and reported as zero.
func (s *Service) Summary(ctx context.Context) *Summary {
	if cached := s.fromCache(ctx); cached != nil {
		return cached
	}

	now := s.cfg.Now().In(s.cfg.Location)
	since := startOfDay(now)
	sum := &Summary{GeneratedAt: now.UTC(), LowStock: []ledger.LowStockItem{}}

	sum.TotalProducts = s.count(ctx, sum, MetricTotalProducts, s.repo.TotalProductCount)
	sum.CriticalProducts = s.count(ctx, sum, MetricCritical, s.repo.CriticalStockCount)
	sum.MovementsInToday = s.count(ctx, sum, MetricMovementsIn, func(ctx context.Context) (int64, error) {
		return s.repo.MovementsSince(ctx, ledger.DirectionIn, since)
	})
	sum.MovementsOutToday = s.count(ctx, sum, MetricMovementsOut, func(ctx context.Context) (int64, error) {
		return s.repo.MovementsSince(ctx, ledger.DirectionOut, since)
	})

	items, err := s.repo.LowStock(ctx, s.cfg.LowStockLimit)
	if err != nil {
		s.degrade(ctx, sum, MetricLowStock, err)
	} else if items != nil {
		sum.LowStock = items
	}

	if len(sum.Degraded) == 0 {
		s.toCache(ctx, sum)
	}
	return sum
}

// Invalidate drops the cached summary so the next Summary call recomputes it.
// A cache failure is logged; the entry then expires with its TTL.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		logger.Warn(ctx, "dashboard cache invalidation failed", "error", err)
	}
}

// LowStock lists the most critical products.
func (s *Service) LowStock(ctx context.Context, limit int) ([]ledger.LowStockItem, error) {
	if limit <= 0 {
		limit = s.cfg.LowStockLimit
	}
	if limit > maxLowStockLimit {
		limit = maxLowStockLimit
	}
	return s.repo.LowStock(ctx, limit)
}

// TotalProductCount counts all products.
func (s *Service) TotalProductCount(ctx context.Context) (int64, error) {
	return s.repo.TotalProductCount(ctx)
}

// CriticalStockCount counts products below their minimum stock.
func (s *Service) CriticalStockCount(ctx context.Context) (int64, error) {
	return s.repo.CriticalStockCount(ctx)
}

// MovementsToday counts today's movements in direction.
func (s *Service) MovementsToday(ctx context.Context, direction ledger.Direction) (int64, error) {
	return s.repo.MovementsSince(ctx, direction, startOfDay(s.cfg.Now().In(s.cfg.Location)))
}

func (s *Service) count(ctx context.Context, sum *Summary, metric string, query func(context.Context) (int64, error)) int64 {
	n, err := query(ctx)
	if err != nil {
		s.degrade(ctx, sum, metric, err)
		return 0
	}
	return n
}

func (s *Service) degrade(ctx context.Context, sum *Summary, metric string, err error) {
	sum.Degraded = append(sum.Degraded, metric)
	logger.Warn(ctx, "dashboard metric unavailable", "metric", metric, "error", err)
}

func (s *Service) fromCache(ctx context.Context) *Summary {
	if s.cache == nil || s.cfg.CacheTTL <= 0 {
		return nil
	}
	cached, err := s.cache.Get(ctx)
	if err != nil {
		logger.Warn(ctx, "dashboard cache read failed", "error", err)
		return nil
	}
	return cached
}

func (s *Service) toCache(ctx context.Context, sum *Summary) {
	if s.cache == nil || s.cfg.CacheTTL <= 0 {
		return
	}
	if err := s.cache.Set(ctx, sum, s.cfg.CacheTTL); err != nil {
		logger.Warn(ctx, "dashboard cache write failed", "error", err)
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
