// Package app wires the PostgreSQL store, the domain services and the
// optional dashboard cache into one graph shared by the binaries.
package app

import (
	"context"
	"fmt"

	"inventario/internal/config"
	"inventario/internal/domain"
	"inventario/internal/domain/catalogs/product"
	"inventario/internal/domain/dashboard"
	"inventario/internal/domain/documents"
	"inventario/internal/domain/documents/dispatch"
	"inventario/internal/domain/documents/order"
	"inventario/internal/domain/documents/quotation"
	"inventario/internal/domain/documents/reception"
	"inventario/internal/domain/documents/returns"
	"inventario/internal/domain/ledger"
	"inventario/internal/domain/replenishment"
	"inventario/internal/infrastructure/cache"
	v1 "inventario/internal/infrastructure/http/v1"
	"inventario/internal/infrastructure/http/v1/handlers"
	"inventario/internal/infrastructure/numerator"
	"inventario/internal/infrastructure/storage/postgres"
	"inventario/internal/infrastructure/storage/postgres/catalog_repo"
	"inventario/internal/infrastructure/storage/postgres/document_repo"
	"inventario/internal/infrastructure/storage/postgres/ledger_repo"
	"inventario/internal/infrastructure/storage/postgres/report_repo"
	"inventario/pkg/logger"
)

// App is the wired service graph.
type App struct {
	Pool      *postgres.Pool
	TxManager *postgres.TxManager
	Audit     *postgres.AuditLogger

	// Cache is nil when redis.addr is empty or unreachable at startup.
	Cache *cache.DashboardCache

	Products      *product.Service
	Ledger        *ledger.Service
	Orders        *order.Service
	Quotations    *quotation.Service
	Dispatches    *dispatch.Service
	Receptions    *reception.Service
	Returns       *returns.Service
	Converter     *quotation.Converter
	Dashboard     *dashboard.Service
	Replenishment *replenishment.Service
}

// New connects to PostgreSQL (and redis when configured) and builds every service.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	poolCfg := postgres.DefaultPoolConfig(cfg.Database.URL)
	if cfg.Database.MaxConns > 0 {
		poolCfg.MaxConns = cfg.Database.MaxConns
	}
	if cfg.Database.MinConns > 0 {
		poolCfg.MinConns = cfg.Database.MinConns
	}
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	txOpts := postgres.DefaultTxOptions()
	txOpts.MaxRetries = cfg.Database.TxRetries
	if cfg.Database.StatementTimeout > 0 {
		txOpts.StatementTimeout = cfg.Database.StatementTimeout
	}
	txm := postgres.NewTxManagerWithOptions(pool.Pool, txOpts)

	a, err := build(txm, cfg)
	if err != nil {
		pool.Close()
		return nil, err
	}
	a.Pool = pool

	if cfg.Redis.Addr != "" {
		c, err := cache.NewDashboardCache(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warnw("dashboard cache disabled", "addr", cfg.Redis.Addr, "error", err)
		} else {
			a.Cache = c
		}
	}
	a.Dashboard = newDashboard(txm, a.Cache, cfg)
	a.invalidateDashboardOnStockChange()

	return a, nil
}

// invalidateDashboardOnStockChange drops the cached summary after every
// committed transition of a document type whose lifecycle moves stock.
func (a *App) invalidateDashboardOnStockChange() {
	a.Orders.Hooks().OnAfterTransition(invalidateDashboard[*order.Order](a.Dashboard))
	a.Dispatches.Hooks().OnAfterTransition(invalidateDashboard[*dispatch.DispatchNote](a.Dashboard))
	a.Receptions.Hooks().OnAfterTransition(invalidateDashboard[*reception.ReceptionNote](a.Dashboard))
	a.Returns.Hooks().OnAfterTransition(invalidateDashboard[*returns.ReturnNote](a.Dashboard))
}

func invalidateDashboard[T any](d *dashboard.Service) domain.Hook[T] {
	return func(ctx context.Context, _ T) error {
		d.Invalidate(ctx)
		return nil
	}
}

func build(txm *postgres.TxManager, cfg *config.Config) (*App, error) {
	auditLog, err := postgres.NewAuditLogger(txm)
	if err != nil {
		return nil, fmt.Errorf("create audit logger: %w", err)
	}

	policy, err := replenishment.NewPolicy(cfg.Replenishment.QuantityRule)
	if err != nil {
		return nil, fmt.Errorf("replenishment rule: %w", err)
	}

	numbers := numerator.New(func(ctx context.Context) numerator.Querier {
		return txm.GetQuerier(ctx)
	}, numerator.DocumentTables())

	products := product.NewService(catalog_repo.NewProductRepo(txm), txm)
	stock := ledger.NewService(ledger_repo.NewStockRepo(txm), txm)

	a := &App{
		TxManager: txm,
		Audit:     auditLog,
		Products:  products,
		Ledger:    stock,
	}
	pol := cfg.Documents

	a.Orders = order.NewService(documents.Config[*order.Order]{
		Repo:      document_repo.NewOrderRepo(txm),
		TxManager: txm,
		Numerator: numbers,
		Ledger:    stock,
		Prices:    products,
		Audit:     auditLog,
	}, order.Options{PriceRule: pol.Order.PriceRule, CheckStock: pol.Order.CheckStock})

	a.Quotations = quotation.NewService(documents.Config[*quotation.Quotation]{
		Repo:      document_repo.NewQuotationRepo(txm),
		TxManager: txm,
		Numerator: numbers,
		Ledger:    stock,
		Prices:    products,
		Audit:     auditLog,
	}, quotation.Options{PriceRule: pol.Quotation.PriceRule})

	a.Dispatches = dispatch.NewService(documents.Config[*dispatch.DispatchNote]{
		Repo:      document_repo.NewDispatchNoteRepo(txm),
		TxManager: txm,
		Numerator: numbers,
		Ledger:    stock,
		Prices:    products,
		Audit:     auditLog,
	}, dispatch.Options{
		Prefix:         cfg.Numbering.DispatchPrefix,
		PriceRule:      pol.Dispatch.PriceRule,
		DecrementStock: pol.Dispatch.DecrementStock,
	})

	a.Receptions = reception.NewService(documents.Config[*reception.ReceptionNote]{
		Repo:      document_repo.NewReceptionNoteRepo(txm),
		TxManager: txm,
		Numerator: numbers,
		Ledger:    stock,
		Prices:    products,
		Audit:     auditLog,
	}, reception.Options{PriceRule: pol.Reception.PriceRule})

	a.Returns = returns.NewService(documents.Config[*returns.ReturnNote]{
		Repo:      document_repo.NewReturnNoteRepo(txm),
		TxManager: txm,
		Numerator: numbers,
		Ledger:    stock,
		Prices:    products,
		Audit:     auditLog,
	}, a.Dispatches, returns.Options{PriceRule: pol.Return.PriceRule})

	a.Converter = quotation.NewConverter(a.Quotations, a.Dispatches, txm, auditLog)
	a.Replenishment = replenishment.NewService(products, policy, nil)

	return a, nil
}

func newDashboard(txm *postgres.TxManager, c *cache.DashboardCache, cfg *config.Config) *dashboard.Service {
	// A nil *DashboardCache must not become a non-nil interface.
	var summaryCache dashboard.Cache
	if c != nil {
		summaryCache = c
	}
	// Validated by config.Load; nil falls back to UTC.
	loc, _ := cfg.Dashboard.Location()
	return dashboard.NewService(report_repo.NewDashboardRepo(txm), summaryCache, dashboard.Config{
		LowStockLimit: cfg.Dashboard.LowStockLimit,
		CacheTTL:      cfg.Dashboard.CacheTTL,
		Location:      loc,
	})
}

// Services exposes the graph to the HTTP router.
func (a *App) Services() v1.Services {
	checks := map[string]handlers.Pinger{"database": a.Pool}
	if a.Cache != nil {
		checks["cache"] = a.Cache
	}
	return v1.Services{
		Products:      a.Products,
		Stock:         a.Ledger,
		Replenishment: a.Replenishment,
		Orders:        a.Orders,
		Quotations:    a.Quotations,
		Dispatches:    a.Dispatches,
		Receptions:    a.Receptions,
		Returns:       a.Returns,
		Converter:     a.Converter,
		Dashboard:     a.Dashboard,
		History:       a.Audit,
		HealthChecks:  checks,
	}
}

// Close releases the pool and the cache client.
func (a *App) Close() {
	if a.Cache != nil {
		_ = a.Cache.Close()
	}
	if a.Pool != nil {
		a.Pool.Close()
	}
}
