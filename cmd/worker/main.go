// Package main is the entry point for the inventario background worker.
// It periodically requests replenishment for low-stock products and keeps
// the dashboard cache warm.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"inventario/internal/app"
	"inventario/internal/config"
	appctx "inventario/internal/core/context"
	"inventario/internal/infrastructure/storage/postgres"
	"inventario/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting inventario worker")

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatalw("failed to initialize services", "error", err)
	}
	defer application.Close()

	worker := NewWorker(application, cfg.Worker, log)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// Worker runs the periodic maintenance jobs.
type Worker struct {
	app *app.App
	cfg config.WorkerConfig
	log *logger.Logger
}

func NewWorker(application *app.App, cfg config.WorkerConfig, log *logger.Logger) *Worker {
	return &Worker{
		app: application,
		cfg: cfg,
		log: log.WithComponent("worker"),
	}
}

// Run executes one round immediately and then one per interval until ctx is done.
func (w *Worker) Run(ctx context.Context) {
	ctx = appctx.WithActor(ctx, &appctx.Actor{UserID: "worker", Source: "worker"})

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	w.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *Worker) tick(ctx context.Context) {
	w.sweepLowStock(ctx)
	w.warmDashboard(ctx)
	postgres.LogPoolStats(ctx, w.app.Pool.Pool)
}

func (w *Worker) sweepLowStock(ctx context.Context) {
	start := time.Now()
	requests, err := w.app.Replenishment.Sweep(ctx, w.app.Ledger, w.cfg.SweepLimit)
	if err != nil {
		w.log.Errorw("replenishment sweep failed", "error", err)
		return
	}
	if len(requests) == 0 {
		w.log.Debug("no products below minimum stock")
		return
	}

	var units int64
	for _, r := range requests {
		units += r.Quantity
	}
	w.log.Infow("replenishment requested",
		"products", len(requests),
		"units", units,
		"duration", time.Since(start))
}

// warmDashboard drops the cached summary and recomputes it, so API reads stay cheap.
func (w *Worker) warmDashboard(ctx context.Context) {
	if w.app.Cache == nil {
		return
	}
	if err := w.app.Cache.Invalidate(ctx); err != nil {
		w.log.Warnw("dashboard cache invalidation failed", "error", err)
		return
	}
	summary := w.app.Dashboard.Summary(ctx)
	w.log.Debugw("dashboard cache refreshed",
		"critical", summary.CriticalProducts,
		"degraded", len(summary.Degraded) > 0)
}
