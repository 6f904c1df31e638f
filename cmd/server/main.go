// Package main is the entry point for the inventario API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"inventario/internal/app"
	"inventario/internal/config"
	"inventario/internal/domain/auth"
	v1 "inventario/internal/infrastructure/http/v1"
	"inventario/internal/infrastructure/http/v1/middleware"
	"inventario/internal/infrastructure/migration"
	"inventario/pkg/logger"
)

func main() {
	// .env is optional; real environment variables win.
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

	ctx := context.Background()
	log.Info("starting inventario server")

	// --- Migrations ---
	if cfg.Server.AutoMigrate {
		if err := migrateUp(cfg.Database.URL, log); err != nil {
			log.Fatalw("failed to apply migrations", "error", err)
		}
	}

	// --- Services ---
	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatalw("failed to initialize services", "error", err)
	}
	defer application.Close()
	log.Infow("database connection established", "cache", application.Cache != nil)

	// --- Identity ---
	var tokens middleware.TokenValidator
	if cfg.Auth.JWTSecret != "" {
		tokens = auth.NewJWTService(cfg.Auth.JWTSecret)
	} else {
		log.Warn("auth.jwt_secret is empty: trusting the X-User-ID header")
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Mode:           cfg.Server.Mode,
		Logger:         log,
		TokenValidator: tokens,
		Services:       application.Services(),
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "addr", server.Addr, "mode", cfg.Server.Mode)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func migrateUp(databaseURL string, log *logger.Logger) error {
	m, err := migration.New(databaseURL, log)
	if err != nil {
		return err
	}
	defer m.Close()
	return m.Up()
}
