// Package main provides a CLI tool for seeding the database with demo data.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"inventario/internal/app"
	"inventario/internal/config"
	appctx "inventario/internal/core/context"
	"inventario/internal/core/apperror"
	"inventario/internal/core/entity"
	"inventario/internal/domain/auth"
	"inventario/internal/domain/catalogs/product"
	"inventario/internal/domain/documents/reception"
	"inventario/pkg/logger"
)

// seedUser is stamped as creator of the demo records.
const seedUser = "seed"

type demoProduct struct {
	code, description, unit, category string
	price                             string
	minStock, maxStock, received      int64
}

var demoProducts = []demoProduct{
	{"TOR-001", "Tornillo hexagonal 1/4", "UND", "ferreteria", "0.35", 100, 1000, 600},
	{"CLV-002", "Clavo de acero 2 pulgadas", "KG", "ferreteria", "4.80", 20, 200, 12},
	{"PNT-003", "Pintura latex blanca 1 gal", "GAL", "pinturas", "18.50", 10, 60, 25},
	{"CEM-004", "Cemento gris 42.5 kg", "BOL", "construccion", "7.90", 50, 400, 30},
	{"CAB-005", "Cable THW 12 AWG", "M", "electricidad", "1.15", 200, 2000, 0},
}

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
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	ctx := appctx.WithActor(context.Background(), &appctx.Actor{UserID: seedUser, Source: "seed"})

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatalw("failed to connect", "error", err)
	}
	defer application.Close()

	log.Info("connected to database")

	received, err := seedProducts(ctx, application.Products, log)
	if err != nil {
		log.Fatalw("failed to seed products", "error", err)
	}

	if len(received) > 0 {
		if err := seedOpeningReception(ctx, application.Receptions, received, log); err != nil {
			log.Fatalw("failed to seed opening stock", "error", err)
		}
	}

	if cfg.Auth.JWTSecret != "" {
		token, err := auth.NewJWTService(cfg.Auth.JWTSecret).GenerateToken(seedUser, 24*time.Hour)
		if err != nil {
			log.Fatalw("failed to issue development token", "error", err)
		}
		fmt.Printf("development token (24h): %s\n", token)
	}

	log.Info("seeding completed successfully")
}

// seedProducts creates missing demo products and returns the opening
// quantities of the ones it created.
func seedProducts(ctx context.Context, products *product.Service, log *logger.Logger) (map[entity.ID]demoProduct, error) {
	created := make(map[entity.ID]demoProduct)
	for _, d := range demoProducts {
		if existing, err := products.GetByCode(ctx, d.code); err == nil {
			log.Infow("product already exists", "code", d.code, "product_id", existing.ID)
			continue
		} else if !apperror.IsNotFound(err) {
			return nil, fmt.Errorf("look up %s: %w", d.code, err)
		}

		p := product.NewProduct(d.code, d.description, decimal.RequireFromString(d.price))
		p.Unit = d.unit
		p.Category = d.category
		p.MinStock = d.minStock
		p.MaxStock = d.maxStock
		if err := products.Create(ctx, p); err != nil {
			return nil, fmt.Errorf("create %s: %w", d.code, err)
		}
		if d.received > 0 {
			created[p.ID] = d
		}
	}
	return created, nil
}

// seedOpeningReception books the opening stock as one received reception note,
// so every unit on hand has a movement behind it.
func seedOpeningReception(ctx context.Context, receptions *reception.Service, items map[entity.ID]demoProduct, log *logger.Logger) error {
	note := reception.New()
	note.Supplier = "Inventario inicial"
	note.Notes = "Opening stock"
	for id, d := range items {
		note.Lines = append(note.Lines, entity.LineItem{
			ProductID: id,
			Quantity:  d.received,
			UnitPrice: decimal.RequireFromString(d.price),
		})
	}

	if err := receptions.Create(ctx, note); err != nil {
		return fmt.Errorf("create reception note: %w", err)
	}
	if _, err := receptions.Receive(ctx, note.ID); err != nil {
		return fmt.Errorf("receive %s: %w", note.Number, err)
	}

	log.Infow("opening stock received",
		"number", note.Number,
		"lines", len(note.Lines),
		"total", note.Total.String())
	return nil
}
