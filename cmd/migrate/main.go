// Package main applies the embedded schema migrations.
//
// Usage:
//
//	migrate up | down | version
//	migrate steps N
//	migrate force VERSION
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"inventario/internal/config"
	"inventario/internal/infrastructure/migration"
	"inventario/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Development: true})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	m, err := migration.New(cfg.Database.URL, log)
	if err != nil {
		log.Fatalw("failed to open migrations", "error", err)
	}
	defer m.Close()

	switch os.Args[1] {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "steps":
		err = withInt(func(n int) error { return m.Steps(n) })
	case "force":
		err = withInt(m.Force)
	case "version":
		version, dirty, verr := m.Version()
		if verr == nil {
			log.Infow("migration version", "version", version, "dirty", dirty)
		}
		err = verr
	default:
		usage()
	}
	if err != nil {
		log.Fatalw("migration failed", "command", os.Args[1], "error", err)
	}
}

func withInt(fn func(int) error) error {
	if len(os.Args) < 3 {
		usage()
	}
	n, err := strconv.Atoi(os.Args[2])
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", os.Args[2], err)
	}
	return fn(n)
}

func usage() {
	fmt.Println("usage: migrate up|down|version|steps N|force VERSION")
	os.Exit(2)
}
