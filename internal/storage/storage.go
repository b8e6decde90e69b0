// Package storage opens the configured backend and wires the hierarchy services over it.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/codelogn/WinWork-sub000/internal/catalog"
	"github.com/codelogn/WinWork-sub000/internal/config"
	"github.com/codelogn/WinWork-sub000/internal/repository/postgres"
	pgHier "github.com/codelogn/WinWork-sub000/internal/repository/postgres/hierarchy"
	"github.com/codelogn/WinWork-sub000/internal/repository/sqlite"
	sqliteHier "github.com/codelogn/WinWork-sub000/internal/repository/sqlite/hierarchy"
	"github.com/codelogn/WinWork-sub000/internal/service/hierarchy"
)

// Backend is an open store with its services
type Backend struct {
	Services *hierarchy.Services
	Catalog  *catalog.Registry
	Driver   string
	close    func() error
}

// Close releases the database handle
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Open connects to the backend selected by cfg.DatabaseDriver, migrates the
// schema and builds the services
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backend, error) {
	registry, err := catalog.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("load item type catalog: %w", err)
	}

	deps := hierarchy.Dependencies{
		Catalog: registry,
		Palette: cfg.TagPalette,
		Logger:  logger,
	}
	backend := &Backend{Catalog: registry, Driver: cfg.DatabaseDriver}

	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		tables := postgres.NewTableNames(cfg.TablePrefix)
		if err := postgres.Migrate(ctx, pool, tables); err != nil {
			pool.Close()
			return nil, err
		}
		repoConfig := &postgres.RepositoryConfig{Pool: pool, Tables: tables, Logger: logger}
		deps.ItemRepo = pgHier.NewItemRepository(repoConfig)
		deps.TagRepo = pgHier.NewTagRepository(repoConfig)
		deps.TxManager = postgres.NewTransactionManager(pool, tables, logger)
		backend.close = func() error {
			pool.Close()
			return nil
		}

	case config.DriverSQLite, "":
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		tables := sqlite.NewTableNames(cfg.TablePrefix)
		if err := sqlite.Migrate(ctx, db, tables); err != nil {
			_ = db.Close()
			return nil, err
		}
		repoConfig := &sqlite.RepositoryConfig{DB: db, Tables: tables, Logger: logger}
		deps.ItemRepo = sqliteHier.NewItemRepository(repoConfig)
		deps.TagRepo = sqliteHier.NewTagRepository(repoConfig)
		deps.TxManager = sqlite.NewTransactionManager(db, logger)
		backend.close = db.Close
		backend.Driver = config.DriverSQLite

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.DatabaseDriver)
	}

	backend.Services = hierarchy.NewServices(deps)
	logger.Info("storage opened",
		"driver", backend.Driver,
		"table_prefix", cfg.TablePrefix,
	)
	return backend, nil
}
