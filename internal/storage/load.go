package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/claude/rpplanner/internal/catalog"
	"github.com/claude/rpplanner/internal/config"
)

// LoadCatalog builds the catalog from the configured source. Database
// sources are migrated and seeded from the builtin catalog when empty.
func LoadCatalog(ctx context.Context, cfg *config.Config, log *slog.Logger) (*catalog.Catalog, error) {
	switch cfg.Catalog.Source {
	case config.CatalogFile:
		return catalog.LoadFile(cfg.Catalog.Path)

	case config.CatalogPostgres:
		dsn := cfg.Database.DSN()
		if err := RunMigrations(dsn, cfg.Database.Migrations); err != nil {
			return nil, err
		}
		db, err := New(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		defer db.Close()
		return seedAndLoad(ctx, db, log)

	case config.CatalogSQLite:
		db, err := OpenSQLite(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return seedAndLoad(ctx, db, log)

	default:
		return catalog.Default()
	}
}

type seedableSource interface {
	catalog.Source
	SeedCatalog(ctx context.Context, cat *catalog.Catalog) (bool, error)
}

func seedAndLoad(ctx context.Context, src seedableSource, log *slog.Logger) (*catalog.Catalog, error) {
	builtin, err := catalog.Default()
	if err != nil {
		return nil, err
	}
	seeded, err := src.SeedCatalog(ctx, builtin)
	if err != nil {
		return nil, err
	}
	if seeded {
		log.Info("seeded empty catalog", "muscles", len(builtin.Muscles()), "exercises", len(builtin.Exercises()))
	}
	return catalog.Load(ctx, src)
}
