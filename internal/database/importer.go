package database

import (
	"context"
	"log/slog"

	"github.com/maltedev/evspare-scraper/internal/scraper"
)

// CatalogImporter loads every finished scrape into the catalog tables.
type CatalogImporter struct {
	db     *DB
	logger *slog.Logger
}

func NewCatalogImporter(db *DB, logger *slog.Logger) *CatalogImporter {
	return &CatalogImporter{
		db:     db,
		logger: logger.With("component", "catalog_importer"),
	}
}

func (ci *CatalogImporter) Name() string {
	return "catalog_import"
}

func (ci *CatalogImporter) AfterRun(ctx context.Context, result *scraper.RunResult) error {
	stats, err := ci.db.ImportCatalog(ctx, result.RunID, result.Products)
	if err != nil {
		return err
	}

	ci.logger.Info("catalog imported",
		"run_id", result.RunID,
		"categories", stats.Categories,
		"products", stats.Products)
	return nil
}
