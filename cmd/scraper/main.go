package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/maltedev/evspare-scraper/internal/config"
	"github.com/maltedev/evspare-scraper/internal/database"
	"github.com/maltedev/evspare-scraper/internal/events"
	"github.com/maltedev/evspare-scraper/internal/parser"
	"github.com/maltedev/evspare-scraper/internal/scraper"
	"github.com/maltedev/evspare-scraper/internal/storage"
	"github.com/maltedev/evspare-scraper/pkg/logger"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("scrape failed", "error", err)
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	fetcher := scraper.NewHTTPFetcher(nil, cfg.Scraper.UserAgent)
	images := storage.NewImageStore(cfg.Output.ImageDir)

	extractor := scraper.NewProductExtractor(scraper.ExtractorOptions{
		OriginURL: cfg.Scraper.OriginURL,
		Currency:  cfg.Scraper.Currency,
		Unit:      cfg.Scraper.Unit,
	}, fetcher, images, log)

	sink := storage.NewSink(storage.Paths{
		ImageDir:    cfg.Output.ImageDir,
		CSVPath:     cfg.Output.CSVPath,
		JSONPath:    cfg.Output.JSONPath,
		ArchivePath: cfg.Output.ArchivePath,
	}, log)

	pipeline := scraper.NewPipeline(cfg.Scraper.OriginURL, fetcher, parser.NewHTMLParser(), extractor, images, sink, log)

	if cfg.Database.ImportEnabled {
		db, err := database.New(ctx, database.Config{
			DSN:         cfg.Database.DSN(),
			MaxConns:    cfg.Database.MaxConns,
			MinConns:    cfg.Database.MinConns,
			MaxConnLife: cfg.Database.MaxConnLife,
			MaxConnIdle: cfg.Database.MaxConnIdle,
		})
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.EnsureSchema(ctx); err != nil {
			return err
		}
		pipeline.AddHook(database.NewCatalogImporter(db, log))
	}

	if cfg.Redis.EventsEnabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable, events disabled", "addr", cfg.Redis.Addr, "error", err)
		} else {
			pipeline.AddHook(events.NewPublisher(redisClient, cfg.Redis.Stream, log))
		}
	}

	result, err := pipeline.Run(ctx)
	if err != nil {
		return err
	}

	log.Info("scrape complete",
		"products", len(result.Products),
		"images", result.ImageCount(),
		"csv", result.Output.CSVPath,
		"json", result.Output.JSONPath,
		"archive", result.Output.ArchivePath,
		"duration", result.FinishedAt.Sub(result.StartedAt))
	return nil
}
