// Package internal provides the application initialization and pipeline logic.
package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/starford/patterns-sync/internal/extractor"
	"github.com/starford/patterns-sync/internal/index"
	"github.com/starford/patterns-sync/internal/models"
	"github.com/starford/patterns-sync/internal/publisher"
	"github.com/starford/patterns-sync/internal/storage"
)

// Run extracts every document, writes the snapshot, optionally mirrors the
// records into the index, then publishes them to the catalog. Any read,
// parse, snapshot, index or transport failure stops the run.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := app.logger
	if logger == nil {
		logger = newLogger(cfg.App, os.Stdout)
		slog.SetDefault(logger)
	}

	logger.Info("Configuration loaded",
		slog.String("content_root", cfg.Source.ContentRoot),
		slog.String("pattern", cfg.Source.Pattern),
		slog.String("snapshot_path", cfg.Snapshot.Path),
		slog.String("index_path", cfg.Index.Path),
		slog.Bool("publish", cfg.Catalog.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize storage.
	store, err := storage.NewFS(cfg.Source.ContentRoot)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	logger.Info("content root resolved", slog.String("root", store.Root()))

	pageURL, err := extractor.NewRule(cfg.Site.PageURL.Pattern, cfg.Site.PageURL.Replacement)
	if err != nil {
		return err
	}
	sourceURL, err := extractor.NewRule(cfg.Site.SourceURL.Pattern, cfg.Site.SourceURL.Replacement)
	if err != nil {
		return err
	}

	// Extract and write the snapshot.
	ex := extractor.New(store, extractor.Options{
		BaseURL:      cfg.Site.BaseURL,
		PageURL:      pageURL,
		SourceURL:    sourceURL,
		SnapshotPath: cfg.Snapshot.Path,
	}, logger)
	records, err := ex.Run(ctx, cfg.Source.Pattern)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}

	// Mirror into the local index.
	if cfg.Index.Path != "" {
		if err := syncIndex(cfg.Index.Path, records, logger); err != nil {
			return err
		}
	}

	// Publish.
	if !cfg.Catalog.Enabled {
		logger.Info("publish skipped")
		logger.Info("Done.")
		return nil
	}

	client := app.httpClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Catalog.Timeout}
	}
	pub := publisher.New(publisher.Config{
		APIURL:       cfg.Catalog.APIURL,
		APIKey:       cfg.Catalog.APIKey,
		EndpointPath: cfg.Catalog.EndpointPath,
		Catalog:      cfg.Catalog.Name,
		SummaryField: cfg.Catalog.SummaryField,
		UserAgent:    cfg.Catalog.UserAgent,
	}, client, logger)

	logger.Info("publishing records",
		slog.String("endpoint", pub.Endpoint()),
		slog.Int("records", len(records)))

	res, err := pub.Publish(ctx, records)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	logger.Info("publish finished",
		slog.Int("accepted", res.Accepted),
		slog.Int("rejected", res.Rejected))

	logger.Info("Done.")
	return nil
}

func syncIndex(path string, records []*models.Record, logger *slog.Logger) error {
	db, err := index.Open(path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	stats, err := index.Sync(db, records, logger)
	if err != nil {
		return fmt.Errorf("sync index: %w", err)
	}
	logger.Info("index synced",
		slog.String("path", path),
		slog.Int("indexed", stats.Indexed),
		slog.Int("unchanged", stats.Unchanged),
		slog.Int("removed", stats.Removed))
	return nil
}

func newLogger(cfg ApplicationConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == LogFormatText {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
