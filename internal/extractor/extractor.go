// Package extractor turns the glossary content tree into an ordered list of
// records and writes them to the snapshot file.
package extractor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/patterns-sync/internal/apperr"
	"github.com/starford/patterns-sync/internal/models"
	"github.com/starford/patterns-sync/internal/parser"
	"github.com/starford/patterns-sync/internal/storage"
)

// Options holds the URL and output settings for an extraction run.
type Options struct {
	// BaseURL is the public site root that relative links resolve against.
	BaseURL string
	// PageURL derives the "url" field from the content-relative path.
	PageURL Rule
	// SourceURL derives the "srcUrl" field from the content-relative path.
	SourceURL Rule
	// SnapshotPath is where Run writes the JSON array of records.
	SnapshotPath string
}

// Extractor reads documents from a storage.Provider and shapes records.
type Extractor struct {
	store  storage.Provider
	opts   Options
	logger *slog.Logger
}

// New creates an Extractor.
func New(store storage.Provider, opts Options, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{store: store, opts: opts, logger: logger}
}

// Run extracts every document matching pattern and writes the snapshot.
func (e *Extractor) Run(ctx context.Context, pattern string) ([]*models.Record, error) {
	records, err := e.Extract(ctx, pattern)
	if err != nil {
		return nil, err
	}
	if err := WriteSnapshot(e.opts.SnapshotPath, records); err != nil {
		return nil, err
	}
	e.logger.Info("snapshot written",
		slog.String("path", e.opts.SnapshotPath),
		slog.Int("records", len(records)))
	return records, nil
}

// Extract returns one record per matching document, in glob order. Partials
// are skipped. The first read or parse failure aborts the whole extraction.
func (e *Extractor) Extract(ctx context.Context, pattern string) ([]*models.Record, error) {
	paths, err := e.store.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrSourceRead, err)
	}

	records := make([]*models.Record, 0, len(paths))
	for _, rel := range paths {
		if Excluded(rel) {
			e.logger.Debug("skipping partial", slog.String("path", rel))
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := e.ProcessFile(rel)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// ProcessFile reads the document at rel (relative to the content root) and
// builds its record: url, srcUrl, parsed fields, then slug.
func (e *Extractor) ProcessFile(rel string) (*models.Record, error) {
	e.logger.Info("processing file", slog.String("path", rel))

	data, err := e.store.Read(rel)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrSourceRead, err)
	}

	text, err := parser.RewriteLinks(string(data), LinkBase(e.opts.BaseURL, rel))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rel, err)
	}

	fields, err := parser.Parse([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rel, err)
	}
	fields.Set("slug", models.String(Slug(rel)))

	rec := models.NewRecord()
	rec.Set("url", models.String(e.opts.PageURL.Apply(rel)))
	rec.Set("srcUrl", models.String(e.opts.SourceURL.Apply(rel)))
	rec.Merge(fields)
	return rec, nil
}
