package index

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/patterns-sync/internal/checksum"
	"github.com/starford/patterns-sync/internal/models"
)

// SyncStats counts what a Sync changed.
type SyncStats struct {
	Indexed   int
	Unchanged int
	Removed   int
}

// Sync brings the index in line with the records of one run:
//   - new/changed records are upserted
//   - records no longer produced are deleted
//
// A record without a slug cannot be keyed and is skipped with a warning.
func Sync(db RecordIndex, records []*models.Record, logger *slog.Logger) (SyncStats, error) {
	var stats SyncStats

	checksums, err := db.AllChecksums()
	if err != nil {
		return stats, err
	}

	now := time.Now()
	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		slug := rec.String("slug")
		if slug == "" {
			logger.Warn("sync: record without slug", slog.String("url", rec.String("url")))
			continue
		}
		seen[slug] = struct{}{}

		props, err := json.Marshal(rec)
		if err != nil {
			return stats, fmt.Errorf("index: encode %s: %w", slug, err)
		}
		cs := checksum.Sum(props)
		if checksums[slug] == cs {
			stats.Unchanged++
			continue
		}

		row := RecordRow{
			Slug:      slug,
			Title:     rec.String("title"),
			URL:       rec.String("url"),
			Checksum:  cs,
			Tags:      stringList(rec, "tags"),
			UpdatedAt: now,
		}
		if err := db.UpsertRecord(row, rec.String("markdown"), props); err != nil {
			return stats, err
		}
		stats.Indexed++
		logger.Debug("sync: indexed", slog.String("slug", slug))
	}

	// Remove stale entries.
	for slug := range checksums {
		if _, ok := seen[slug]; ok {
			continue
		}
		if err := db.DeleteRecord(slug); err != nil {
			return stats, err
		}
		stats.Removed++
		logger.Debug("sync: removed stale", slog.String("slug", slug))
	}

	return stats, nil
}

func stringList(rec *models.Record, key string) []string {
	v, _ := rec.Get(key)
	out := []string{}
	for _, item := range v.Items() {
		if s, ok := item.Str(); ok {
			out = append(out, s)
		}
	}
	return out
}
