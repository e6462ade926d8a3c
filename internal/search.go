package internal

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/starford/patterns-sync/internal/index"
)

// Search queries the record index at dbPath and writes one line per hit:
// slug, title and url separated by tabs, then the snippet indented.
func Search(_ context.Context, w io.Writer, dbPath, query string, limit int) error {
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("open index: %w", err)
	}

	db, err := index.Open(dbPath)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	results, err := db.Search(query, limit)
	if err != nil {
		return err
	}
	for _, r := range results {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n    %s\n", r.Slug, r.Title, r.URL, r.Snippet); err != nil {
			return err
		}
	}
	return nil
}
