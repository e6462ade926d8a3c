package extractor

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/natefinch/atomic"

	"github.com/starford/patterns-sync/internal/apperr"
	"github.com/starford/patterns-sync/internal/models"
)

// WriteSnapshot replaces the file at path with records as a JSON array
// indented by two spaces.
func WriteSnapshot(path string, records []*models.Record) error {
	if records == nil {
		records = []*models.Record{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("%w: encode: %w", apperr.ErrSnapshot, err)
	}

	if err := atomic.WriteFile(path, bytes.NewReader(bytes.TrimRight(buf.Bytes(), "\n"))); err != nil {
		return fmt.Errorf("%w: %s: %w", apperr.ErrSnapshot, path, err)
	}
	return nil
}
