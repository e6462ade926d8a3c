package index

import (
	"encoding/json"
	"fmt"
	"time"
)

// RecordRow represents a row in the records table.
type RecordRow struct {
	Slug      string
	Title     string
	URL       string
	Checksum  string
	Tags      []string
	UpdatedAt time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Slug    string
	Title   string
	URL     string
	Snippet string
}

// UpsertRecord inserts or replaces a record and its FTS entry within a transaction.
func (db *DB) UpsertRecord(r RecordRow, body string, properties []byte) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if r.Tags == nil {
		r.Tags = []string{}
	}
	tagsJSON, _ := json.Marshal(r.Tags)

	_, err = tx.Exec(`
		INSERT INTO records (slug, title, url, checksum, tags, body, properties, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
			title      = excluded.title,
			url        = excluded.url,
			checksum   = excluded.checksum,
			tags       = excluded.tags,
			body       = excluded.body,
			properties = excluded.properties,
			updated_at = excluded.updated_at
	`, r.Slug, r.Title, r.URL, r.Checksum, string(tagsJSON), body, string(properties), r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert record: %w", err)
	}

	// FTS upsert (no-op when FTS5 tag is absent).
	if err := ftsUpsert(tx, r.Slug, r.Title, body, r.Tags); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteRecord removes a record and its FTS entry.
func (db *DB) DeleteRecord(slug string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, slug)
	if _, err := tx.Exec(`DELETE FROM records WHERE slug = ?`, slug); err != nil {
		return fmt.Errorf("index: delete record: %w", err)
	}

	return tx.Commit()
}

// AllChecksums returns the stored checksum of every indexed record, keyed by slug.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT slug, checksum FROM records`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var slug, cs string
		if err := rows.Scan(&slug, &cs); err != nil {
			return nil, err
		}
		out[slug] = cs
	}
	return out, rows.Err()
}
