// Package testutil provides shared test helpers for content trees and index databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/patterns-sync/internal/index"
	"github.com/starford/patterns-sync/internal/storage"
)

// TestDB creates a temporary SQLite index that is automatically cleaned up.
// It returns the open index and its file path.
func TestDB(t *testing.T) (*index.DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.db")
	db, err := index.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db, path
}

// WriteContent creates a temporary content root holding files (keyed by
// slash-separated relative path) and returns the root directory.
func WriteContent(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

// TestContent creates a temporary content tree with a storage.Provider.
func TestContent(t *testing.T, files map[string]string) (string, storage.Provider) {
	t.Helper()
	root := WriteContent(t, files)
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	return root, store
}
