// Package storage defines the read-only view of the glossary content tree.
package storage

// Provider is the interface for content file operations.
type Provider interface {
	// Root returns the absolute content root.
	Root() string
	// Glob returns the slash-separated paths (relative to the content root)
	// matching pattern, sorted lexically by full path.
	Glob(pattern string) ([]string, error)
	// Read returns the raw bytes of the file at path (relative to the content root).
	Read(path string) ([]byte, error)
}
