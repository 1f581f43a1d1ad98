package index

import "github.com/eivindn/inventar/internal/models"

// ContainerIndex is the derived search cache over the current parse.
// Consumers should depend on this interface rather than the concrete *DB
// type to facilitate testing with mocks. The markdown document stays the
// source of truth: the cache is rebuilt wholesale from each parse and is
// never consulted to produce the Document itself.
type ContainerIndex interface {
	Rebuild(doc *models.Document, sourceChecksum string) error
	SourceChecksum() (string, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

// Verify *DB satisfies ContainerIndex at compile time.
var _ ContainerIndex = (*DB)(nil)
