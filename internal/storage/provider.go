// Package storage defines the inventory directory file-system abstraction.
package storage

// Provider is the interface for file operations inside one inventory
// directory (the markdown source, the JSON view, and the photo trees).
// All paths are relative to the inventory root.
type Provider interface {
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
	// Exists reports whether anything exists at path.
	Exists(path string) (bool, error)
	// ListFiles returns the sorted file names directly inside dir.
	// A missing directory yields an empty listing, not an error.
	ListFiles(dir string) ([]string, error)
	// ListDirs returns the sorted subdirectory names directly inside dir.
	// A missing directory yields an empty listing, not an error.
	ListDirs(dir string) ([]string, error)
	// Root returns the absolute path of the inventory directory.
	Root() string
}
