// Package storage defines the blog checkout file-system abstraction.
package storage

import "github.com/starford/quill/internal/models"

// Provider is the interface for post file operations. Paths are relative to
// the provider root and use forward slashes.
type Provider interface {
	// Root returns the absolute directory the provider is bound to.
	Root() string
	// List returns metadata for every .md file under dir.
	List(dir string) ([]models.PostMeta, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Exists reports whether a regular file exists at path.
	Exists(path string) (bool, error)
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
}
