// Package storage defines the vault file-system abstraction.
package storage

import "github.com/starford/jera/internal/models"

// Provider is the interface for vault file operations.
type Provider interface {
	// List returns metadata for every .md file under dir (relative to
	// the vault root).
	List(dir string) ([]models.FileInfo, error)
	// Read returns the raw bytes of the file at path (relative to the
	// vault root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to the vault
	// root), creating parent directories as needed.
	Write(path string, content []byte) error
	// Delete removes the file at path (relative to the vault root).
	Delete(path string) error
}
