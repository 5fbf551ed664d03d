// Package backend selects and wires a storage backend from configuration.
package backend

import (
	"context"

	"fintrack/internal/storage"
)

// Type identifies a storage backend.
type Type string

const (
	FileBackend   Type = "file"
	MemoryBackend Type = "memory"
	SQLiteBackend Type = "sqlite"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is known.
func (t Type) IsValid() bool {
	switch t {
	case FileBackend, MemoryBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}

// Config holds what is needed to build any backend.
type Config struct {
	Type Type

	// File backend
	DataFilePath string

	// SQLite backend
	SQLiteDBPath string
}

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// Result is a ready-to-use store plus its optional cleanup.
type Result struct {
	Store   storage.Store
	Cleanup CleanupFunc
}

// Factory creates storage backends from configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}
