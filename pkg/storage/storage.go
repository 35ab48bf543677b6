// Package storage defines the FileStore interface for reading and writing
// whole files. It abstracts the underlying backend so that callers can swap
// between local disk and S3-compatible object stores without changing
// application code.
//
// The primary use case within vozaid is persisting the exemplar snapshot:
// the full intent → embedding-list mapping written as one file per save.
// The interface is deliberately whole-file oriented (read all, write all)
// because snapshot writes must replace the previous state in one step.
package storage

import (
	"context"
)

// FileStore is a minimal interface for whole-file storage.
//
// Paths are forward-slash separated and relative to the store root.
// Implementations must be safe for concurrent use.
type FileStore interface {
	// ReadFile returns the full contents of the named file.
	// If the file does not exist, an error wrapping os.ErrNotExist is
	// returned.
	ReadFile(ctx context.Context, path string) ([]byte, error)

	// WriteFile replaces the named file with data in a single step.
	// Readers never observe a partially written file. Parent directories
	// (or key prefixes) are created as needed.
	WriteFile(ctx context.Context, path string, data []byte) error

	// Delete removes the named file.
	// If the file does not exist, Delete returns nil (idempotent).
	Delete(ctx context.Context, path string) error

	// Exists reports whether the named file exists.
	Exists(ctx context.Context, path string) (bool, error)
}
