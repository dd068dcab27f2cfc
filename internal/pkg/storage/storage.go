package storage

import (
	"context"
	"errors"
	"io"
)

var ErrNotExist = errors.New("stored object does not exist")

// Storage defines the interface for file storage operations.
// Paths are relative to the storage root.
type Storage interface {
	Save(ctx context.Context, path string, content io.Reader) error

	// Get returns ErrNotExist (wrapped) when nothing is stored at path.
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete is a no-op for missing paths.
	Delete(ctx context.Context, path string) error
}
