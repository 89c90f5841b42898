// Package storage holds the file stores evidence uploads are persisted to.
package storage

import (
	"context"
	"io"
)

// FileStore is the contract for persisting an uploaded evidence file.
// Implementations return the URL the stored file can be retrieved from.
type FileStore interface {
	Upload(ctx context.Context, r io.Reader, fileName string) (string, error)
}
