// Package blob defines the object-storage port consumed by services and its
// S3-compatible implementation.
package blob

import (
	"context"
	"io"
)

// Store is the blob-storage port: upload and delete by key, plus generation
// of time-limited signed URLs granting read access without authentication.
type Store interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64) error

	// Delete removes the object under key. An empty key is a no-op, so
	// callers replacing a possibly-unset profile picture need no guard.
	Delete(ctx context.Context, key string) error

	SignedURL(ctx context.Context, key string) (string, error)
}
