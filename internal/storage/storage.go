package storage

import (
	"context"
	"io"
)

// Client abstracts where uploaded file bytes live. The server runs against
// MinIO in a real deployment and against the in-memory client in demo mode
// and in tests.
type Client interface {
	Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	Download(ctx context.Context, objectName string) (io.ReadCloser, error)
	Delete(ctx context.Context, objectName string) error
}
