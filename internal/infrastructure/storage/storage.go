package storage

import (
	"context"
	"time"
)

// ObjectStorage stores export archives and hands out time-limited download
// links for them.
type ObjectStorage interface {
	// ObjectKey applies the configured key prefix to name
	ObjectKey(name string) string
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	// GenerateDownloadURL returns a presigned GET URL and its expiry time
	GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
	DeleteObject(ctx context.Context, key string) error
}

var (
	_ ObjectStorage = (*S3ObjectStorage)(nil)
	_ ObjectStorage = (*StubObjectStorage)(nil)
)
