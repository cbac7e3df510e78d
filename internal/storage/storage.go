package storage

import (
	"context"
	"io"
	"time"
)

// Service stores expense receipts in remote object storage. It is optional:
// a nil Service disables the receipt endpoints.
type Service interface {
	// PutObject uploads a single object and returns its s3://bucket/key
	// location.
	PutObject(ctx context.Context, bucket, key string, body io.Reader, contentType string) (string, error)
	// PresignGet returns a time-limited URL for reading the object.
	PresignGet(ctx context.Context, bucket, key string, expires time.Duration) (string, error)
	DeleteObject(ctx context.Context, bucket, key string) error
}
