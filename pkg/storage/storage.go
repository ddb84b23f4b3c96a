package storage

import (
	"context"
	"io"
	"time"
)

// Storage is the object-storage collaborator boundary. Downloads are served
// through time-limited signed URLs, never by streaming bytes through the API.
type Storage interface {
	PutObject(ctx context.Context, bucketName string, objectName string, file io.Reader, contentType string, metadata map[string]string) error
	DeleteObject(ctx context.Context, bucketName string, objectName string) error
	SignedURL(bucketName string, objectName string, expiry time.Duration) (string, error)
}
