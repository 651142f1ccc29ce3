// Package store provides object storage backends for the cleaned daily files.
// Buckets and object names follow GCS conventions: object names use forward slashes.
package store

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrNotFound is returned when an object does not exist.
	ErrNotFound = errors.New("object not found")
)

// ObjectStore defines the storage operations the pipeline needs.
type ObjectStore interface {
	// Upload writes data to bucket/objectName, replacing any existing object.
	Upload(ctx context.Context, bucket, objectName string, data io.Reader, contentType string) error
	// Download returns a reader for bucket/objectName. The caller must close it.
	Download(ctx context.Context, bucket, objectName string) (io.ReadCloser, error)
	// URI returns the canonical location string for bucket/objectName.
	URI(bucket, objectName string) string
	Close() error
}
