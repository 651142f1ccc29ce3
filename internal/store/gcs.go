package store

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStore is an ObjectStore backed by Google Cloud Storage.
type GCSStore struct {
	client *storage.Client
}

var _ ObjectStore = (*GCSStore)(nil)

// NewGCSStore creates a storage client using application default credentials.
// STORAGE_EMULATOR_HOST is honoured by the client library.
func NewGCSStore(ctx context.Context, opts ...option.ClientOption) (*GCSStore, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCSStore{client: client}, nil
}

func (s *GCSStore) Upload(ctx context.Context, bucket, objectName string, data io.Reader, contentType string) error {
	w := s.client.Bucket(bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, data); err != nil {
		w.Close()
		return fmt.Errorf("write %s: %w", s.URI(bucket, objectName), err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize %s: %w", s.URI(bucket, objectName), err)
	}
	return nil
}

func (s *GCSStore) Download(ctx context.Context, bucket, objectName string) (io.ReadCloser, error) {
	r, err := s.client.Bucket(bucket).Object(objectName).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.URI(bucket, objectName))
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.URI(bucket, objectName), err)
	}
	return r, nil
}

func (s *GCSStore) URI(bucket, objectName string) string {
	return "gs://" + bucket + "/" + objectName
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
