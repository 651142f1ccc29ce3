package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// object is a stored blob with its metadata.
type object struct {
	Data        []byte
	ContentType string
	Updated     time.Time
}

// MemoryStore is a concurrency-safe in-memory ObjectStore.
type MemoryStore struct {
	mu sync.RWMutex

	// key: bucket, value: objects by name
	data map[string]map[string]object
}

var _ ObjectStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]map[string]object),
	}
}

// Upload stores a copy of data, overwriting an existing object with the same name.
func (s *MemoryStore) Upload(ctx context.Context, bucket, objectName string, data io.Reader, contentType string) error {
	b, err := io.ReadAll(data)
	if err != nil {
		return fmt.Errorf("read upload data for %s: %w", s.URI(bucket, objectName), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	objects, ok := s.data[bucket]
	if !ok {
		objects = make(map[string]object)
		s.data[bucket] = objects
	}
	objects[objectName] = object{Data: b, ContentType: contentType, Updated: time.Now().UTC()}
	return nil
}

// Download returns the stored bytes of an object.
func (s *MemoryStore) Download(ctx context.Context, bucket, objectName string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.data[bucket][objectName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.URI(bucket, objectName))
	}
	return io.NopCloser(bytes.NewReader(obj.Data)), nil
}

// ContentType returns the content type recorded for an object.
func (s *MemoryStore) ContentType(bucket, objectName string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.data[bucket][objectName]
	return obj.ContentType, ok
}

func (s *MemoryStore) URI(bucket, objectName string) string {
	return "mem://" + bucket + "/" + objectName
}

func (s *MemoryStore) Close() error { return nil }
