package store

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]ObjectStore {
	t.Helper()
	local, err := NewLocalStore(filepath.Join(t.TempDir(), "objects"), nil)
	require.NoError(t, err)
	return map[string]ObjectStore{
		"memory": NewMemoryStore(),
		"local":  local,
	}
}

func readAll(t *testing.T, s ObjectStore, bucket, name string) string {
	t.Helper()
	rc, err := s.Download(context.Background(), bucket, name)
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(b)
}

func TestObjectStore_RoundTrip(t *testing.T) {
	const content = "timestamp,pm10,date\n2025-06-01T00:00,41.5,2025-06-01\n"

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Upload(ctx, "bucket", "daily/2025-06-01-clean.csv", strings.NewReader(content), "text/csv"))
			assert.Equal(t, content, readAll(t, s, "bucket", "daily/2025-06-01-clean.csv"))
		})
	}
}

func TestObjectStore_OverwriteSameKey(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Upload(ctx, "bucket", "daily/a.csv", strings.NewReader("first"), "text/csv"))
			require.NoError(t, s.Upload(ctx, "bucket", "daily/a.csv", strings.NewReader("second"), "text/csv"))
			assert.Equal(t, "second", readAll(t, s, "bucket", "daily/a.csv"))
		})
	}
}

func TestObjectStore_DownloadMissing(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Upload(ctx, "bucket", "daily/2025-06-01-clean.csv", strings.NewReader("x"), "text/csv"))

			_, err := s.Download(ctx, "bucket", "daily/2025-06-02-clean.csv")
			assert.ErrorIs(t, err, ErrNotFound)
			_, err = s.Download(ctx, "other-bucket", "daily/2025-06-01-clean.csv")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestLocalStore_RejectsEscapingPaths(t *testing.T) {
	s, err := NewLocalStore(t.TempDir(), nil)
	require.NoError(t, err)

	err = s.Upload(context.Background(), "bucket", "../../etc/passwd", strings.NewReader("x"), "text/plain")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "outside of base dir")
}

func TestMemoryStore_KeepsContentType(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Upload(context.Background(), "b", "o.parquet", strings.NewReader("x"), "application/octet-stream"))

	ct, ok := s.ContentType("b", "o.parquet")
	assert.True(t, ok)
	assert.Equal(t, "application/octet-stream", ct)
	assert.Equal(t, "mem://b/o.parquet", s.URI("b", "o.parquet"))
}
