package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore is an ObjectStore on the local file system. Buckets are directories under BaseDir.
type LocalStore struct {
	baseDir string
	logger  *slog.Logger
}

var _ ObjectStore = (*LocalStore)(nil)

// NewLocalStore validates baseDir, creating it if it doesn't exist.
func NewLocalStore(baseDir string, logger *slog.Logger) (*LocalStore, error) {
	if baseDir == "" {
		return nil, errors.New("local store: base dir must be specified")
	}
	info, err := os.Stat(baseDir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(baseDir, 0o755); err != nil {
			return nil, fmt.Errorf("local store: failed to create base dir %q: %w", baseDir, err)
		}
	case err != nil:
		return nil, fmt.Errorf("local store: failed to stat base dir %q: %w", baseDir, err)
	case !info.IsDir():
		return nil, fmt.Errorf("local store: base dir %q is not a directory", baseDir)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalStore{baseDir: baseDir, logger: logger.With("store", "local")}, nil
}

// Upload writes data to BaseDir/bucket/objectName, creating parent directories.
func (s *LocalStore) Upload(ctx context.Context, bucket, objectName string, data io.Reader, contentType string) error {
	fullPath, err := s.resolvePath(bucket, objectName)
	if err != nil {
		return fmt.Errorf("failed to resolve path for upload: %w", err)
	}

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %q: %w", dir, err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file %q: %w", fullPath, err)
	}
	if _, err := io.Copy(file, data); err != nil {
		file.Close()
		return fmt.Errorf("failed to write data to file %q: %w", fullPath, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close file %q: %w", fullPath, err)
	}
	s.logger.Debug("uploaded object", "path", fullPath)
	return nil
}

func (s *LocalStore) Download(ctx context.Context, bucket, objectName string) (io.ReadCloser, error) {
	fullPath, err := s.resolvePath(bucket, objectName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path for download: %w", err)
	}
	file, err := os.Open(fullPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.URI(bucket, objectName))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w", fullPath, err)
	}
	return file, nil
}

func (s *LocalStore) URI(bucket, objectName string) string {
	return "file://" + filepath.ToSlash(filepath.Join(s.baseDir, bucket, objectName))
}

func (s *LocalStore) Close() error { return nil }

// resolvePath maps bucket/objectName below BaseDir and rejects paths escaping it.
func (s *LocalStore) resolvePath(bucket, objectName string) (string, error) {
	fullPath := filepath.Join(s.baseDir, bucket, filepath.FromSlash(objectName))

	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for base dir %q: %w", s.baseDir, err)
	}
	absFull, err := filepath.Abs(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for %q: %w", fullPath, err)
	}
	if absFull != absBase && !strings.HasPrefix(absFull, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("resolved path %q is outside of base dir %q", fullPath, s.baseDir)
	}
	return fullPath, nil
}
