package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FilesystemStorage keeps blobs on local disk, one directory per bucket.
// Deployments backed by a hosted object store swap this for their own
// implementation of Storage.
type FilesystemStorage struct {
	root string
}

func NewFilesystemStorage(root string) (*FilesystemStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &FilesystemStorage{root: root}, nil
}

func (s *FilesystemStorage) resolve(bucket, path string) (string, error) {
	cleaned := filepath.Clean(path)
	if strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid storage path: %s", path)
	}
	return filepath.Join(s.root, bucket, cleaned), nil
}

func (s *FilesystemStorage) Upload(_ context.Context, bucket, path string, r io.Reader) (string, error) {
	full, err := s.resolve(bucket, path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create bucket dir: %w", err)
	}

	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("failed to create object: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("failed to write object: %w", err)
	}
	return path, nil
}

func (s *FilesystemStorage) Download(_ context.Context, bucket, path string) (io.ReadCloser, error) {
	full, err := s.resolve(bucket, path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		return nil, fmt.Errorf("failed to open object: %w", err)
	}
	return f, nil
}

func (s *FilesystemStorage) Delete(_ context.Context, bucket, path string) error {
	full, err := s.resolve(bucket, path)
	if err != nil {
		return err
	}
	return os.Remove(full)
}
