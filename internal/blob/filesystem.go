package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FilesystemStore is a Store backed by a local directory. Keys are flat
// file names; writes go through a temp file and rename so readers never see
// a partial blob.
type FilesystemStore struct {
	dir string
}

// NewFilesystemStore creates a filesystem blob store rooted at dir,
// creating the directory if needed.
func NewFilesystemStore(dir string) (*FilesystemStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}
	return &FilesystemStore{dir: dir}, nil
}

// Put writes the content under key.
func (s *FilesystemStore) Put(ctx context.Context, key string, content io.Reader) (int64, error) {
	path, err := s.path(key)
	if err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}

	n, err := io.Copy(tmp, content)
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return 0, fmt.Errorf("failed to write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return 0, fmt.Errorf("failed to close blob: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return 0, fmt.Errorf("failed to finalize blob: %w", err)
	}
	return n, nil
}

// Open returns a reader over the blob's content.
func (s *FilesystemStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open blob: %w", err)
	}
	return f, nil
}

// Delete removes the blob.
func (s *FilesystemStore) Delete(ctx context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	err = os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}

// path resolves a key inside the store directory, rejecting anything that
// could escape it.
func (s *FilesystemStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid blob key: %q", key)
	}
	return filepath.Join(s.dir, key), nil
}
