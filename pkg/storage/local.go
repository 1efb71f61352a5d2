package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

type localStorage struct {
	root string
}

// NewLocalStorage stores blobs as files under root, creating it if needed.
// Save never replaces an existing file.
func NewLocalStorage(root string) (BlobStore, error) {
	if root == "" {
		root = "uploads"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &localStorage{root: filepath.Clean(root)}, nil
}

func (s *localStorage) Save(ctx context.Context, name string, r io.Reader) (string, int64, error) {
	name = SafeName(name)
	if name == "" {
		return "", 0, fmt.Errorf("invalid blob name")
	}

	p := filepath.Join(s.root, name)
	f, err := os.OpenFile(p, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create blob: %w", err)
	}

	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(p)
		return "", 0, fmt.Errorf("failed to write blob: %w", err)
	}

	return p, n, nil
}

func (s *localStorage) Open(ctx context.Context, p string) (io.ReadCloser, error) {
	if !s.contains(p) {
		return nil, ErrBlobNotFound
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("failed to open blob: %w", err)
	}
	return f, nil
}

func (s *localStorage) Delete(ctx context.Context, p string) error {
	if !s.contains(p) {
		return nil
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}

func (s *localStorage) contains(p string) bool {
	rel, err := filepath.Rel(s.root, filepath.Clean(p))
	if err != nil {
		return false
	}
	return rel != "." && !strings.HasPrefix(rel, "..")
}
