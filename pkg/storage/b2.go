package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/kurin/blazer/b2"
)

type b2Storage struct {
	bucket *b2.Bucket
}

// NewB2Storage stores blobs as objects in a Backblaze B2 bucket. The recorded
// path is the object key.
func NewB2Storage(ctx context.Context, accountID, appKey, bucketName string) (BlobStore, error) {
	client, err := b2.NewClient(ctx, accountID, appKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create b2 client: %w", err)
	}

	bucket, err := client.Bucket(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket: %w", err)
	}

	return &b2Storage{bucket: bucket}, nil
}

func (s *b2Storage) Save(ctx context.Context, name string, r io.Reader) (string, int64, error) {
	key := SafeName(name)
	if key == "" {
		return "", 0, fmt.Errorf("invalid blob name")
	}

	w := s.bucket.Object(key).NewWriter(ctx)
	n, err := io.Copy(w, r)
	if err != nil {
		_ = w.Close()
		return "", 0, fmt.Errorf("failed to write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", 0, fmt.Errorf("failed to close writer: %w", err)
	}

	return key, n, nil
}

func (s *b2Storage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	obj := s.bucket.Object(key)
	if _, err := obj.Attrs(ctx); err != nil {
		if b2.IsNotExist(err) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("failed to stat object: %w", err)
	}
	return obj.NewReader(ctx), nil
}

func (s *b2Storage) Delete(ctx context.Context, key string) error {
	if err := s.bucket.Object(key).Delete(ctx); err != nil && !b2.IsNotExist(err) {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}
