package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrBlobNotFound is returned by Open when nothing is stored at the path.
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore stores uploaded file content addressed by the path it returns.
type BlobStore interface {
	// Save writes r under name and returns the path to record plus the byte count.
	Save(ctx context.Context, name string, r io.Reader) (string, int64, error)
	// Open returns the blob at path, or ErrBlobNotFound.
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	// Delete removes the blob at path. A missing blob is not an error.
	Delete(ctx context.Context, path string) error
}

// Options selects and configures a BlobStore backend.
type Options struct {
	Backend   string // local, cloudinary, b2
	LocalDir  string
	Folder    string
	B2Account string
	B2Key     string
	B2Bucket  string
}

// New builds the BlobStore named by opts.Backend.
func New(ctx context.Context, opts Options) (BlobStore, error) {
	switch strings.ToLower(opts.Backend) {
	case "", "local":
		return NewLocalStorage(opts.LocalDir)
	case "cloudinary":
		return NewCloudinaryStorage(opts.Folder)
	case "b2":
		return NewB2Storage(ctx, opts.B2Account, opts.B2Key, opts.B2Bucket)
	default:
		return nil, fmt.Errorf("unknown blob backend %q", opts.Backend)
	}
}

// BaseName is the download file name for a stored path. Paths may be
// filesystem paths, object keys or URLs.
func BaseName(p string) string {
	if u, err := url.Parse(p); err == nil && u.Scheme != "" && u.Host != "" {
		return path.Base(u.Path)
	}
	return filepath.Base(filepath.FromSlash(p))
}

const tokenLen = 8

// UniqueName builds the stored name "<prefix>_<token>_<name>". The random
// token keeps uploads that share a file name from landing on one blob.
func UniqueName(prefix, name string) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:tokenLen]
	return prefix + "_" + token + "_" + name
}

// DownloadName is the file name offered to clients: BaseName of p with the
// token added by UniqueName removed. Other names are returned unchanged.
func DownloadName(p string) string {
	base := BaseName(p)
	i := strings.IndexByte(base, '_')
	end := i + 1 + tokenLen
	if i <= 0 || len(base) <= end+1 || base[end] != '_' || !isHex(base[i+1:end]) {
		return base
	}
	return base[:i+1] + base[end+1:]
}

func isHex(s string) bool {
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return false
		}
	}
	return true
}

// SafeName strips directory components and separators from an uploaded file name.
func SafeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return name
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
