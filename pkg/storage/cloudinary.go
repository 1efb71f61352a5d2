package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const cloudinaryRawType = "raw"

type cloudinaryStorage struct {
	cld        *cloudinary.Cloudinary
	folder     string
	httpClient *http.Client
}

// NewCloudinaryStorage creates a Cloudinary-backed BlobStore. Documents are
// uploaded as raw assets and the recorded path is the secure URL.
// It expects CLOUDINARY_URL or individual CLOUDINARY_CLOUD_NAME / CLOUDINARY_API_KEY / CLOUDINARY_API_SECRET
// to be configured in environment variables (see Cloudinary Go SDK docs).
func NewCloudinaryStorage(folder string) (BlobStore, error) {
	// cloudinary.New() automatically reads CLOUDINARY_URL from environment if present.
	cld, err := cloudinary.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary client: %w", err)
	}

	// Ensure HTTPS URLs by default.
	cld.Config.URL.Secure = true

	if cloudName := os.Getenv("CLOUDINARY_CLOUD_NAME"); cloudName != "" {
		cld.Config.Cloud.CloudName = cloudName
	}

	return &cloudinaryStorage{cld: cld, folder: folder, httpClient: http.DefaultClient}, nil
}

func (s *cloudinaryStorage) Save(ctx context.Context, name string, r io.Reader) (string, int64, error) {
	name = SafeName(name)
	if name == "" {
		return "", 0, fmt.Errorf("invalid blob name")
	}

	counter := &countingReader{r: r}
	params := uploader.UploadParams{
		Folder:       s.folder,
		PublicID:     name,
		ResourceType: cloudinaryRawType,
		Overwrite:    api.Bool(false),
		Invalidate:   api.Bool(true),
	}

	resp, err := s.cld.Upload.Upload(ctx, counter, params)
	if err != nil {
		return "", 0, fmt.Errorf("failed to upload file to cloudinary: %w", err)
	}

	if resp.SecureURL == "" {
		return "", 0, fmt.Errorf("cloudinary upload succeeded but secure URL is empty")
	}

	size := counter.n
	if resp.Bytes > 0 {
		size = int64(resp.Bytes)
	}

	return resp.SecureURL, size, nil
}

func (s *cloudinaryStorage) Open(ctx context.Context, fileURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, ErrBlobNotFound
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch file from cloudinary: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, ErrBlobNotFound
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("cloudinary returned status %d", resp.StatusCode)
	}

	return resp.Body, nil
}

func (s *cloudinaryStorage) Delete(ctx context.Context, fileURL string) error {
	publicID := extractPublicID(fileURL)
	if publicID == "" {
		return fmt.Errorf("could not extract public ID from URL: %s", fileURL)
	}

	// Invalidate: true helps to clear CDN cache
	params := uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: cloudinaryRawType,
		Invalidate:   api.Bool(true),
	}

	resp, err := s.cld.Upload.Destroy(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to delete file from cloudinary: %w", err)
	}

	if resp.Result != "ok" && resp.Result != "not found" {
		return fmt.Errorf("cloudinary destroy api returned result: %s", resp.Result)
	}

	return nil
}

// extractPublicID extracts the public ID from a Cloudinary raw asset URL.
// Raw public IDs keep their extension.
// Example: https://res.cloudinary.com/demo/raw/upload/v123456789/folder/notes.pdf -> folder/notes.pdf
func extractPublicID(fileURL string) string {
	u, err := url.Parse(fileURL)
	if err != nil {
		return ""
	}

	parts := strings.Split(u.Path, "/")
	uploadIndex := -1
	for i, p := range parts {
		if p == "upload" {
			uploadIndex = i
			break
		}
	}

	if uploadIndex == -1 || uploadIndex+1 >= len(parts) {
		return ""
	}

	relevantParts := parts[uploadIndex+1:]

	// Cloudinary versions start with 'v' followed by numbers.
	if len(relevantParts) > 1 && isVersionSegment(relevantParts[0]) {
		relevantParts = relevantParts[1:]
	}

	return path.Clean(strings.Join(relevantParts, "/"))
}

func isVersionSegment(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
