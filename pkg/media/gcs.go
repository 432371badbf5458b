package media

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// GCSHost stores media objects in a Google Cloud Storage bucket. The asset id
// is the object path, so Delete needs no extra bookkeeping.
type GCSHost struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCSClient creates a Google Cloud Storage client. If credsPath is empty, ADC is used.
func NewGCSClient(ctx context.Context, credsPath string) (*storage.Client, error) {
	if credsPath == "" {
		return storage.NewClient(ctx)
	}
	return storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

func NewGCSHost(client *storage.Client, bucket, prefix string) *GCSHost {
	return &GCSHost{client: client, bucket: bucket, prefix: prefix}
}

func (h *GCSHost) Upload(ctx context.Context, r io.Reader, filename, contentType string) (Asset, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join(h.prefix, uuid.NewString()+ext))

	wc := h.client.Bucket(h.bucket).Object(objectPath).NewWriter(ctx)
	wc.ContentType = contentType
	wc.ChunkSize = 0 // disable chunking for small files
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return Asset{}, err
	}
	if err := wc.Close(); err != nil {
		return Asset{}, err
	}
	return Asset{ID: objectPath, URL: PublicURL(h.bucket, objectPath)}, nil
}

func (h *GCSHost) Delete(ctx context.Context, id string) error {
	return h.client.Bucket(h.bucket).Object(id).Delete(ctx)
}

// PublicURL builds a public URL for an object (assuming public read access or signed URLs)
func PublicURL(bucket, objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, objectPath)
}

var _ Host = (*GCSHost)(nil)
