package media

import (
	"context"
	"io"
)

// Asset identifies an object stored on the media host.
type Asset struct {
	ID  string `json:"public_id"`
	URL string `json:"url"`
}

// Host is the external media-storage collaborator. It is injected into the
// services that own uploaded assets so tests can substitute it.
type Host interface {
	Upload(ctx context.Context, r io.Reader, filename, contentType string) (Asset, error)
	Delete(ctx context.Context, id string) error
}
