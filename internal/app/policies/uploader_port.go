package policies

import (
	"context"
	"io"
)

// UploaderPort stores binary content (listing photos) and returns a public
// URL for it.
type UploaderPort interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) (publicURL string, err error)
}
