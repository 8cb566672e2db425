// Package media stores uploaded binaries (product images, avatars) on an
// external object store and hands back the public URL. Only the URL is
// persisted on the owning document.
package media

import (
	"context"
	"io"
)

// Store uploads a binary asset and returns the URL it is served from.
type Store interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}
