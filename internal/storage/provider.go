// Package storage defines the content store that serves raw post bodies.
package storage

import (
	"context"
	"path"
	"strings"
	"time"
)

// ContentStore returns the raw body behind a post's content path. Any
// failure, including a missing file or a non-success HTTP status, is
// reported as an error wrapping apperr.ErrContentFetch.
type ContentStore interface {
	Fetch(ctx context.Context, contentPath string) (string, error)
}

// ContentMeta describes one file of a local content directory.
type ContentMeta struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CleanContentPath normalises a content path to a slash-separated path
// relative to the content root ("/posts/a.md" -> "posts/a.md").
func CleanContentPath(p string) string {
	return strings.TrimPrefix(path.Clean("/"+p), "/")
}
