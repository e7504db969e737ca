// Package resolver maps a navigation target (section, id) to a post:
// first a synchronous catalog lookup, then a fetch of the post body from
// the content store.
package resolver

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/starford/devlog/internal/models"
	"github.com/starford/devlog/internal/route"
	"github.com/starford/devlog/internal/storage"
)

// Source is the per-section read side of the post catalog.
type Source interface {
	Posts(section string) []models.PostSummary
}

// Resolver looks posts up and fetches their bodies.
type Resolver struct {
	src    Source
	store  storage.ContentStore
	logger *slog.Logger
}

// New creates a resolver.
func New(src Source, store storage.ContentStore, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{src: src, store: store, logger: logger}
}

// Lookup finds the post with the given id in one section. Unknown sections
// and ids that are not base-10 integers never match.
func (r *Resolver) Lookup(section, idParam string) (models.PostSummary, bool) {
	key, ok := targetKey(section, idParam)
	if !ok {
		return models.PostSummary{}, false
	}
	for _, p := range r.src.Posts(section) {
		if p.Key() == key {
			return p, true
		}
	}
	return models.PostSummary{}, false
}

// targetKey normalizes a navigation target the way the catalog keys posts.
func targetKey(section, idParam string) (models.PostKey, bool) {
	id, ok := route.ParseID(idParam)
	if !ok {
		return models.PostKey{}, false
	}
	return models.PostKey{Section: strings.ToLower(section), ID: id}, true
}

// FetchBody returns the post body, or "" when the fetch fails. Failures
// are logged and never returned: a missing body still renders the post.
func (r *Resolver) FetchBody(ctx context.Context, post models.PostSummary) string {
	body, err := r.fetch(ctx, post)
	if err != nil {
		r.logFetchFailure(post, err)
		return ""
	}
	return body
}

// Resolve runs both stages for one navigation.
func (r *Resolver) Resolve(ctx context.Context, section, idParam string) models.ResolvedPost {
	post, ok := r.Lookup(section, idParam)
	if !ok {
		r.logger.Debug("resolver: post not found",
			slog.String("section", section),
			slog.String("id", idParam))
		return models.NotFoundPost
	}
	return models.ResolvedPost{Found: true, Summary: post, Body: r.FetchBody(ctx, post)}
}

func (r *Resolver) fetch(ctx context.Context, post models.PostSummary) (string, error) {
	if post.ContentPath == "" {
		return "", errors.New("post has no content path")
	}
	return r.store.Fetch(ctx, post.ContentPath)
}

func (r *Resolver) logFetchFailure(post models.PostSummary, err error) {
	r.logger.Warn("resolver: content fetch failed, rendering empty body",
		slog.String("section", post.Section),
		slog.Int("id", post.ID),
		slog.String("content_path", post.ContentPath),
		slog.String("error", err.Error()))
}
