// Package api implements the read-only blog HTTP API using chi.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/devlog/internal/blog"
)

// NewRouter creates a chi router with all API routes mounted.
// sseHandler, if non-nil, is mounted at GET /events.
// content, if non-nil, serves the content inventory at GET /content.
func NewRouter(svc *blog.Service, sseHandler http.Handler, content *ContentHandler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()

	r.Get("/home", h.Home)
	r.Get("/posts/recent", h.RecentPosts)

	r.Get("/categories", h.Categories)
	r.Get("/categories/groups", h.CategoryGroups)
	r.Get("/tags", h.Tags)

	r.Get("/sections", h.Sections)
	r.Get("/sections/{section}", h.Section)
	r.Get("/sections/{section}/{id}", h.Post)

	r.Get("/theme", h.GetTheme)
	r.Post("/theme/toggle", h.ToggleTheme)
	r.Put("/theme", h.SetTheme)

	if content != nil {
		r.Get("/content", content.Index)
	}

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
