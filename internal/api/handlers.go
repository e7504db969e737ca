package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/devlog/internal/apperr"
	"github.com/starford/devlog/internal/blog"
)

// DefaultRecentLimit is the page size of GET /api/posts/recent.
const DefaultRecentLimit = 10

// Handler holds API route handlers.
type Handler struct {
	svc *blog.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *blog.Service) *Handler {
	return &Handler{svc: svc}
}

// Home handles GET /api/home.
//
//	@Summary		Landing view: recent posts, category and tag counts
//	@Tags			posts
//	@Produce		json
//	@Param			limit	query		int	false	"Number of recent posts"	default(3)
//	@Success		200		{object}	HomeResponse
//	@Failure		400		{object}	errResponse
//	@Router			/home [get]
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r, blog.DefaultHomeLimit)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Home(limit))
}

// RecentPosts handles GET /api/posts/recent.
//
//	@Summary		Newest posts across all sections
//	@Tags			posts
//	@Produce		json
//	@Param			limit	query		int	false	"Max posts"	default(10)
//	@Success		200		{object}	PostListResponse
//	@Failure		400		{object}	errResponse
//	@Router			/posts/recent [get]
func (h *Handler) RecentPosts(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r, DefaultRecentLimit)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, PostListResponse{Posts: h.svc.Recent(limit)})
}

// Categories handles GET /api/categories.
//
//	@Summary		Post counts per category
//	@Tags			categories
//	@Produce		json
//	@Success		200	{object}	CategoryCountsResponse
//	@Router			/categories [get]
func (h *Handler) Categories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, CategoryCountsResponse{Categories: h.svc.Categories()})
}

// CategoryGroups handles GET /api/categories/groups.
//
//	@Summary		All posts grouped by category
//	@Tags			categories
//	@Produce		json
//	@Success		200	{object}	CategoryGroupsResponse
//	@Router			/categories/groups [get]
func (h *Handler) CategoryGroups(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, CategoryGroupsResponse{Groups: h.svc.CategoryGroups()})
}

// Tags handles GET /api/tags.
//
//	@Summary		Post counts per tag
//	@Tags			categories
//	@Produce		json
//	@Success		200	{object}	TagCountsResponse
//	@Router			/tags [get]
func (h *Handler) Tags(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, TagCountsResponse{Tags: h.svc.Tags()})
}

// Sections handles GET /api/sections.
//
//	@Summary		Section metadata
//	@Tags			sections
//	@Produce		json
//	@Success		200	{object}	SectionsResponse
//	@Router			/sections [get]
func (h *Handler) Sections(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, SectionsResponse{Sections: h.svc.Sections()})
}

// Section handles GET /api/sections/{section}.
//
//	@Summary		One section page, newest first
//	@Tags			sections
//	@Produce		json
//	@Param			section	path		string	true	"Section key"
//	@Success		200		{object}	SectionResponse
//	@Failure		404		{object}	errResponse
//	@Router			/sections/{section} [get]
func (h *Handler) Section(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "section")
	listing, err := h.svc.Section(key)
	if err != nil {
		if errors.Is(err, apperr.ErrUnknownSection) {
			writeJSON(w, http.StatusNotFound, errorBody("unknown section"))
		} else {
			slog.Error("get section failed", slog.String("section", key), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, SectionResponse{Section: listing.Section, Posts: listing.Posts})
}

// Post handles GET /api/sections/{section}/{id}.
//
//	@Summary		Resolve and render one post
//	@Tags			sections
//	@Produce		json
//	@Param			section	path		string	true	"Section key"
//	@Param			id		path		string	true	"Post id within the section"
//	@Success		200		{object}	PostDetail
//	@Failure		404		{object}	errResponse
//	@Router			/sections/{section}/{id} [get]
func (h *Handler) Post(w http.ResponseWriter, r *http.Request) {
	section := chi.URLParam(r, "section")
	id := chi.URLParam(r, "id")
	post, err := h.svc.Post(r.Context(), section, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get post failed",
				slog.String("section", section),
				slog.String("id", id),
				slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// GetTheme handles GET /api/theme.
//
//	@Summary		Current theme
//	@Tags			theme
//	@Produce		json
//	@Success		200	{object}	ThemeResponse
//	@Router			/theme [get]
func (h *Handler) GetTheme(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ThemeResponse{Mode: string(h.svc.Theme())})
}

// ToggleTheme handles POST /api/theme/toggle.
//
//	@Summary		Flip between light and dark
//	@Tags			theme
//	@Produce		json
//	@Success		200	{object}	ThemeResponse
//	@Router			/theme/toggle [post]
func (h *Handler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	mode, err := h.svc.ToggleTheme(r.Context())
	if err != nil {
		slog.Error("toggle theme failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, ThemeResponse{Mode: string(mode)})
}

// SetTheme handles PUT /api/theme.
//
//	@Summary		Set the theme explicitly
//	@Tags			theme
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SetThemeRequest	true	"Theme mode"
//	@Success		200		{object}	ThemeResponse
//	@Failure		400		{object}	errResponse
//	@Router			/theme [put]
func (h *Handler) SetTheme(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<10)
	var req SetThemeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	mode, err := h.svc.SetTheme(r.Context(), req.Mode)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, errorBody("mode must be light or dark"))
		} else {
			slog.Error("set theme failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, ThemeResponse{Mode: string(mode)})
}
