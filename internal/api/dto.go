package api

import (
	"github.com/starford/devlog/internal/blog"
	"github.com/starford/devlog/internal/models"
	"github.com/starford/devlog/internal/storage"
)

// PostDetail is the resolved post response (aliased from the domain layer).
type PostDetail = blog.PostDetail

// HomeResponse is the landing view (aliased from the domain layer).
type HomeResponse = blog.Home

// PostListResponse wraps a list of post summaries.
type PostListResponse struct {
	Posts []models.PostSummary `json:"posts" validate:"required"`
}

// CategoryCountsResponse wraps per-category counts.
type CategoryCountsResponse struct {
	Categories []models.CategoryCount `json:"categories" validate:"required"`
}

// CategoryGroupsResponse wraps posts grouped by category.
type CategoryGroupsResponse struct {
	Groups []models.CategoryGroup `json:"groups" validate:"required"`
}

// TagCountsResponse wraps per-tag counts.
type TagCountsResponse struct {
	Tags []models.TagCount `json:"tags" validate:"required"`
}

// SectionsResponse wraps section metadata.
type SectionsResponse struct {
	Sections []models.Section `json:"sections" validate:"required"`
}

// SectionResponse is one section page.
type SectionResponse struct {
	Section models.Section       `json:"section" validate:"required"`
	Posts   []models.PostSummary `json:"posts" validate:"required"`
}

// ThemeResponse reports the current theme.
type ThemeResponse struct {
	Mode string `json:"mode" example:"dark" validate:"required"`
}

// SetThemeRequest is the request body for PUT /api/theme.
type SetThemeRequest struct {
	Mode string `json:"mode" example:"light" validate:"required"`
}

// ContentIndexResponse lists the files of the content directory.
type ContentIndexResponse struct {
	Files []storage.ContentMeta `json:"files" validate:"required"`
}
