// Package blog is the read model served by every surface: listings from
// the aggregator, posts from the resolver, and the reader's theme.
package blog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/devlog/internal/aggregate"
	"github.com/starford/devlog/internal/apperr"
	"github.com/starford/devlog/internal/catalog"
	"github.com/starford/devlog/internal/markdown"
	"github.com/starford/devlog/internal/models"
	"github.com/starford/devlog/internal/resolver"
	"github.com/starford/devlog/internal/route"
	"github.com/starford/devlog/internal/theme"
)

// DefaultHomeLimit is the number of recent posts on the landing view.
const DefaultHomeLimit = 3

// Crumb is one step of a post's breadcrumb.
type Crumb struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// PostDetail is a resolved post ready for display.
type PostDetail struct {
	Section    models.Section     `json:"section"`
	Post       models.PostSummary `json:"post"`
	Content    string             `json:"content"`
	HTML       string             `json:"html"`
	Theme      theme.Mode         `json:"theme"`
	Breadcrumb []Crumb            `json:"breadcrumb"`
}

// Home is the landing view.
type Home struct {
	Recent     []models.PostSummary   `json:"recent"`
	Categories []models.CategoryCount `json:"categories"`
	Tags       []models.TagCount      `json:"tags"`
}

// EventPublisher receives theme changes; *sse.Broker satisfies it.
type EventPublisher interface {
	PublishThemeChange(mode string)
}

// Service coordinates the catalog, aggregator, resolver and theme.
type Service struct {
	catalog  *catalog.Store
	agg      *aggregate.Aggregator
	resolver *resolver.Resolver
	html     *markdown.HTMLRenderer
	themes   *theme.Manager
	events   EventPublisher
	logger   *slog.Logger
}

// NewService creates a new blog service. events may be nil.
func NewService(store *catalog.Store, res *resolver.Resolver, themes *theme.Manager,
	html *markdown.HTMLRenderer, events EventPublisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		catalog:  store,
		agg:      aggregate.New(store),
		resolver: res,
		html:     html,
		themes:   themes,
		events:   events,
		logger:   logger,
	}
}

// Home returns the landing view with up to limit recent posts.
func (s *Service) Home(limit int) Home {
	return Home{
		Recent:     s.agg.RecentPosts(limit),
		Categories: s.agg.CategoryCounts(),
		Tags:       s.agg.TagCounts(),
	}
}

// Recent returns the n newest posts across all sections.
func (s *Service) Recent(n int) []models.PostSummary {
	return s.agg.RecentPosts(n)
}

// Categories returns post counts per category.
func (s *Service) Categories() []models.CategoryCount {
	return s.agg.CategoryCounts()
}

// CategoryGroups returns every post grouped by category.
func (s *Service) CategoryGroups() []models.CategoryGroup {
	return s.agg.GroupByCategory()
}

// Tags returns post counts per tag.
func (s *Service) Tags() []models.TagCount {
	return s.agg.TagCounts()
}

// Sections returns section metadata in catalog order.
func (s *Service) Sections() []models.Section {
	return s.catalog.Sections()
}

// Section returns one section page.
func (s *Service) Section(key string) (models.SectionListing, error) {
	listing, ok := s.agg.SectionListing(key)
	if !ok {
		return listing, fmt.Errorf("%w: %s", apperr.ErrUnknownSection, key)
	}
	return listing, nil
}

// Post resolves (section, idParam) and renders it in the current theme.
// A post whose body cannot be fetched is still returned, with empty
// content.
func (s *Service) Post(ctx context.Context, section, idParam string) (*PostDetail, error) {
	resolved := s.resolver.Resolve(ctx, section, idParam)
	if !resolved.Found {
		return nil, apperr.ErrNotFound
	}
	return s.detail(resolved), nil
}

func (s *Service) detail(resolved models.ResolvedPost) *PostDetail {
	meta, _ := markdown.Split(resolved.Body)
	post := meta.Fill(resolved.Summary)
	meta, _ := s.catalog.Section(post.Section)
	mode := s.themes.Mode()

	html, err := s.html.Render(resolved.Body, mode)
	if err != nil {
		s.logger.Warn("blog: render failed",
			slog.String("section", post.Section),
			slog.Int("id", post.ID),
			slog.String("error", err.Error()))
		html = ""
	}

	return &PostDetail{
		Section:    meta,
		Post:       post,
		Content:    resolved.Body,
		HTML:       html,
		Theme:      mode,
		Breadcrumb: Breadcrumb(meta),
	}
}

// Breadcrumb returns Home followed by the post's section.
func Breadcrumb(section models.Section) []Crumb {
	title := section.Title
	if title == "" {
		title = section.Key
	}
	return []Crumb{
		{Label: "Home", Path: route.Home()},
		{Label: title, Path: route.SectionPath(section.Key)},
	}
}

// Theme returns the current theme mode.
func (s *Service) Theme() theme.Mode {
	return s.themes.Mode()
}

// ToggleTheme flips the theme, persists it and announces the change.
func (s *Service) ToggleTheme(ctx context.Context) (theme.Mode, error) {
	mode, err := s.themes.Toggle(ctx)
	if err != nil {
		return mode, err
	}
	s.announce(mode)
	return mode, nil
}

// SetTheme stores an explicit theme mode.
func (s *Service) SetTheme(ctx context.Context, raw string) (theme.Mode, error) {
	mode, err := theme.ParseMode(raw)
	if err != nil {
		return s.themes.Mode(), fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	mode, err = s.themes.Set(ctx, mode)
	if err != nil {
		return mode, err
	}
	s.announce(mode)
	return mode, nil
}

func (s *Service) announce(mode theme.Mode) {
	if s.events != nil {
		s.events.PublishThemeChange(string(mode))
	}
}
