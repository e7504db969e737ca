// Package catalog holds the post catalog: one ordered sequence of post
// summaries per section, immutable once built.
package catalog

import (
	"fmt"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/starford/devlog/internal/apperr"
	"github.com/starford/devlog/internal/models"
)

// Known section keys.
const (
	SectionDevlife = "devlife"
	SectionProject = "project"
	SectionStudy   = "study"
)

// SectionData is the input for one section of a catalog.
type SectionData struct {
	Key         string               `yaml:"key"`
	Title       string               `yaml:"title"`
	Description string               `yaml:"description"`
	Posts       []models.PostSummary `yaml:"posts"`
}

// Catalog is an immutable set of per-section post sequences. The zero
// value is an empty catalog.
type Catalog struct {
	sections []models.Section
	posts    map[string][]models.PostSummary
}

var titleCaser = cases.Title(language.English)

// New validates the sections and builds a catalog. Section order is kept
// and defines the merge order of All. Post records without a section are
// assigned the owning key.
func New(sections ...SectionData) (*Catalog, error) {
	c := &Catalog{posts: make(map[string][]models.PostSummary, len(sections))}
	for _, sd := range sections {
		key := strings.ToLower(strings.TrimSpace(sd.Key))
		if key == "" {
			return nil, fmt.Errorf("%w: section key is required", apperr.ErrInvalidCatalog)
		}
		if _, dup := c.posts[key]; dup {
			return nil, fmt.Errorf("%w: duplicate section %q", apperr.ErrInvalidCatalog, key)
		}

		seen := make(map[int]struct{}, len(sd.Posts))
		posts := make([]models.PostSummary, 0, len(sd.Posts))
		for i, p := range sd.Posts {
			p.Section = strings.ToLower(strings.TrimSpace(p.Section))
			if p.Section == "" {
				p.Section = key
			}
			if p.Section != key {
				return nil, fmt.Errorf("%w: %s[%d]: section %q does not match %q",
					apperr.ErrInvalidCatalog, key, i, p.Section, key)
			}
			if err := validatePost(&p); err != nil {
				return nil, fmt.Errorf("%w: %s[%d]: %v", apperr.ErrInvalidCatalog, key, i, err)
			}
			if _, dup := seen[p.ID]; dup {
				return nil, fmt.Errorf("%w: %s: duplicate id %d", apperr.ErrInvalidCatalog, key, p.ID)
			}
			seen[p.ID] = struct{}{}
			if p.Tags == nil {
				p.Tags = []string{}
			}
			p.Tags = slices.Clone(p.Tags)
			posts = append(posts, p)
		}

		title := sd.Title
		if title == "" {
			title = titleCaser.String(key)
		}
		c.sections = append(c.sections, models.Section{Key: key, Title: title, Description: sd.Description})
		c.posts[key] = posts
	}
	return c, nil
}

func validatePost(p *models.PostSummary) error {
	return validation.ValidateStruct(p,
		validation.Field(&p.ID, validation.Min(0)),
		validation.Field(&p.Title, validation.Required),
		validation.Field(&p.Category, validation.Required),
		validation.Field(&p.Date, validation.Required),
		validation.Field(&p.ContentPath, validation.Required),
	)
}

// Posts returns a copy of the section's posts in catalog order. An unknown
// key yields an empty slice.
func (c *Catalog) Posts(section string) []models.PostSummary {
	if c == nil {
		return []models.PostSummary{}
	}
	posts, ok := c.posts[strings.ToLower(section)]
	if !ok {
		return []models.PostSummary{}
	}
	return clonePosts(posts)
}

// All returns every post: sections in catalog order, posts in section order.
func (c *Catalog) All() []models.PostSummary {
	out := []models.PostSummary{}
	if c == nil {
		return out
	}
	for _, s := range c.sections {
		out = append(out, clonePosts(c.posts[s.Key])...)
	}
	return out
}

// Sections returns section metadata in catalog order.
func (c *Catalog) Sections() []models.Section {
	if c == nil {
		return []models.Section{}
	}
	return slices.Clone(c.sections)
}

// Section looks up one section's metadata.
func (c *Catalog) Section(key string) (models.Section, bool) {
	if c == nil {
		return models.Section{}, false
	}
	key = strings.ToLower(key)
	for _, s := range c.sections {
		if s.Key == key {
			return s, true
		}
	}
	return models.Section{}, false
}

// Len returns the total number of posts.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, posts := range c.posts {
		n += len(posts)
	}
	return n
}

// MalformedDates returns the posts whose date does not parse.
func (c *Catalog) MalformedDates() []models.PostSummary {
	var out []models.PostSummary
	for _, p := range c.All() {
		if _, ok := models.ParseDate(p.Date); !ok {
			out = append(out, p)
		}
	}
	return out
}

// clonePosts copies posts deeply enough that callers cannot reach the
// catalog's tag slices.
func clonePosts(posts []models.PostSummary) []models.PostSummary {
	out := make([]models.PostSummary, len(posts))
	for i, p := range posts {
		p.Tags = slices.Clone(p.Tags)
		out[i] = p
	}
	return out
}
