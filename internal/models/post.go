// Package models defines the domain types for the blog.
package models

// PostSummary is the metadata record of one article. The body lives
// elsewhere and is fetched through ContentPath.
type PostSummary struct {
	ID           int      `json:"id" yaml:"id"`
	Section      string   `json:"section" yaml:"section"`
	Category     string   `json:"category" yaml:"category"`
	ProjectTitle string   `json:"projectTitle,omitempty" yaml:"projectTitle,omitempty"`
	Title        string   `json:"title" yaml:"title"`
	Date         string   `json:"date" yaml:"date"`
	Summary      string   `json:"summary" yaml:"summary"`
	Tags         []string `json:"tags" yaml:"tags"`
	ContentPath  string   `json:"contentPath" yaml:"contentPath"`
}

// Key returns the (section, id) identity of the post.
func (p PostSummary) Key() PostKey {
	return PostKey{Section: p.Section, ID: p.ID}
}

// PostKey identifies a post. Ids are only unique within a section.
type PostKey struct {
	Section string `json:"section"`
	ID      int    `json:"id"`
}

// Section describes one top-level content grouping.
type Section struct {
	Key         string `json:"key"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// CategoryCount is one entry of the category overview.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// TagCount is one entry of the tag overview.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// CategoryGroup holds the posts of one category, newest first.
type CategoryGroup struct {
	Category string        `json:"category"`
	Posts    []PostSummary `json:"posts"`
}

// SectionListing is a section page: metadata plus posts, newest first.
type SectionListing struct {
	Section Section       `json:"section"`
	Posts   []PostSummary `json:"posts"`
}

// ResolvedPost is a matched summary plus its fetched body, or the
// not-found sentinel when Found is false.
type ResolvedPost struct {
	Found   bool        `json:"found"`
	Summary PostSummary `json:"summary"`
	Body    string      `json:"body"`
}

// NotFoundPost is the sentinel for a navigation that matched nothing.
var NotFoundPost = ResolvedPost{}
