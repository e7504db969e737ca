// Package aggregate derives the cross-section listing views of the blog:
// recency lists, category counts and groups, tag counts, section pages.
//
// Every operation works on copies handed out by the Source and sorts with
// a stable sort, so the same catalog always produces the same output.
// Posts with a malformed date sort as older than every valid date and
// keep their merged-input order among themselves.
package aggregate

import (
	"slices"

	"github.com/starford/devlog/internal/models"
)

// Source is the read side of the post catalog.
type Source interface {
	All() []models.PostSummary
	Posts(section string) []models.PostSummary
	Section(key string) (models.Section, bool)
}

// Aggregator computes listing views from a Source.
type Aggregator struct {
	src Source
}

// New creates an aggregator over src.
func New(src Source) *Aggregator {
	return &Aggregator{src: src}
}

// RecentPosts returns the n newest posts across all sections. Equal dates
// keep merged-input order.
func (a *Aggregator) RecentPosts(n int) []models.PostSummary {
	if n <= 0 {
		return []models.PostSummary{}
	}
	posts := a.src.All()
	sortByDateDesc(posts)
	if n < len(posts) {
		posts = posts[:n]
	}
	return posts
}

// CategoryCounts returns the number of posts per category, in the order
// categories are first encountered in the merged input.
func (a *Aggregator) CategoryCounts() []models.CategoryCount {
	out := []models.CategoryCount{}
	idx := make(map[string]int)
	for _, p := range a.src.All() {
		i, ok := idx[p.Category]
		if !ok {
			i = len(out)
			idx[p.Category] = i
			out = append(out, models.CategoryCount{Category: p.Category})
		}
		out[i].Count++
	}
	return out
}

// GroupByCategory partitions all posts by category. Members are sorted
// newest first; groups are ordered by size, largest first, with ties in
// first-encounter order.
func (a *Aggregator) GroupByCategory() []models.CategoryGroup {
	groups := []models.CategoryGroup{}
	idx := make(map[string]int)
	for _, p := range a.src.All() {
		i, ok := idx[p.Category]
		if !ok {
			i = len(groups)
			idx[p.Category] = i
			groups = append(groups, models.CategoryGroup{Category: p.Category})
		}
		groups[i].Posts = append(groups[i].Posts, p)
	}

	slices.SortStableFunc(groups, func(x, y models.CategoryGroup) int {
		return len(y.Posts) - len(x.Posts)
	})
	for i := range groups {
		sortByDateDesc(groups[i].Posts)
	}
	return groups
}

// TagCounts returns how many posts carry each tag, in first-encounter
// order. A tag repeated on one post counts once for that post.
func (a *Aggregator) TagCounts() []models.TagCount {
	out := []models.TagCount{}
	idx := make(map[string]int)
	for _, p := range a.src.All() {
		seen := make(map[string]struct{}, len(p.Tags))
		for _, tag := range p.Tags {
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			i, ok := idx[tag]
			if !ok {
				i = len(out)
				idx[tag] = i
				out = append(out, models.TagCount{Tag: tag})
			}
			out[i].Count++
		}
	}
	return out
}

// SectionListing returns one section page with posts newest first. The
// boolean is false for an unknown section, whose listing is empty.
func (a *Aggregator) SectionListing(section string) (models.SectionListing, bool) {
	meta, ok := a.src.Section(section)
	posts := a.src.Posts(section)
	sortByDateDesc(posts)
	return models.SectionListing{Section: meta, Posts: posts}, ok
}

func sortByDateDesc(posts []models.PostSummary) {
	slices.SortStableFunc(posts, func(x, y models.PostSummary) int {
		return y.Time().Compare(x.Time())
	})
}
