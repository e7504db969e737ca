// Package markdown splits post bodies into front matter and markdown and
// renders them as HTML or terminal output in the current theme.
package markdown

import (
	"slices"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/starford/devlog/internal/models"
)

// Meta is the optional front matter block of a post body. The catalog
// stays authoritative; Meta only fills fields a record leaves empty.
type Meta struct {
	Summary string   `yaml:"summary"`
	Tags    []string `yaml:"tags"`
}

// Split separates a leading front matter block from the markdown body.
// Bodies without front matter, or with front matter that does not parse,
// are returned whole with an empty Meta.
func Split(body string) (Meta, string) {
	var meta Meta
	rest, err := frontmatter.Parse(strings.NewReader(body), &meta)
	if err != nil {
		return Meta{}, body
	}
	return meta, strings.TrimLeft(string(rest), "\r\n")
}

// Fill returns post with an empty summary or tag list taken from m.
func (m Meta) Fill(post models.PostSummary) models.PostSummary {
	if post.Summary == "" {
		post.Summary = m.Summary
	}
	if len(post.Tags) == 0 && len(m.Tags) > 0 {
		post.Tags = slices.Clone(m.Tags)
	}
	return post
}
