// Package route parses and builds the two navigation forms the blog uses:
// /{section} and /{section}/{id}.
package route

import (
	"strconv"
	"strings"
)

// Kind classifies a navigation target.
type Kind int

const (
	KindHome Kind = iota
	KindSection
	KindPost
)

// Target is a parsed navigation target. ID is kept in its raw text form;
// the resolver owns its interpretation.
type Target struct {
	Kind    Kind
	Section string
	ID      string
}

// Parse splits a path into a navigation target. Extra segments after the
// id are ignored. A leading base path must be stripped by the caller.
func Parse(path string) Target {
	path = strings.Trim(strings.TrimSpace(path), "/")
	if path == "" {
		return Target{Kind: KindHome}
	}
	parts := strings.Split(path, "/")
	section := strings.ToLower(parts[0])
	if len(parts) == 1 || parts[1] == "" {
		return Target{Kind: KindSection, Section: section}
	}
	return Target{Kind: KindPost, Section: section, ID: parts[1]}
}

// Home returns the landing page path.
func Home() string { return "/" }

// SectionPath returns /{section}.
func SectionPath(section string) string {
	return "/" + section
}

// PostPath returns /{section}/{id}.
func PostPath(section string, id int) string {
	return "/" + section + "/" + strconv.Itoa(id)
}

// ParseID converts a route id parameter into an integer. Only unsigned
// base-10 digits, optionally surrounded by whitespace, are accepted.
func ParseID(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.TrimLeft(raw, "0123456789") != "" {
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return id, true
}
