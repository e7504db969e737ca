package catalog

import "github.com/starford/devlog/internal/models"

// MissingContent returns the posts whose content path is not reported as
// present by exists. It is a startup diagnostic; a missing body is not
// fatal and resolves to an empty post body at render time.
func MissingContent(c *Catalog, exists func(contentPath string) bool) []models.PostSummary {
	var out []models.PostSummary
	for _, p := range c.All() {
		if !exists(p.ContentPath) {
			out = append(out, p)
		}
	}
	return out
}
