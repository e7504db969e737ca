package markdown

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/glamour"

	"github.com/starford/devlog/internal/theme"
)

// DefaultWrap is the terminal word-wrap width.
const DefaultWrap = 80

// TerminalRenderer renders markdown as ANSI text for the browse command.
type TerminalRenderer struct {
	mu        sync.Mutex
	renderers map[theme.Mode]*glamour.TermRenderer
}

// NewTerminalRenderer builds glamour renderers for both themes.
func NewTerminalRenderer(wrap int) (*TerminalRenderer, error) {
	if wrap <= 0 {
		wrap = DefaultWrap
	}
	tr := &TerminalRenderer{renderers: make(map[theme.Mode]*glamour.TermRenderer, 2)}
	for _, mode := range []theme.Mode{theme.Light, theme.Dark} {
		r, err := glamour.NewTermRenderer(
			glamour.WithStylePath(string(mode)),
			glamour.WithWordWrap(wrap),
		)
		if err != nil {
			return nil, fmt.Errorf("markdown: terminal renderer %s: %w", mode, err)
		}
		tr.renderers[mode] = r
	}
	return tr, nil
}

// Render strips front matter from src and renders the rest for mode.
func (t *TerminalRenderer) Render(src string, mode theme.Mode) (string, error) {
	_, body := Split(src)
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.renderers[mode]
	if !ok {
		r = t.renderers[theme.Light]
	}
	out, err := r.Render(body)
	if err != nil {
		return "", fmt.Errorf("markdown: render terminal: %w", err)
	}
	return out, nil
}
