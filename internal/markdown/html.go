package markdown

import (
	"bytes"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/starford/devlog/internal/theme"
)

// Code block styles per theme.
const (
	LightCodeStyle = "github"
	DarkCodeStyle  = "monokai"
)

// HTMLRenderer converts markdown to HTML with GFM extensions and syntax
// highlighted code blocks. One goldmark engine is kept per theme; engines
// are safe for concurrent use.
type HTMLRenderer struct {
	engines map[theme.Mode]goldmark.Markdown
}

// NewHTMLRenderer builds engines for both themes.
func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{engines: map[theme.Mode]goldmark.Markdown{
		theme.Light: newEngine(LightCodeStyle),
		theme.Dark:  newEngine(DarkCodeStyle),
	}}
}

func newEngine(style string) goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle(style),
				highlighting.WithFormatOptions(chromahtml.TabWidth(4)),
			),
		),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
}

// Render strips front matter from src and renders the rest. An unknown
// mode renders with the light engine.
func (r *HTMLRenderer) Render(src string, mode theme.Mode) (string, error) {
	_, body := Split(src)
	engine, ok := r.engines[mode]
	if !ok {
		engine = r.engines[theme.Light]
	}
	var buf bytes.Buffer
	if err := engine.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("markdown: render html: %w", err)
	}
	return buf.String(), nil
}
