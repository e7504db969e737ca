// Package browse is a line-oriented terminal reader. Each input line is a
// route ("/", "/project", "/project/4") or a command (":theme",
// ":refresh", ":quit"); posts are resolved through a resolver.View and
// rendered with the terminal markdown renderer in the current theme.
package browse

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/starford/devlog/internal/blog"
	"github.com/starford/devlog/internal/models"
	"github.com/starford/devlog/internal/resolver"
	"github.com/starford/devlog/internal/route"
	"github.com/starford/devlog/internal/theme"
)

// Renderer turns a markdown body into terminal output for a theme.
type Renderer interface {
	Render(src string, mode theme.Mode) (string, error)
}

// Reader runs one interactive browsing session.
type Reader struct {
	svc    *blog.Service
	render Renderer
	logger *slog.Logger

	mu  sync.Mutex // guards out
	out io.Writer

	view *resolver.View
}

// New creates a reader writing to out. Close releases the view.
func New(ctx context.Context, svc *blog.Service, res *resolver.Resolver, render Renderer, out io.Writer, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Reader{svc: svc, render: render, logger: logger, out: out}
	r.view = res.NewView(ctx, r.observe)
	return r
}

// Close cancels any in-flight fetch.
func (r *Reader) Close() {
	r.view.Close()
}

// Run reads commands from in until EOF, ":quit" or ctx is done.
func (r *Reader) Run(ctx context.Context, in io.Reader) error {
	r.printf("devlog (%s theme). Enter a path like /project/4, or :help.\n", r.svc.Theme())

	lines := make(chan string)
	errc := make(chan error, 1)
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-stop:
				return
			}
		}
		errc <- sc.Err()
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return <-errc
			}
			if quit := r.Exec(ctx, line); quit {
				return nil
			}
		}
	}
}

// Exec handles one input line. It reports whether the session should end.
func (r *Reader) Exec(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	switch line {
	case "":
		return false
	case ":q", ":quit", ":exit":
		return true
	case ":help":
		r.printf("paths: /  /devlife  /project  /study  /{section}/{id}\n")
		r.printf("commands: :theme  :refresh  :quit\n")
		return false
	case ":theme":
		mode, err := r.svc.ToggleTheme(ctx)
		if err != nil {
			r.printf("theme: %v\n", err)
			return false
		}
		r.printf("theme: %s\n", mode)
		if snap := r.view.Snapshot(); snap.State == resolver.StateResolved {
			r.printPost(snap)
		}
		return false
	case ":refresh":
		r.Refresh()
		r.settleAndPrint(ctx)
		return false
	}

	target := route.Parse(line)
	switch target.Kind {
	case route.KindHome:
		r.printHome()
	case route.KindSection:
		r.printSection(target.Section)
	case route.KindPost:
		r.view.Navigate(target.Section, target.ID)
		r.settleAndPrint(ctx)
	}
	return false
}

// Refresh re-resolves the current post, e.g. after a catalog reload.
func (r *Reader) Refresh() {
	r.view.Refresh()
}

func (r *Reader) observe(s resolver.Snapshot) {
	r.logger.Debug("browse: view transition",
		slog.String("state", s.State.String()),
		slog.String("section", s.Section),
		slog.String("id", s.ID))
	if s.State == resolver.StateFetching {
		r.printf("loading %s ...\n", route.PostPath(s.Post.Section, s.Post.ID))
	}
}

func (r *Reader) settleAndPrint(ctx context.Context) {
	snap, err := r.view.Settle(ctx)
	if err != nil {
		return
	}
	switch snap.State {
	case resolver.StateResolved:
		r.printPost(snap)
	case resolver.StateNotFound:
		r.printf("post not found: /%s/%s\n", snap.Section, snap.ID)
	}
}

func (r *Reader) printHome() {
	home := r.svc.Home(blog.DefaultHomeLimit)
	var b strings.Builder
	b.WriteString("Recent posts\n")
	for _, p := range home.Recent {
		fmt.Fprintf(&b, "  %s\n", postLine(p))
	}
	b.WriteString("Categories\n")
	for _, c := range home.Categories {
		fmt.Fprintf(&b, "  %s (%d)\n", c.Category, c.Count)
	}
	r.printf("%s", b.String())
}

func (r *Reader) printSection(key string) {
	listing, err := r.svc.Section(key)
	if err != nil {
		r.printf("unknown section: %s\n", key)
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s", listing.Section.Title)
	if listing.Section.Description != "" {
		fmt.Fprintf(&b, " - %s", listing.Section.Description)
	}
	b.WriteString("\n")
	if len(listing.Posts) == 0 {
		b.WriteString("  (no posts)\n")
	}
	for _, p := range listing.Posts {
		fmt.Fprintf(&b, "  %s\n", postLine(p))
	}
	r.printf("%s", b.String())
}

func (r *Reader) printPost(s resolver.Snapshot) {
	post := s.Resolved()
	if !post.Found {
		return
	}
	p := post.Summary
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", p.Title)
	meta := []string{p.Category, p.Date}
	if p.ProjectTitle != "" {
		meta = append([]string{p.ProjectTitle}, meta...)
	}
	fmt.Fprintf(&b, "%s\n", strings.Join(meta, " · "))
	if len(p.Tags) > 0 {
		fmt.Fprintf(&b, "#%s\n", strings.Join(p.Tags, " #"))
	}

	if post.Body == "" {
		b.WriteString("\n(no content)\n")
	} else {
		out, err := r.render.Render(post.Body, r.svc.Theme())
		if err != nil {
			r.logger.Warn("browse: render failed", slog.String("error", err.Error()))
			out = post.Body
		}
		b.WriteString(out)
	}
	r.printf("%s", b.String())
}

func postLine(p models.PostSummary) string {
	return fmt.Sprintf("%-16s %s  %s", route.PostPath(p.Section, p.ID), p.Date, p.Title)
}

func (r *Reader) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, format, args...)
}
