package blog

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/starford/devlog/internal/apperr"
	"github.com/starford/devlog/internal/markdown"
	"github.com/starford/devlog/internal/resolver"
	"github.com/starford/devlog/internal/storage"
	"github.com/starford/devlog/internal/testutil"
	"github.com/starford/devlog/internal/theme"
)

type recordingPublisher struct {
	mu    sync.Mutex
	modes []string
}

func (p *recordingPublisher) PublishThemeChange(mode string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.modes = append(p.modes, mode)
}

func newTestService(t *testing.T, files map[string]string) (*Service, *recordingPublisher) {
	t.Helper()
	fs, err := storage.NewFS(testutil.ContentDir(t, files))
	if err != nil {
		t.Fatal(err)
	}
	logger := testutil.Logger()
	store := testutil.SampleStore(t)
	themes := theme.Init(context.Background(), testutil.TestDB(t), theme.Light, logger)
	pub := &recordingPublisher{}
	svc := NewService(store, resolver.New(store, fs, logger), themes, markdown.NewHTMLRenderer(), pub, logger)
	return svc, pub
}

func TestHome(t *testing.T) {
	svc, _ := newTestService(t, nil)
	home := svc.Home(DefaultHomeLimit)
	if len(home.Recent) != 3 {
		t.Fatalf("recent = %d, want 3", len(home.Recent))
	}
	if home.Recent[0].Date != "2024-12-07" {
		t.Errorf("newest = %s, want 2024-12-07", home.Recent[0].Date)
	}
	if len(home.Categories) != 3 || home.Categories[0].Category != "Frontend" {
		t.Errorf("categories = %+v", home.Categories)
	}
	if len(home.Tags) == 0 {
		t.Error("tags should not be empty")
	}
}

func TestSection(t *testing.T) {
	svc, _ := newTestService(t, nil)
	l, err := svc.Section("study")
	if err != nil {
		t.Fatalf("Section: %v", err)
	}
	if l.Section.Title != "Study" || len(l.Posts) != 2 || l.Posts[0].ID != 2 {
		t.Errorf("listing = %+v", l)
	}
	if _, err := svc.Section("etc"); !errors.Is(err, apperr.ErrUnknownSection) {
		t.Errorf("err = %v, want ErrUnknownSection", err)
	}
}

func TestPost(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{
		"/posts/project/DebounceAndThrottle.md": "---\ntitle: FandomK\n---\n# 디바운스\n\n```js\nconst x = 1\n```\n",
	})
	d, err := svc.Post(context.Background(), "project", "4")
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if d.Post.ProjectTitle != "FandomK" || d.Section.Key != "project" {
		t.Errorf("detail = %+v", d)
	}
	if !strings.HasPrefix(d.Content, "---") {
		t.Error("content should be the raw body")
	}
	if !strings.Contains(d.HTML, "<h1") || strings.Contains(d.HTML, "title: FandomK") {
		t.Errorf("html = %q", d.HTML)
	}
	if d.Theme != theme.Light {
		t.Errorf("theme = %q", d.Theme)
	}
	want := []Crumb{{Label: "Home", Path: "/"}, {Label: "Project", Path: "/project"}}
	if len(d.Breadcrumb) != 2 || d.Breadcrumb[0] != want[0] || d.Breadcrumb[1] != want[1] {
		t.Errorf("breadcrumb = %+v, want %+v", d.Breadcrumb, want)
	}
}

func TestPost_FrontMatterFillsEmptySummary(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{
		"/posts/devlife/FetchTwiceinJS.md":     "---\nsummary: fetch resolves twice\ntags: [ignored]\n---\n# Fetch\n",
		"/posts/devlife/React18NewFeatures.md": "---\nsummary: from body\n---\n# React 18\n",
	})
	ctx := context.Background()

	d, err := svc.Post(ctx, "devlife", "13")
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if d.Post.Summary != "fetch resolves twice" {
		t.Errorf("summary = %q, want front matter summary", d.Post.Summary)
	}
	if len(d.Post.Tags) != 2 || d.Post.Tags[0] != "JavaScript" {
		t.Errorf("tags = %v, catalog tags should win", d.Post.Tags)
	}

	d, err = svc.Post(ctx, "devlife", "1")
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if d.Post.Summary != "React 18" {
		t.Errorf("summary = %q, catalog summary should win", d.Post.Summary)
	}
}

func TestPost_MissingBody(t *testing.T) {
	svc, _ := newTestService(t, nil)
	d, err := svc.Post(context.Background(), "project", "4")
	if err != nil {
		t.Fatalf("missing body must not fail: %v", err)
	}
	if d.Content != "" || d.HTML != "" {
		t.Errorf("content = %q, html = %q, want empty", d.Content, d.HTML)
	}
}

func TestPost_NotFound(t *testing.T) {
	svc, _ := newTestService(t, nil)
	for _, id := range []string{"999", "4abc"} {
		if _, err := svc.Post(context.Background(), "project", id); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("Post(project, %q) err = %v, want ErrNotFound", id, err)
		}
	}
}

func TestThemeToggleAndSet(t *testing.T) {
	svc, pub := newTestService(t, nil)
	ctx := context.Background()

	if svc.Theme() != theme.Light {
		t.Fatalf("initial = %q", svc.Theme())
	}
	if m, err := svc.ToggleTheme(ctx); err != nil || m != theme.Dark {
		t.Fatalf("ToggleTheme = (%q, %v)", m, err)
	}
	if _, err := svc.SetTheme(ctx, "sepia"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("SetTheme(sepia) err = %v, want ErrInvalidInput", err)
	}
	if m, err := svc.SetTheme(ctx, "LIGHT"); err != nil || m != theme.Light {
		t.Errorf("SetTheme(LIGHT) = (%q, %v)", m, err)
	}
	if len(pub.modes) != 2 || pub.modes[0] != "dark" || pub.modes[1] != "light" {
		t.Errorf("published = %v, want [dark light]", pub.modes)
	}
}
