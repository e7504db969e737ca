package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/devlog/internal/blog"
	"github.com/starford/devlog/internal/markdown"
	"github.com/starford/devlog/internal/resolver"
	"github.com/starford/devlog/internal/sse"
	"github.com/starford/devlog/internal/storage"
	"github.com/starford/devlog/internal/testutil"
	"github.com/starford/devlog/internal/theme"
)

var sampleFiles = map[string]string{
	"/posts/project/DebounceAndThrottle.md": "# 디바운스와 스로틀\n\n```js\nconst wait = 300\n```\n",
	"/posts/devlife/React19_1.md":           "# React 19\n",
}

// testEnv wires a sample catalog, a temp content dir and a temp
// preference DB into the same routes the server mounts.
func testEnv(t *testing.T, broker *sse.Broker) http.Handler {
	t.Helper()

	fs, err := storage.NewFS(testutil.ContentDir(t, sampleFiles))
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	logger := testutil.Logger()
	store := testutil.SampleStore(t)
	themes := theme.Init(context.Background(), testutil.TestDB(t), theme.Light, logger)

	var events blog.EventPublisher
	var sseHandler http.Handler
	if broker != nil {
		events = broker
		sseHandler = broker
	}
	svc := blog.NewService(store, resolver.New(store, fs, logger), themes, markdown.NewHTMLRenderer(), events, logger)
	content := NewContentHandler(fs)

	r := chi.NewRouter()
	r.Mount("/api", NewRouter(svc, sseHandler, content))
	r.Get(ContentPrefix+"/*", content.ServeFile)
	return r
}

func do(t *testing.T, h http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v (body %q)", err, w.Body.String())
	}
	return v
}

func TestHome(t *testing.T) {
	router := testEnv(t, nil)
	w := do(t, router, http.MethodGet, "/api/home", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	home := decode[HomeResponse](t, w)
	if len(home.Recent) != 3 {
		t.Errorf("recent = %d, want 3", len(home.Recent))
	}
	if home.Recent[0].ID != 15 || home.Recent[1].ID != 16 {
		t.Errorf("equal dates must keep input order, got %d, %d", home.Recent[0].ID, home.Recent[1].ID)
	}
	if len(home.Categories) != 3 || home.Categories[0].Count != 7 {
		t.Errorf("categories = %+v", home.Categories)
	}
}

func TestRecentPosts_Limit(t *testing.T) {
	router := testEnv(t, nil)

	w := do(t, router, http.MethodGet, "/api/posts/recent?limit=100", nil)
	if got := decode[PostListResponse](t, w); len(got.Posts) != 10 {
		t.Errorf("limit=100 returned %d posts, want all 10", len(got.Posts))
	}

	w = do(t, router, http.MethodGet, "/api/posts/recent?limit=0", nil)
	if got := decode[PostListResponse](t, w); got.Posts == nil || len(got.Posts) != 0 {
		t.Errorf("limit=0 returned %+v, want empty list", got.Posts)
	}

	w = do(t, router, http.MethodGet, "/api/posts/recent?limit=abc", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("limit=abc status = %d, want 400", w.Code)
	}
}

func TestCategoriesAndGroups(t *testing.T) {
	router := testEnv(t, nil)

	counts := decode[CategoryCountsResponse](t, do(t, router, http.MethodGet, "/api/categories", nil))
	total := 0
	for _, c := range counts.Categories {
		total += c.Count
	}
	if total != 10 {
		t.Errorf("category counts sum to %d, want 10", total)
	}

	groups := decode[CategoryGroupsResponse](t, do(t, router, http.MethodGet, "/api/categories/groups", nil))
	if len(groups.Groups) != 3 || groups.Groups[0].Category != "Frontend" {
		t.Errorf("groups = %+v", groups.Groups)
	}

	tags := decode[TagCountsResponse](t, do(t, router, http.MethodGet, "/api/tags", nil))
	if len(tags.Tags) == 0 || tags.Tags[0].Tag != "React" {
		t.Errorf("tags = %+v", tags.Tags)
	}
}

func TestSections(t *testing.T) {
	router := testEnv(t, nil)

	all := decode[SectionsResponse](t, do(t, router, http.MethodGet, "/api/sections", nil))
	if len(all.Sections) != 3 || all.Sections[0].Key != "devlife" {
		t.Errorf("sections = %+v", all.Sections)
	}

	page := decode[SectionResponse](t, do(t, router, http.MethodGet, "/api/sections/project", nil))
	if page.Section.Title != "Project" || len(page.Posts) != 2 || page.Posts[0].ProjectTitle != "FandomK" {
		t.Errorf("project page = %+v", page)
	}

	if w := do(t, router, http.MethodGet, "/api/sections/etc", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown section status = %d, want 404", w.Code)
	}
}

func TestGetPost(t *testing.T) {
	router := testEnv(t, nil)
	w := do(t, router, http.MethodGet, "/api/sections/project/4", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	post := decode[PostDetail](t, w)
	if post.Post.Title != "조건부 렌더링 성능 최적화" || post.Post.Date != "2024-11-03" {
		t.Errorf("post = %+v", post.Post)
	}
	if !strings.Contains(post.Content, "디바운스와 스로틀") {
		t.Errorf("content = %q", post.Content)
	}
	if !strings.Contains(post.HTML, "<h1") || !strings.Contains(post.HTML, "<pre") {
		t.Errorf("html = %q", post.HTML)
	}
	if len(post.Breadcrumb) != 2 || post.Breadcrumb[1].Path != "/project" {
		t.Errorf("breadcrumb = %+v", post.Breadcrumb)
	}
}

func TestGetPost_MissingBodyStillRenders(t *testing.T) {
	router := testEnv(t, nil)
	w := do(t, router, http.MethodGet, "/api/sections/project/1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if post := decode[PostDetail](t, w); post.Content != "" || post.Post.ProjectTitle != "Trend24" {
		t.Errorf("post = %+v", post)
	}
}

func TestGetPost_NotFound(t *testing.T) {
	router := testEnv(t, nil)
	for _, target := range []string{
		"/api/sections/project/999",
		"/api/sections/project/abc",
		"/api/sections/etc/1",
	} {
		if w := do(t, router, http.MethodGet, target, nil); w.Code != http.StatusNotFound {
			t.Errorf("%s status = %d, want 404", target, w.Code)
		}
	}
}

func TestTheme(t *testing.T) {
	router := testEnv(t, nil)

	if got := decode[ThemeResponse](t, do(t, router, http.MethodGet, "/api/theme", nil)); got.Mode != "light" {
		t.Fatalf("initial mode = %q", got.Mode)
	}
	if got := decode[ThemeResponse](t, do(t, router, http.MethodPost, "/api/theme/toggle", nil)); got.Mode != "dark" {
		t.Errorf("toggled mode = %q, want dark", got.Mode)
	}

	body, _ := json.Marshal(SetThemeRequest{Mode: "light"})
	if got := decode[ThemeResponse](t, do(t, router, http.MethodPut, "/api/theme", body)); got.Mode != "light" {
		t.Errorf("set mode = %q, want light", got.Mode)
	}

	body, _ = json.Marshal(SetThemeRequest{Mode: "sepia"})
	if w := do(t, router, http.MethodPut, "/api/theme", body); w.Code != http.StatusBadRequest {
		t.Errorf("invalid mode status = %d, want 400", w.Code)
	}
	if w := do(t, router, http.MethodPut, "/api/theme", []byte("{")); w.Code != http.StatusBadRequest {
		t.Errorf("invalid JSON status = %d, want 400", w.Code)
	}
}

func TestServeContent(t *testing.T) {
	router := testEnv(t, nil)

	w := do(t, router, http.MethodGet, "/posts/devlife/React19_1.md", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Body.String() != "# React 19\n" {
		t.Errorf("body = %q", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/markdown") {
		t.Errorf("content type = %q", ct)
	}
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}

	req := httptest.NewRequest(http.MethodGet, "/posts/devlife/React19_1.md", nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotModified {
		t.Errorf("conditional status = %d, want 304", w.Code)
	}
}

func TestServeContent_NotFoundAndTraversal(t *testing.T) {
	router := testEnv(t, nil)
	for _, target := range []string{
		"/posts/devlife/Missing.md",
		"/posts/../../etc/passwd",
	} {
		if w := do(t, router, http.MethodGet, target, nil); w.Code != http.StatusNotFound {
			t.Errorf("%s status = %d, want 404", target, w.Code)
		}
	}
}

func TestContentIndex(t *testing.T) {
	router := testEnv(t, nil)
	got := decode[ContentIndexResponse](t, do(t, router, http.MethodGet, "/api/content", nil))
	if len(got.Files) != 2 {
		t.Fatalf("files = %+v, want 2", got.Files)
	}
	for _, f := range got.Files {
		if len(f.Checksum) != 64 {
			t.Errorf("checksum for %s = %q", f.Path, f.Checksum)
		}
	}
}

func TestEvents_ThemeChange(t *testing.T) {
	broker := sse.NewBroker(time.Second)
	defer broker.Close()
	router := testEnv(t, broker)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		router.ServeHTTP(w, req)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	if broker.ClientCount() != 1 {
		t.Fatalf("expected 1 SSE client")
	}

	if code := do(t, router, http.MethodPost, "/api/theme/toggle", nil).Code; code != http.StatusOK {
		t.Fatalf("toggle status = %d", code)
	}
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	if body := w.Body.String(); !strings.Contains(body, "event: theme.changed") || !strings.Contains(body, `"mode":"dark"`) {
		t.Errorf("SSE output = %q", body)
	}
}
