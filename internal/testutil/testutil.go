// Package testutil provides shared test helpers for catalogs, content
// directories, and preference databases.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/devlog/internal/catalog"
	"github.com/starford/devlog/internal/models"
	"github.com/starford/devlog/internal/prefs"
)

// Logger returns a logger that only reports errors, to keep test output quiet.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// SampleSections returns a small three-section catalog definition.
// devlife 15 and 16 share a date, as do devlife 13 and 14.
func SampleSections() []catalog.SectionData {
	return []catalog.SectionData{
		{
			Key:         catalog.SectionDevlife,
			Description: "개발 일상",
			Posts: []models.PostSummary{
				{ID: 1, Category: "Frontend", Title: "React 18 주요 변경 사항", Date: "2024-03-15",
					Summary: "React 18", Tags: []string{"React", "Frontend"}, ContentPath: "/posts/devlife/React18NewFeatures.md"},
				{ID: 13, Category: "Frontend", Title: "Why does fetch make me wait twice?", Date: "2024-12-04",
					Tags: []string{"JavaScript", "Fetch"}, ContentPath: "/posts/devlife/FetchTwiceinJS.md"},
				{ID: 14, Category: "Frontend", Title: "프론트엔드에서 대규모 트래픽 처리", Date: "2024-12-04",
					Tags: []string{"Frontend", "Traffic", "Next.js"}, ContentPath: "/posts/devlife/LargeTrafficinFrontend.md"},
				{ID: 15, Category: "Frontend", Title: "React 19 (1)", Date: "2024-12-07",
					Tags: []string{"React", "React 19"}, ContentPath: "/posts/devlife/React19_1.md"},
				{ID: 16, Category: "Frontend", Title: "React 19 (2)", Date: "2024-12-07",
					Tags: []string{"React", "React 19"}, ContentPath: "/posts/devlife/React19_2.md"},
				{ID: 17, Category: "Git", Title: "커밋 주기", Date: "2024-12-02",
					Tags: []string{"Git", "Commit"}, ContentPath: "/posts/devlife/CommitCycle.md"},
			},
		},
		{
			Key:         catalog.SectionProject,
			Description: "프로젝트 관련",
			Posts: []models.PostSummary{
				{ID: 1, Category: "Frontend", ProjectTitle: "Trend24", Title: "react-rnd 드래그 앤 드롭", Date: "2024-06-21",
					Tags: []string{"React", "react-rnd"}, ContentPath: "/posts/project/ReactRnd.md"},
				{ID: 4, Category: "Frontend", ProjectTitle: "FandomK", Title: "조건부 렌더링 성능 최적화", Date: "2024-11-03",
					Summary: "디바운스, 스로틀", Tags: []string{"React", "성능"}, ContentPath: "/posts/project/DebounceAndThrottle.md"},
			},
		},
		{
			Key:         catalog.SectionStudy,
			Description: "개발 공부",
			Posts: []models.PostSummary{
				{ID: 1, Category: "CS", Title: "운영체제 기초", Date: "2024-08-10",
					Tags: []string{"OS"}, ContentPath: "/posts/study/OS.md"},
				{ID: 2, Category: "Git", Title: "Git rebase", Date: "2024-09-01",
					Tags: []string{"Git"}, ContentPath: "/posts/study/GitRebase.md"},
			},
		},
	}
}

// SampleCatalog builds the catalog returned by SampleSections.
func SampleCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(SampleSections()...)
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	return c
}

// SampleStore wraps SampleCatalog in a catalog.Store.
func SampleStore(t *testing.T) *catalog.Store {
	t.Helper()
	return catalog.NewStore(SampleCatalog(t))
}

// ContentDir creates a temporary content directory containing files,
// keyed by content path (leading slash allowed).
func ContentDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for p, body := range files {
		abs := filepath.Join(dir, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(abs, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// TestDB creates a temporary preference database that is automatically cleaned up.
func TestDB(t *testing.T) *prefs.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "devlog-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := prefs.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
