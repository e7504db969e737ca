package storage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/starford/devlog/internal/apperr"
)

func TestNewHTTP_RejectsNonHTTP(t *testing.T) {
	if _, err := NewHTTP("ftp://example.com", time.Second); err == nil {
		t.Error("expected error for ftp base url")
	}
}

func TestHTTPFetch_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/blog/posts/project/GA4.md" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("# GA4"))
	}))
	defer srv.Close()

	h, err := NewHTTP(srv.URL+"/blog", time.Second)
	if err != nil {
		t.Fatal(err)
	}
	got, err := h.Fetch(context.Background(), "/posts/project/GA4.md")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got != "# GA4" {
		t.Errorf("Fetch = %q", got)
	}
}

func TestHTTPFetch_AbsoluteURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("abs"))
	}))
	defer srv.Close()

	h, _ := NewHTTP("http://unused.invalid", time.Second)
	got, err := h.Fetch(context.Background(), srv.URL+"/x.md")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got != "abs" {
		t.Errorf("Fetch = %q", got)
	}
}

func TestHTTPFetch_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	h, _ := NewHTTP(srv.URL, time.Second)
	_, err := h.Fetch(context.Background(), "/missing.md")
	if !errors.Is(err, apperr.ErrContentFetch) {
		t.Fatalf("err = %v, want ErrContentFetch", err)
	}
	if !strings.Contains(err.Error(), "status 404") {
		t.Errorf("err = %v, want status in message", err)
	}
}

func TestHTTPFetch_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	h, _ := NewHTTP(url, time.Second)
	if _, err := h.Fetch(context.Background(), "/a.md"); !errors.Is(err, apperr.ErrContentFetch) {
		t.Errorf("err = %v, want ErrContentFetch", err)
	}
}

func TestHTTPFetch_BodyTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer srv.Close()

	h, _ := NewHTTP(srv.URL, time.Second, WithMaxBodyBytes(16))
	if _, err := h.Fetch(context.Background(), "/big.md"); !errors.Is(err, apperr.ErrContentFetch) {
		t.Errorf("err = %v, want ErrContentFetch", err)
	}
}

func TestHTTPFetch_CallerCancel(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write([]byte("late"))
	}))
	defer srv.Close()
	defer close(release)

	h, _ := NewHTTP(srv.URL, 5*time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := h.Fetch(ctx, "/slow.md"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}

func TestNewHTTP_ZeroTimeoutUsesDefault(t *testing.T) {
	h, err := NewHTTP("http://example.com", 0)
	if err != nil {
		t.Fatal(err)
	}
	if h.timeout != DefaultTimeout || h.client.Timeout != DefaultTimeout {
		t.Errorf("timeout = %v, client timeout = %v, want %v", h.timeout, h.client.Timeout, DefaultTimeout)
	}
}

func TestHTTPFetch_StalledHostReleasesWaiters(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	// A client without its own timeout must not leave the shared request
	// running past the store timeout.
	h, _ := NewHTTP(srv.URL, 100*time.Millisecond, WithClient(&http.Client{}))

	first, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := h.Fetch(first, "/stalled.md"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("first err = %v, want deadline exceeded", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := h.Fetch(context.Background(), "/stalled.md")
		done <- err
	}()
	select {
	case err := <-done:
		if !errors.Is(err, apperr.ErrContentFetch) {
			t.Errorf("err = %v, want ErrContentFetch", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("fetch joined a stalled request and never returned")
	}
}

func TestHTTPFetch_SharesConcurrentRequests(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		_, _ = w.Write([]byte("shared"))
	}))
	defer srv.Close()

	h, _ := NewHTTP(srv.URL, 5*time.Second)

	var wg sync.WaitGroup
	results := make([]string, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = h.Fetch(context.Background(), "/same.md")
		}(i)
	}
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := hits.Load(); n != 1 {
		t.Errorf("server hits = %d, want 1", n)
	}
	for i, r := range results {
		if r != "shared" {
			t.Errorf("results[%d] = %q", i, r)
		}
	}
}
