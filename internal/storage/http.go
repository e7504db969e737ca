package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/starford/devlog/internal/apperr"
)

const (
	defaultMaxBodyBytes = 5 << 20 // 5 MB

	// DefaultTimeout bounds a fetch when no positive timeout is configured.
	DefaultTimeout = 10 * time.Second
)

// HTTP implements ContentStore against a static asset host. Concurrent
// fetches of the same URL share one request.
type HTTP struct {
	base     *url.URL
	client   *http.Client
	timeout  time.Duration
	maxBytes int64
	group    singleflight.Group
}

// HTTPOption configures an HTTP store.
type HTTPOption func(*HTTP)

// WithClient replaces the default client. Fetches stay bounded by the
// store timeout whatever the client's own settings.
func WithClient(c *http.Client) HTTPOption {
	return func(h *HTTP) { h.client = c }
}

// WithMaxBodyBytes caps the size of a fetched body. Larger bodies are
// treated as a fetch failure.
func WithMaxBodyBytes(n int64) HTTPOption {
	return func(h *HTTP) {
		if n > 0 {
			h.maxBytes = n
		}
	}
}

// NewHTTP creates a store that resolves content paths against baseURL.
// Absolute content URLs are fetched as-is. A non-positive timeout is
// replaced by DefaultTimeout.
func NewHTTP(baseURL string, timeout time.Duration, opts ...HTTPOption) (*HTTP, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("storage: parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("storage: base url must be http(s): %s", baseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	h := &HTTP{
		base:     base,
		client:   &http.Client{Timeout: timeout},
		timeout:  timeout,
		maxBytes: defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// resolve turns a content path into an absolute URL.
func (h *HTTP) resolve(contentPath string) (string, error) {
	ref, err := url.Parse(contentPath)
	if err != nil {
		return "", err
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}
	ref.Path = CleanContentPath(ref.Path)
	return h.base.ResolveReference(ref).String(), nil
}

// Fetch implements ContentStore.
func (h *HTTP) Fetch(ctx context.Context, contentPath string) (string, error) {
	target, err := h.resolve(contentPath)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", apperr.ErrContentFetch, contentPath, err)
	}

	// The shared request is detached from the first caller and bounded by
	// the store timeout.
	ch := h.group.DoChan(target, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.timeout)
		defer cancel()
		return h.get(fetchCtx, target)
	})
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %s: %w", apperr.ErrContentFetch, contentPath, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (h *HTTP) get(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", apperr.ErrContentFetch, target, err)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", apperr.ErrContentFetch, target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return "", fmt.Errorf("%w: %s: status %d", apperr.ErrContentFetch, target, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("%w: %s: read body: %w", apperr.ErrContentFetch, target, err)
	}
	if int64(len(data)) > h.maxBytes {
		return "", fmt.Errorf("%w: %s: body exceeds %d bytes", apperr.ErrContentFetch, target, h.maxBytes)
	}
	return string(data), nil
}
