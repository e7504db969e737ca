package resolver

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/starford/devlog/internal/models"
)

// State is the resolution state of a View.
type State int

const (
	StateIdle State = iota
	StatePending
	StateFound
	StateFetching
	StateResolved
	StateNotFound
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateFound:
		return "found"
	case StateFetching:
		return "fetching"
	case StateResolved:
		return "resolved"
	case StateNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Terminal reports whether a navigation ends in s.
func (s State) Terminal() bool {
	return s == StateResolved || s == StateNotFound
}

// Snapshot is the observable state of a View. Generation increases with
// every navigation and every refresh that restarts resolution.
type Snapshot struct {
	Generation uint64
	State      State
	Section    string
	ID         string
	Post       models.PostSummary
	Body       string
}

// Resolved converts a terminal snapshot to a ResolvedPost.
func (s Snapshot) Resolved() models.ResolvedPost {
	if s.State != StateResolved {
		return models.NotFoundPost
	}
	return models.ResolvedPost{Found: true, Summary: s.Post, Body: s.Body}
}

// Observer receives every state transition. It runs with the view locked
// and must not call back into the View.
type Observer func(Snapshot)

// View is a long-lived rendering context: it follows one navigation
// target at a time, re-resolving only when the target changes, and drops
// fetch results that belong to a superseded navigation.
type View struct {
	r       *Resolver
	base    context.Context
	observe Observer

	mu          sync.Mutex
	snap        Snapshot
	fetchedPath string // content path the current Body was fetched from
	cancel      context.CancelFunc
	done        chan struct{}
	doneClosed  bool
	closed      bool
	wg          sync.WaitGroup
}

// NewView creates an idle view. Fetches run under ctx.
func (r *Resolver) NewView(ctx context.Context, observe Observer) *View {
	return &View{
		r:          r,
		base:       ctx,
		observe:    observe,
		done:       make(chan struct{}),
		doneClosed: false,
	}
}

// Snapshot returns the current state.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snap
}

// Navigate points the view at (section, idParam). Navigating to the
// current target is a no-op, including spellings of the same id such as
// "04" for "4".
func (v *View) Navigate(section, idParam string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	if v.snap.State != StateIdle && v.sameTargetLocked(section, idParam) {
		return
	}

	v.supersedeLocked()
	v.snap = Snapshot{Generation: v.snap.Generation, State: StatePending, Section: section, ID: idParam}
	v.fetchedPath = ""
	v.emitLocked()

	post, ok := v.r.Lookup(section, idParam)
	if !ok {
		v.notFoundLocked()
		return
	}
	v.snap.State = StateFound
	v.snap.Post = post
	v.emitLocked()
	v.startFetchLocked()
}

// Refresh re-runs the lookup for the current target, typically after a
// catalog reload. The body is fetched again only if the content path
// changed; an in-flight fetch of an unchanged path keeps running.
func (v *View) Refresh() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed || v.snap.State == StateIdle {
		return
	}

	post, ok := v.r.Lookup(v.snap.Section, v.snap.ID)
	switch {
	case !ok:
		if v.snap.State == StateNotFound {
			return
		}
		v.supersedeLocked()
		v.fetchedPath = ""
		v.notFoundLocked()

	case v.snap.State == StateFetching && post.ContentPath == v.snap.Post.ContentPath:
		if !samePost(post, v.snap.Post) {
			v.snap.Post = post
			v.emitLocked()
		}

	case v.snap.State == StateResolved && post.ContentPath == v.fetchedPath:
		if !samePost(post, v.snap.Post) {
			v.snap.Post = post
			v.emitLocked()
		}

	default:
		v.supersedeLocked()
		v.fetchedPath = ""
		v.snap.State = StateFound
		v.snap.Post = post
		v.snap.Body = ""
		v.emitLocked()
		v.startFetchLocked()
	}
}

// Settle blocks until the current navigation reaches a terminal state, the
// view is idle, or ctx is done. A navigation that is superseded while
// waiting is followed to its successor.
func (v *View) Settle(ctx context.Context) (Snapshot, error) {
	for {
		v.mu.Lock()
		snap, done, closed := v.snap, v.done, v.closed
		v.mu.Unlock()

		if snap.State == StateIdle || snap.State.Terminal() || closed {
			return snap, nil
		}
		select {
		case <-ctx.Done():
			return snap, ctx.Err()
		case <-done:
		}
	}
}

// Close cancels any in-flight fetch and waits for it to return.
func (v *View) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.finishLocked()
	v.mu.Unlock()

	v.wg.Wait()
}

// supersedeLocked starts a new generation: waiters on the previous one are
// released and its fetch is cancelled.
func (v *View) supersedeLocked() {
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.finishLocked()
	v.snap.Generation++
	v.done = make(chan struct{})
	v.doneClosed = false
}

func (v *View) finishLocked() {
	if !v.doneClosed {
		close(v.done)
		v.doneClosed = true
	}
}

func (v *View) notFoundLocked() {
	v.snap.State = StateNotFound
	v.snap.Post = models.PostSummary{}
	v.snap.Body = ""
	v.emitLocked()
	v.finishLocked()
}

func (v *View) startFetchLocked() {
	ctx, cancel := context.WithCancel(v.base)
	v.cancel = cancel
	v.snap.State = StateFetching
	v.emitLocked()

	gen := v.snap.Generation
	post := v.snap.Post

	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		defer cancel()

		body, err := v.r.fetch(ctx, post)

		v.mu.Lock()
		defer v.mu.Unlock()
		if v.closed || v.snap.Generation != gen {
			v.r.logger.Debug("resolver: discarding superseded fetch",
				slog.String("section", post.Section),
				slog.Int("id", post.ID),
				slog.String("content_path", post.ContentPath))
			return
		}
		if err != nil {
			v.r.logFetchFailure(post, err)
			body = ""
		}
		v.cancel = nil
		v.fetchedPath = post.ContentPath
		v.snap.State = StateResolved
		v.snap.Body = body
		v.emitLocked()
		v.finishLocked()
	}()
}

func (v *View) sameTargetLocked(section, idParam string) bool {
	if v.snap.Section == section && v.snap.ID == idParam {
		return true
	}
	cur, ok := targetKey(v.snap.Section, v.snap.ID)
	if !ok {
		return false
	}
	next, ok := targetKey(section, idParam)
	return ok && cur == next
}

func (v *View) emitLocked() {
	if v.observe != nil {
		v.observe(v.snap)
	}
}

func samePost(a, b models.PostSummary) bool {
	return a.ID == b.ID &&
		a.Section == b.Section &&
		a.Category == b.Category &&
		a.ProjectTitle == b.ProjectTitle &&
		a.Title == b.Title &&
		a.Date == b.Date &&
		a.Summary == b.Summary &&
		a.ContentPath == b.ContentPath &&
		slices.Equal(a.Tags, b.Tags)
}
