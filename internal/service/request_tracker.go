package service

import (
	"context"
	"errors"
	"sync"
)

var errSuperseded = errors.New("superseded by a newer request")

type trackedRequest struct {
	id     uint64
	cancel context.CancelCauseFunc
}

// requestTracker keeps the latest in-flight request per user. Starting a new
// one cancels the previous request's context with errSuperseded.
type requestTracker struct {
	mu     sync.Mutex
	nextID uint64
	active map[string]trackedRequest
}

func newRequestTracker() *requestTracker {
	return &requestTracker{active: make(map[string]trackedRequest)}
}

// begin registers a request for owner and returns its context plus a release
// func that must be called when the request finishes.
func (t *requestTracker) begin(ctx context.Context, owner string) (context.Context, func()) {
	ctx, cancel := context.WithCancelCause(ctx)

	t.mu.Lock()
	t.nextID++
	id := t.nextID
	if prev, ok := t.active[owner]; ok {
		prev.cancel(errSuperseded)
	}
	t.active[owner] = trackedRequest{id: id, cancel: cancel}
	t.mu.Unlock()

	return ctx, func() {
		t.mu.Lock()
		if cur, ok := t.active[owner]; ok && cur.id == id {
			delete(t.active, owner)
		}
		t.mu.Unlock()
		cancel(nil)
	}
}

// superseded reports whether ctx was cancelled by a newer request.
func superseded(ctx context.Context) bool {
	return errors.Is(context.Cause(ctx), errSuperseded)
}

func (t *requestTracker) inFlight() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.active)
}
