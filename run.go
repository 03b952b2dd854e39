package cssbuild

import (
	"context"
	"sync"
)

// Run scopes the error and end signals of one lint or compile run.
// The first Fail wins and cancels the run context; End marks the run as
// terminated. A Run is never shared between tasks.
type Run struct {
	ctx    context.Context
	cancel context.CancelCauseFunc

	mu    sync.Mutex
	err   error
	ended bool
}

// NewRun derives a run scope from ctx.
func NewRun(ctx context.Context) *Run {
	runCtx, cancel := context.WithCancelCause(ctx)
	return &Run{ctx: runCtx, cancel: cancel}
}

// Context is cancelled once the run fails or ends.
func (r *Run) Context() context.Context {
	return r.ctx
}

// Fail signals a run-ending error. Only the first error is kept.
func (r *Run) Fail(err error) {
	if err == nil {
		return
	}
	r.mu.Lock()
	if r.err == nil {
		r.err = err
	}
	r.mu.Unlock()
	r.cancel(err)
}

// End signals termination of the run.
func (r *Run) End() {
	r.mu.Lock()
	r.ended = true
	r.mu.Unlock()
	r.cancel(context.Canceled)
}

// Err returns the first error passed to Fail.
func (r *Run) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Ended reports whether End was called.
func (r *Run) Ended() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ended
}
