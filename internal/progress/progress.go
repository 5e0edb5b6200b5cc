// Package progress tracks coarse-grained submission progress and carries
// the cooperative cancellation signal for an in-flight submission.
package progress

import (
	"context"
	"sync"

	"github.com/autopost/autopost/internal/platform"
)

// Checkpoints are synthetic: they mark orchestration stages, not byte-level
// upload progress.
const (
	CheckpointValidated  = 10
	CheckpointDispatched = 50
	CheckpointAggregated = 90
	CheckpointDone       = 100
)

// Reporter exposes the current progress percentage, the set of platforms
// being attempted, and a Cancel operation that aborts in-flight work.
type Reporter struct {
	mu        sync.RWMutex
	percent   int
	platforms []platform.Platform
	cancel    context.CancelFunc
	cancelled bool
}

// NewReporter creates an idle reporter.
func NewReporter() *Reporter {
	return &Reporter{}
}

// Begin resets the reporter for a new submission and returns a context the
// submission must thread into every adapter call; Cancel cancels it.
func (r *Reporter) Begin(ctx context.Context, platforms []platform.Platform) context.Context {
	ctx, cancel := context.WithCancel(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.percent = 0
	r.platforms = append([]platform.Platform(nil), platforms...)
	r.cancel = cancel
	r.cancelled = false
	return ctx
}

// Set records a progress checkpoint.
func (r *Reporter) Set(percent int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.percent = percent
}

// Progress returns the current progress percentage, 0-100.
func (r *Reporter) Progress() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.percent
}

// Platforms returns the platforms of the submission in flight.
func (r *Reporter) Platforms() []platform.Platform {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]platform.Platform(nil), r.platforms...)
}

// Cancel aborts the submission in flight by cancelling its context. It is
// a no-op when nothing is in flight.
func (r *Reporter) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel == nil {
		return
	}
	r.cancelled = true
	r.cancel()
}

// Cancelled reports whether the current submission was cancelled.
func (r *Reporter) Cancelled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cancelled
}

// Finish resets progress to zero and clears the submission state. Called
// on completion or failure alike.
func (r *Reporter) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.percent = 0
	r.platforms = nil
}
