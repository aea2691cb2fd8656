package server

import (
	"context"
	"errors"
)

// ErrSaturated is returned by AdmissionGate.Acquire when a permit could not
// be obtained before the caller's context was cancelled, per spec.md §4.6.
var ErrSaturated = errors.New("admission gate saturated")

// AdmissionGate is a buffered-channel semaphore guarding handler entry, the
// Go analog of the teacher's handler_jsonrpc.go concurrency limiter. Unlike
// a plain non-blocking try-acquire, Acquire performs a bounded wait: it
// blocks until either a permit frees up or ctx is cancelled, per spec.md
// §9's resolved Open Question (bounded wait with fast failure on
// cancellation, not immediate rejection).
type AdmissionGate struct {
	permits chan struct{}
}

// NewAdmissionGate creates a gate with the given permit count. max <= 0 is
// treated as 1 to avoid a permanently-blocked gate.
func NewAdmissionGate(max int) *AdmissionGate {
	if max <= 0 {
		max = 1
	}
	return &AdmissionGate{permits: make(chan struct{}, max)}
}

// Acquire blocks until a permit is available or ctx is done, whichever
// comes first. On success it returns a release func that must be called
// exactly once to return the permit; callers should defer it immediately.
func (g *AdmissionGate) Acquire(ctx context.Context) (release func(), err error) {
	select {
	case g.permits <- struct{}{}:
		return func() { <-g.permits }, nil
	case <-ctx.Done():
		return nil, ErrSaturated
	}
}
