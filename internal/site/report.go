package site

import (
	"log/slog"
	"sync"
)

// Report collects per-document errors across a build. Parse workers
// append concurrently; reads happen only after the pipeline barrier.
type Report struct {
	mu     sync.Mutex
	errs   []error
	warned int
}

// Add records a per-document error. Safe for concurrent use.
func (r *Report) Add(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

// Errors returns the recorded errors in the order they were added.
func (r *Report) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]error, len(r.errs))
	copy(out, r.errs)
	return out
}

// HasErrors reports whether any document failed.
func (r *Report) HasErrors() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errs) > 0
}

// Log emits every recorded error once as a warning. Skipped documents
// are worth surfacing on each build, but they never fail it.
func (r *Report) Log() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, err := range r.errs[r.warned:] {
		slog.Warn("Document skipped", slog.String("reason", err.Error()))
	}
	r.warned = len(r.errs)
}
