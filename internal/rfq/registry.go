package rfq

import (
	"sync"
	"time"
)

const defaultIdleTTL = 2 * time.Hour

type entry struct {
	workflow *Workflow
	lastUsed time.Time
}

// Registry holds one Workflow per cart session. Entries idle longer than the
// TTL are dropped the next time the registry is touched.
type Registry struct {
	mu        sync.Mutex
	submitter Submitter
	ttl       time.Duration
	now       func() time.Time
	entries   map[string]*entry
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithIdleTTL overrides how long an untouched workflow is kept.
func WithIdleTTL(ttl time.Duration) RegistryOption {
	return func(r *Registry) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithRegistryClock overrides the time source, mainly for tests.
func WithRegistryClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRegistry returns an empty registry whose workflows submit through submitter.
func NewRegistry(submitter Submitter, opts ...RegistryOption) *Registry {
	r := &Registry{
		submitter: submitter,
		ttl:       defaultIdleTTL,
		now:       time.Now,
		entries:   map[string]*entry{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// For returns the session's workflow, creating a closed one on first use.
func (r *Registry) For(sessionID string) *Workflow {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.evictLocked(now)

	e, ok := r.entries[sessionID]
	if !ok {
		e = &entry{workflow: NewWorkflow(sessionID, r.submitter)}
		r.entries[sessionID] = e
	}
	e.lastUsed = now
	return e.workflow
}

// Forget drops the session's workflow.
func (r *Registry) Forget(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, sessionID)
}

// Len reports how many workflows are held.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) evictLocked(now time.Time) {
	for id, e := range r.entries {
		if now.Sub(e.lastUsed) > r.ttl {
			delete(r.entries, id)
		}
	}
}
