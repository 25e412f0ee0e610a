package coordinator

import (
	"sync"
	"time"
)

// GlobalKey is the key of the shared coordinator in global scope.
const GlobalKey = "global"

// Factory builds the coordinator owned by key.
type Factory func(key string) *Coordinator

// Registry hands out one coordinator per admin session.
type Registry struct {
	factory Factory
	idleTTL time.Duration
	global  bool
	now     func() time.Time

	mu     sync.Mutex
	coords map[string]*Coordinator
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithIdleTTL sets how long an idle coordinator survives without use.
func WithIdleTTL(ttl time.Duration) RegistryOption {
	return func(r *Registry) {
		r.idleTTL = ttl
	}
}

// WithGlobalScope makes every key resolve to one shared coordinator.
func WithGlobalScope() RegistryOption {
	return func(r *Registry) {
		r.global = true
	}
}

// NewRegistry creates an empty registry. Coordinators are built by factory on
// first use of a key; idle ones expire after one hour unless WithIdleTTL says otherwise.
func NewRegistry(factory Factory, opts ...RegistryOption) *Registry {
	r := &Registry{
		factory: factory,
		idleTTL: time.Hour,
		now:     time.Now,
		coords:  make(map[string]*Coordinator),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// For returns the coordinator for key, creating it on first use.
func (r *Registry) For(key string) *Coordinator {
	if r.global || key == "" {
		key = GlobalKey
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.coords[key]; ok {
		c.touch()
		return c
	}
	c := r.factory(key)
	r.coords[key] = c
	return c
}

// Lookup returns an existing coordinator without creating one.
func (r *Registry) Lookup(key string) (*Coordinator, bool) {
	if r.global || key == "" {
		key = GlobalKey
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.coords[key]
	return c, ok
}

// Sweep evicts coordinators idle for longer than the TTL and returns how many
// were removed. Running coordinators and the global coordinator are never
// evicted.
func (r *Registry) Sweep() int {
	if r.idleTTL <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for key, c := range r.coords {
		if key == GlobalKey {
			continue
		}
		lastUsed, running := c.idleSince()
		if running || lastUsed.After(cutoff) {
			continue
		}
		delete(r.coords, key)
		removed++
	}
	return removed
}

// Len returns the number of live coordinators.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.coords)
}

// Wait blocks until every background run of every coordinator has settled.
func (r *Registry) Wait() {
	r.mu.Lock()
	coords := make([]*Coordinator, 0, len(r.coords))
	for _, c := range r.coords {
		coords = append(coords, c)
	}
	r.mu.Unlock()

	for _, c := range coords {
		c.Wait()
	}
}
