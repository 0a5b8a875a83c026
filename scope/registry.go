package scope

import (
	"sort"
	"sync"
	"weak"

	"github.com/keenanlab/scopecache"
)

// Registry tracks which scopes currently hold an attached handle. It
// refers to handles only through weak pointers, so registration never
// extends a handle's lifetime: a handle collected without detaching is
// pruned on the next read instead of being pinned in memory.
type Registry[T any] struct {
	mu        sync.Mutex
	nextToken uint64
	entries   map[uint64]weakEntry[T]
	observers []scopecache.Observer
}

type weakEntry[T any] struct {
	ref weak.Pointer[Handle[T]]
	id  string
}

// RegistryOption configures a Registry.
type RegistryOption func(*registryConfig)

type registryConfig struct {
	observers []scopecache.Observer
}

// WithRegistryObserver registers an observer for attach/detach events.
func WithRegistryObserver(o scopecache.Observer) RegistryOption {
	return func(c *registryConfig) {
		c.observers = append(c.observers, o)
	}
}

// NewRegistry creates an empty registry.
func NewRegistry[T any](opts ...RegistryOption) *Registry[T] {
	var cfg registryConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Registry[T]{
		entries:   make(map[uint64]weakEntry[T]),
		observers: cfg.observers,
	}
}

// add records an attachment and returns a token for removal.
func (r *Registry[T]) add(h *Handle[T]) uint64 {
	r.mu.Lock()
	r.nextToken++
	token := r.nextToken
	r.entries[token] = weakEntry[T]{ref: weak.Make(h), id: h.cell.id}
	r.mu.Unlock()

	r.notify(scopecache.Event{
		Type:  scopecache.EventAttached,
		Scope: h.cell.id,
	})
	return token
}

// remove drops the attachment recorded under token.
func (r *Registry[T]) remove(token uint64, id string) {
	r.mu.Lock()
	_, ok := r.entries[token]
	delete(r.entries, token)
	r.mu.Unlock()

	if ok {
		r.notify(scopecache.Event{
			Type:  scopecache.EventDetached,
			Scope: id,
		})
	}
}

// Live returns strong pointers to the handles that are still reachable
// and attached, pruning entries whose handles the garbage collector has
// reclaimed.
func (r *Registry[T]) Live() []*Handle[T] {
	r.mu.Lock()
	defer r.mu.Unlock()

	live := make([]*Handle[T], 0, len(r.entries))
	for token, e := range r.entries {
		h := e.ref.Value()
		if h == nil {
			delete(r.entries, token)
			continue
		}
		live = append(live, h)
	}
	return live
}

// IDs returns the scope IDs of live attachments in sorted order.
func (r *Registry[T]) IDs() []string {
	live := r.Live()
	ids := make([]string, 0, len(live))
	for _, h := range live {
		ids = append(ids, h.ID())
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of live attachments.
func (r *Registry[T]) Len() int {
	return len(r.Live())
}

func (r *Registry[T]) notify(e scopecache.Event) {
	for _, o := range r.observers {
		o.OnCacheEvent(e)
	}
}
