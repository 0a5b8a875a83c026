package scope

import (
	"runtime"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/keenanlab/scopecache/errors"
)

// State of a handle. Transitions are one-way:
// Created -> Attached -> Detached.
type State uint8

const (
	Created State = iota
	Attached
	Detached
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Attached:
		return "attached"
	case Detached:
		return "detached"
	default:
		return "unknown"
	}
}

// LeakSink receives the scope ID of a handle that was reclaimed by the
// garbage collector while still attached, meaning Detach never ran.
type LeakSink interface {
	OnLeak(scopeID string)
}

// Handle borrows one resource on behalf of a scope. It holds the only
// scope-side reference to the value; the store that produced the value
// knows nothing about the handle.
//
// Handles are created on scope entry and must be detached on scope exit,
// on every path. A handle is safe for concurrent use, though scopes are
// typically driven from a single control goroutine.
type Handle[T any] struct {
	mu    sync.Mutex
	value T
	state State
	cell  *lifeCell
	reg   *Registry[T]
	token uint64
	sink  LeakSink
}

// lifeCell is the only state shared with GC cleanups. It must never hold
// a reference back to the handle: the whole point is that watching a
// handle's fate cannot extend its lifetime.
type lifeCell struct {
	id       string
	attached atomic.Bool
	detached atomic.Bool
}

// leaked reports whether the scope attached a resource and never
// released it.
func (c *lifeCell) leaked() bool {
	return c.attached.Load() && !c.detached.Load()
}

// Option configures a Handle.
type Option[T any] func(*Handle[T])

// WithRegistry records the handle's attachments in r.
func WithRegistry[T any](r *Registry[T]) Option[T] {
	return func(h *Handle[T]) {
		h.reg = r
	}
}

// WithLeakSink reports the handle to sink if it is garbage collected
// while still attached.
func WithLeakSink[T any](sink LeakSink) Option[T] {
	return func(h *Handle[T]) {
		h.sink = sink
	}
}

// New creates a handle for the scope identified by id.
func New[T any](id string, opts ...Option[T]) *Handle[T] {
	h := &Handle[T]{cell: &lifeCell{id: id}}
	for _, opt := range opts {
		opt(h)
	}
	if h.sink != nil {
		// The cleanup closure captures the sink and receives the cell; it
		// must not reference h itself or h becomes uncollectable.
		sink := h.sink
		runtime.AddCleanup(h, func(c *lifeCell) {
			if c.leaked() {
				sink.OnLeak(c.id)
			}
		}, h.cell)
	}
	return h
}

// ID returns the scope identifier.
func (h *Handle[T]) ID() string {
	return h.cell.id
}

// State returns the handle's current lifecycle state.
func (h *Handle[T]) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Attach associates the resource with this scope. Valid only from
// Created: attaching twice, or after Detach, returns a usage error. The
// resource must not be given a way to reference the handle back; Attach
// stores the value and nothing else.
func (h *Handle[T]) Attach(v T) error {
	h.mu.Lock()
	switch h.state {
	case Attached:
		h.mu.Unlock()
		return errors.AlreadyAttached(h.cell.id)
	case Detached:
		h.mu.Unlock()
		return errors.HandleDetached(h.cell.id)
	}
	h.value = v
	h.state = Attached
	h.cell.attached.Store(true)
	if h.reg != nil {
		h.token = h.reg.add(h)
	}
	h.mu.Unlock()

	Logger().Debug("scope attached", zap.String("scope", h.cell.id))
	return nil
}

// Detach releases the handle's reference to the resource. It is
// idempotent, never fails, and is valid from any state: detaching a
// never-attached handle just marks the scope as exited. Call it on every
// scope exit path, including abnormal ones.
func (h *Handle[T]) Detach() {
	h.mu.Lock()
	prev := h.state
	if prev == Detached {
		h.mu.Unlock()
		return
	}
	h.state = Detached
	var zero T
	h.value = zero
	h.cell.detached.Store(true)
	reg, token := h.reg, h.token
	h.mu.Unlock()

	if prev == Attached {
		if reg != nil {
			reg.remove(token, h.cell.id)
		}
		Logger().Debug("scope detached", zap.String("scope", h.cell.id))
	}
}

// Current returns the borrowed resource, or false if the handle is not
// attached.
func (h *Handle[T]) Current() (T, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != Attached {
		var zero T
		return zero, false
	}
	return h.value, true
}
