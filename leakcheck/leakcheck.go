package leakcheck

import (
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/keenanlab/scopecache"
)

// A Leak records one handle that was garbage collected while attached.
type Leak struct {
	ScopeID string
	At      time.Time
}

// Monitor collects leak reports. It implements scope.LeakSink and is safe
// for concurrent use; GC cleanups deliver reports from the runtime's
// cleanup goroutine.
type Monitor struct {
	mu        sync.Mutex
	leaks     []Leak
	observers []scopecache.Observer
	now       func() time.Time
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithObserver registers an observer notified of each leak.
func WithObserver(o scopecache.Observer) Option {
	return func(m *Monitor) {
		m.observers = append(m.observers, o)
	}
}

// New creates an empty monitor.
func New(opts ...Option) *Monitor {
	m := &Monitor{now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// OnLeak records a leaked scope. It implements scope.LeakSink.
func (m *Monitor) OnLeak(scopeID string) {
	m.mu.Lock()
	m.leaks = append(m.leaks, Leak{ScopeID: scopeID, At: m.now()})
	observers := m.observers
	m.mu.Unlock()

	for _, o := range observers {
		o.OnCacheEvent(scopecache.Event{
			Type:  scopecache.EventLeaked,
			Scope: scopeID,
		})
	}
}

// Leaks returns a copy of the recorded leaks.
func (m *Monitor) Leaks() []Leak {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Leak, len(m.leaks))
	copy(out, m.leaks)
	return out
}

// Count returns the number of recorded leaks.
func (m *Monitor) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.leaks)
}

// Reset discards recorded leaks.
func (m *Monitor) Reset() {
	m.mu.Lock()
	m.leaks = nil
	m.mu.Unlock()
}

// WaitCount blocks until the monitor has recorded at least n leaks or the
// timeout elapses, forcing garbage collection while it waits. It returns
// whether the count was reached. Cleanups run asynchronously after GC, so
// polling is the only way to observe them deterministically.
func (m *Monitor) WaitCount(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		runtime.GC()
		if m.Count() >= n {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return m.Count() >= n
}

// ExpectNone forces garbage collection, gives pending cleanups a moment
// to run, then fails t for every leak the monitor has recorded.
func ExpectNone(t testing.TB, m *Monitor) {
	t.Helper()
	runtime.GC()
	runtime.GC()
	time.Sleep(50 * time.Millisecond)
	for _, l := range m.Leaks() {
		t.Errorf("scope %q was reclaimed while still attached; a Detach is missing", l.ScopeID)
	}
}
