package scope

import (
	"reflect"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/keenanlab/scopecache"
)

func TestRegistry_TracksAttachments(t *testing.T) {
	r := NewRegistry[string]()

	h1 := New[string]("screen-1", WithRegistry(r))
	h2 := New[string]("screen-2", WithRegistry(r))

	if r.Len() != 0 {
		t.Fatalf("Len = %d before any attach", r.Len())
	}

	if err := h1.Attach("R1"); err != nil {
		t.Fatalf("Attach h1: %v", err)
	}
	if err := h2.Attach("R1"); err != nil {
		t.Fatalf("Attach h2: %v", err)
	}

	if got := r.IDs(); !reflect.DeepEqual(got, []string{"screen-1", "screen-2"}) {
		t.Fatalf("IDs = %v", got)
	}

	h1.Detach()
	if got := r.IDs(); !reflect.DeepEqual(got, []string{"screen-2"}) {
		t.Fatalf("IDs after detach = %v", got)
	}

	h2.Detach()
	if r.Len() != 0 {
		t.Fatalf("Len = %d after all detached", r.Len())
	}
}

func TestRegistry_Events(t *testing.T) {
	var mu sync.Mutex
	var events []scopecache.Event
	r := NewRegistry[string](
		WithRegistryObserver(scopecache.ObserverFunc(func(e scopecache.Event) {
			mu.Lock()
			events = append(events, e)
			mu.Unlock()
		})),
	)

	h := New[string]("screen-1", WithRegistry(r))
	if err := h.Attach("R1"); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	h.Detach()
	h.Detach() // idempotent detach must not produce a second event

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2: %v", len(events), events)
	}
	if events[0].Type != scopecache.EventAttached || events[0].Scope != "screen-1" {
		t.Fatalf("event 0: %+v", events[0])
	}
	if events[1].Type != scopecache.EventDetached || events[1].Scope != "screen-1" {
		t.Fatalf("event 1: %+v", events[1])
	}
}

func TestRegistry_DoesNotKeepHandlesAlive(t *testing.T) {
	r := NewRegistry[string]()

	attachAndDrop(t, r)

	// The registry must not be the thing that keeps the handle reachable.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		runtime.GC()
		if r.Len() == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("registry still reports %d live handles after GC", r.Len())
}

// attachAndDrop registers an attached handle and then drops every strong
// reference to it without detaching.
func attachAndDrop(t *testing.T, r *Registry[string]) {
	t.Helper()
	h := New[string]("forgotten", WithRegistry(r))
	if err := h.Attach("R1"); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if r.Len() != 1 {
		t.Fatalf("Len = %d after attach", r.Len())
	}
}
