package scopecache

import "time"

// Disposer is implemented by resources that hold releasable state
// (file handles, pooled buffers, GPU textures). Stores call Dispose
// when a resource is purged, evicted or discarded after a canceled load.
type Disposer interface {
	Dispose() error
}

// EventType identifies a lifecycle event.
type EventType uint8

const (
	EventLoaded     EventType = iota // resource constructed and cached
	EventLoadFailed                  // loader returned an error, nothing cached
	EventEvicted                     // idle entry disposed by EvictIdle
	EventPurged                      // entry removed by Purge/PurgeAll/Close
	EventAttached                    // scope handle attached to a resource
	EventDetached                    // scope handle released its reference
	EventLeaked                      // handle reclaimed by GC while still attached
)

// String returns the event type name.
func (t EventType) String() string {
	switch t {
	case EventLoaded:
		return "loaded"
	case EventLoadFailed:
		return "load_failed"
	case EventEvicted:
		return "evicted"
	case EventPurged:
		return "purged"
	case EventAttached:
		return "attached"
	case EventDetached:
		return "detached"
	case EventLeaked:
		return "leaked"
	default:
		return "unknown"
	}
}

// Event describes one lifecycle transition of a cached resource or a
// scope handle. Store and Key are set for store events, Scope for handle
// events. Value carries the resource where it is still available, and
// Elapsed the loader duration for load events.
type Event struct {
	Value   any
	Err     error
	Store   string
	Key     string
	Scope   string
	Elapsed time.Duration
	Type    EventType
}

// Observer receives lifecycle event notifications.
//
// Observers are called synchronously from the publishing goroutine and
// must not block. They must not retain Event.Value past the call; a
// retained value would extend the resource's lifetime from the outside,
// which is exactly what this library exists to prevent.
type Observer interface {
	OnCacheEvent(Event)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(Event)

// OnCacheEvent implements Observer.
func (f ObserverFunc) OnCacheEvent(e Event) { f(e) }
