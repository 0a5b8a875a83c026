// Package scope provides handles through which short-lived scopes borrow
// cached resources.
//
// A scope is a bounded period of ownership: a request, a screen, a
// session. Scopes are destroyed and recreated independently of the stores
// whose values they consume, so a handle only ever borrows a resource. It
// never owns it, and nothing the handle touches may retain the handle
// once its scope exits.
//
// # Handle Lifecycle
//
//	Created ──Attach──▶ Attached ──Detach──▶ Detached (terminal)
//
// Attach is valid only once, from Created; a second Attach is a usage
// error because it means two owners believe they hold the scope. Detach
// is idempotent, never fails, and must run on every scope exit path,
// typically via defer. After Detach the handle holds no reference to the
// resource.
//
// # Weak Registry
//
// A Registry tracks which scopes are currently attached, for dashboards
// and debugging. It refers to handles only through weak pointers: looking
// at a scope must never keep it alive. Handles that are garbage collected
// without detaching simply disappear from the registry on the next read.
//
// To be told about such handles instead of silently forgetting them, wire
// a LeakSink (see the leakcheck package): it is notified when a handle is
// reclaimed while still attached, which means some exit path skipped
// Detach.
package scope
