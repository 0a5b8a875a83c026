// Package store provides process-wide stores for expensive-to-construct
// resources.
//
// A Store holds at most one value, constructed lazily by a caller-supplied
// loader. Concurrent callers share a single loader invocation; a failed
// load is never cached, so the next call retries. A KeyedStore holds many
// values keyed by string, with per-key single-flight deduplication and
// idle eviction.
//
// Stores are deliberately ignorant of the scopes that consume their
// values. The store package does not import the scope package, cannot be
// handed a scope handle, and never calls back into one, so a cached value
// can never pin a scope in memory.
//
// # Loader Cancellation
//
// Loaders run under the store's lifetime context, not the caller's. A
// caller whose context is canceled stops waiting, but the load completes
// and the value is cached for the next caller. Only Close cancels the
// loader; a result arriving after Close is disposed and discarded rather
// than cached.
package store
