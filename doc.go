// Package scopecache provides a scoped resource cache: process-wide stores
// for expensive-to-construct resources, borrowed by short-lived scopes
// through handles that never let the shared value retain scope-private
// state.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	scopecache/          Root package with shared lifecycle events and interfaces
//	├── store/           Lazy single-value and keyed stores with single-flight loading
//	├── scope/           Scope handles (attach/detach) and the weak attachment registry
//	├── leakcheck/       Detection of handles reclaimed while still attached
//	├── loader/          Ready-made resource loaders (file, HTTP, S3, image)
//	├── metrics/         Prometheus observer for store and scope activity
//	└── errors/          Structured error types for debugging
//
// # Quick Start
//
// Share one decoded resource across many scopes:
//
//	images := store.New[[]byte](store.WithName("images"))
//	defer images.Close()
//
//	data, err := images.GetOrLoad(ctx, loader.File("background.png"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	h := scope.New[[]byte]("screen-1")
//	if err := h.Attach(data); err != nil {
//	    log.Fatal(err)
//	}
//	defer h.Detach()
//
// The store owns the value for the life of the process. Handles only
// borrow it: Detach clears the handle's reference on every exit path, and
// the store never learns about the handle at all, so a recreated scope can
// never be pinned in memory by the cache.
//
// # Lifecycle Events
//
// Stores and registries publish Events to Observers. The metrics package
// and the scopewatch dashboard are both plain observers:
//
//	images := store.New[[]byte](
//	    store.WithObserver(scopecache.ObserverFunc(func(e scopecache.Event) {
//	        log.Printf("%s: %s", e.Store, e.Type)
//	    })),
//	)
package scopecache
