// Package metrics exports Prometheus metrics for store and scope
// activity.
//
// The Collector is a plain scopecache.Observer; wire it into stores,
// registries and leak monitors:
//
//	col := metrics.New(metrics.WithRegistry(reg))
//	images := store.NewKeyed[[]byte](
//	    store.WithName("images"),
//	    store.WithObserver(col),
//	)
package metrics
