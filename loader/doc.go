// Package loader provides ready-made loaders for common resource sources.
//
// Each constructor returns a store.Loader: a function the store invokes
// at most once per cached entry. Loaders receive the store's lifetime
// context and should honor its cancellation for slow work.
//
//	images := store.New[image.Image](store.WithName("backgrounds"))
//	bg, err := images.GetOrLoad(ctx, loader.Image("large_bitmap.png"))
//
// Loaders carry only the capability they need (a path, a URL, a narrow
// object-store client) and never the scope that triggered the load.
package loader
