package loader

import (
	"context"
	"fmt"
	"os"

	"github.com/keenanlab/scopecache/store"
)

// Static returns a loader that yields a fixed value. Useful in tests and
// for pre-computed resources.
func Static[T any](v T) store.Loader[T] {
	return func(ctx context.Context) (T, error) {
		return v, nil
	}
}

// File returns a loader that reads the file at path.
func File(path string) store.Loader[[]byte] {
	return func(ctx context.Context) ([]byte, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read file: %w", err)
		}
		return data, nil
	}
}
