package loader

import (
	"context"
	"fmt"
	"image"
	"os"

	// Register decoders for the common formats.
	_ "image/jpeg"
	_ "image/png"

	"github.com/keenanlab/scopecache/store"
)

// Image returns a loader that reads and decodes the image at path. The
// decoded pixels are the classic expensive resource worth sharing across
// scope recreations instead of re-decoding.
func Image(path string) store.Loader[image.Image] {
	return func(ctx context.Context) (image.Image, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open image: %w", err)
		}
		defer f.Close()

		img, _, err := image.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("decode image %s: %w", path, err)
		}
		return img, nil
	}
}
