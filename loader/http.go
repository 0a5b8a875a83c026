package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/keenanlab/scopecache/store"
)

// HTTP returns a loader that fetches url with client. A nil client uses
// http.DefaultClient. Non-2xx responses are errors.
func HTTP(client *http.Client, url string) store.Loader[[]byte] {
	if client == nil {
		client = http.DefaultClient
	}
	return func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", url, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		return data, nil
	}
}
