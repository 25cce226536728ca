// Package versions fetches version listings from upstream services: Maven
// repository metadata for dependencies and the Minecraft version manifest
// for the platform itself.
package versions

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single upstream request when no HTTPClient is set.
const DefaultTimeout = 30 * time.Second

// maxBodySize caps how much of an upstream response is read.
const maxBodySize = 32 << 20

func clientOrDefault(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{Timeout: DefaultTimeout}
}

// fetch issues req and returns the body of a 2xx response.
func fetch(client *http.Client, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, req.URL.Redacted())
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", req.URL.Redacted(), err)
	}
	return body, nil
}

func newGet(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "modsync")
	return req, nil
}
