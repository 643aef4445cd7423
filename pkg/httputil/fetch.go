package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/matzehuels/jsonflow/pkg/cache"
)

// DefaultMaxBytes caps the size of a fetched document.
const DefaultMaxBytes = 10 << 20

// Fetcher downloads JSON or YAML documents over HTTP.
type Fetcher struct {
	// Client defaults to a client with a 30 second timeout.
	Client *http.Client

	// Cache stores fetched bodies keyed by URL. Nil disables caching.
	Cache cache.Cache
	TTL   time.Duration

	// Attempts and Delay configure [Retry]. Zero values select 3 attempts
	// starting at one second.
	Attempts int
	Delay    time.Duration

	// MaxBytes defaults to DefaultMaxBytes.
	MaxBytes int64
}

// IsURL reports whether s looks like an http or https URL rather than a
// file path.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Fetch returns the body of url, from the cache when present.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if f.Cache == nil {
		return f.get(ctx, url)
	}
	key := "fetch:" + cache.Hash([]byte(url))
	data, _, err := cache.GetOrCompute(ctx, f.Cache, "fetch", key, f.TTL, func() ([]byte, error) {
		return f.get(ctx, url)
	})
	return data, err
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	attempts, delay := f.Attempts, f.Delay
	if attempts == 0 {
		attempts = 3
	}
	if delay == 0 {
		delay = time.Second
	}

	var body []byte
	err := Retry(ctx, attempts, delay, func() error {
		var err error
		body, err = f.do(ctx, url)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	return body, nil
}

func (f *Fetcher) do(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.5")

	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &RetryableError{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, &RetryableError{Err: fmt.Errorf("status %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	limit := f.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, &RetryableError{Err: err}
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("document exceeds %d bytes", limit)
	}
	return body, nil
}
