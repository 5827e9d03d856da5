package httputil

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/matzehuels/beamforge/pkg/errors"
)

const (
	httpTimeout = 10 * time.Second
	userAgent   = "beamforge"
)

// IsURL reports whether path names a remote manifest rather than a local
// file. Only http and https schemes are recognized.
func IsURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// Client fetches remote manifest documents over HTTP with on-disk caching
// and automatic retry of transient failures.
type Client struct {
	http  *http.Client
	cache *Cache
}

// NewClient creates a Client backed by cache. Pass nil to disable caching;
// every Fetch then goes to the network.
func NewClient(cache *Cache) *Client {
	return &Client{
		http:  &http.Client{Timeout: httpTimeout},
		cache: cache,
	}
}

// Fetch retrieves the document at rawURL, serving from cache when a fresh
// entry exists. If refresh is true the cache is bypassed and the document
// is always refetched; the result still replaces the cached entry.
//
// Transient failures (connection errors, 5xx, 429) are retried with
// backoff. A 404 maps to FILE_NOT_FOUND so remote and local missing
// manifests surface the same way.
func (c *Client) Fetch(ctx context.Context, rawURL string, refresh bool) ([]byte, error) {
	if c.cache != nil && !refresh {
		var data []byte
		if ok, _ := c.cache.Get(rawURL, &data); ok {
			return data, nil
		}
	}

	var data []byte
	err := RetryWithBackoff(ctx, func() error {
		var err error
		data, err = c.get(ctx, rawURL)
		return err
	})
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		_ = c.cache.Set(rawURL, data)
	}
	return data, nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "building request for %s", rawURL)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "fetching %s", rawURL)
		}
		return nil, &RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "fetching %s", rawURL)}
	}
	defer resp.Body.Close()

	if err := checkStatus(rawURL, resp.StatusCode); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "reading %s", rawURL)}
	}
	return data, nil
}

func checkStatus(rawURL string, code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeFileNotFound, "manifest not found: %s", rawURL)
	case code >= 500 || code == http.StatusTooManyRequests:
		return &RetryableError{Err: errors.New(errors.ErrCodeNetwork, "fetching %s: status %d", rawURL, code)}
	default:
		return errors.New(errors.ErrCodeNetwork, "fetching %s: status %d", rawURL, code)
	}
}
