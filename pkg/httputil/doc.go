// Package httputil provides HTTP utilities for fetching remote beamline
// manifests.
//
// # Overview
//
// This package provides the infrastructure behind http:// and https://
// manifest paths:
//
//   - [Client]: Caching, retrying fetcher for manifest documents
//   - [Cache]: File-based HTTP response caching
//   - [Retry]: Automatic retry with exponential backoff
//
// # Caching
//
// [Cache] stores fetched responses in the filesystem (~/.cache/beamforge/)
// with a configurable TTL, so repeated surveys of the same remote lattice
// do not hit the network every run.
//
// Usage:
//
//	cache, err := httputil.NewCache("", httputil.DefaultTTL)
//	client := httputil.NewClient(cache.Namespace("manifest:"))
//	data, err := client.Fetch(ctx, "https://optics.example.org/ring.toml", false)
//
// Cache keys should be namespaced per data source to avoid collisions.
//
// # Retry
//
// [Retry] wraps requests with automatic retry for transient failures:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// Non-retryable failures (404, client errors) are returned immediately.
//
// # Configuration
//
// Default settings are suitable for most use cases:
//
//   - Cache directory: ~/.cache/beamforge/
//   - Default TTL: 24 hours
//   - Max retries: 3
//   - Base backoff: 1 second
//
// The cache can be cleared via `beamforge cache clear` or by deleting the
// cache directory.
package httputil
