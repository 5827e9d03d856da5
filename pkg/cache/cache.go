// Package cache provides pluggable caching for pipeline stage results.
//
// Loaded beamlines, survey documents, and rendered artifacts are keyed by a
// Keyer so identical manifests and render options share one entry across
// processes. Three backends are available: FileCache for CLI usage,
// RedisCache for shared server deployments, and NullCache to disable
// caching entirely.
package cache

import (
	"context"
	"time"
)

// Default TTLs for cached stage results. Surveys are cheap to recompute;
// artifacts can involve external converters, so they live longer.
const (
	TTLSurvey   = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is the storage interface shared by all backends.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was found;
	// a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A ttl of 0 stores without
	// expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
