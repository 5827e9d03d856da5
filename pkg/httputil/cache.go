package httputil

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// DefaultTTL is the cache duration used for remote manifests when the
// caller does not pick one. A lattice description changes rarely, so a
// day of staleness is an acceptable trade against repeated fetches.
const DefaultTTL = 24 * time.Hour

// ErrExpired is returned by [Cache.Get] when a cached entry exists but has
// exceeded its time-to-live (TTL). The data is still on disk but is
// considered stale; callers should fetch fresh data and update the cache
// with [Cache.Set].
//
// Use errors.Is to check for this error:
//
//	ok, err := cache.Get(url, &data)
//	if errors.Is(err, httputil.ErrExpired) {
//	    // Refetch and update the cache
//	}
var ErrExpired = errors.New("cache entry expired")

// Cache provides file-based caching of arbitrary JSON-marshalable data.
//
// Each entry is stored as a JSON file whose name is the SHA-256 hash of
// the cache key, which keeps raw URLs and other arbitrary strings safe as
// filenames. Entries expire by file modification time; a TTL of 0 means
// entries never expire.
//
// A single Cache instance is not goroutine-safe, but multiple instances
// (even in different processes) can share one directory.
//
// Use [Cache.Namespace] to create scoped views that automatically prefix
// keys, so different data sources never collide:
//
//	manifests := cache.Namespace("manifest:")
//	manifests.Set(url, data) // key becomes "manifest:"+url
type Cache struct {
	dir    string
	ttl    time.Duration
	prefix string
}

// NewCache creates a Cache that stores entries in dir with the given TTL.
//
// If dir is empty, NewCache uses the default directory ~/.cache/beamforge/.
// The directory is created with mode 0755 if it does not exist; directory
// creation failure is the only error path.
func NewCache(dir string, ttl time.Duration) (*Cache, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".cache", "beamforge")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir, ttl: ttl, prefix: ""}, nil
}

// Dir returns the absolute path to the cache directory.
func (c *Cache) Dir() string { return c.dir }

// TTL returns the time-to-live for cache entries. 0 means no expiration.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Get retrieves a cached value by key and unmarshals it into v.
//
// Return values distinguish four outcomes:
//   - (true, nil): hit; the value is fresh and unmarshaled into v.
//   - (false, nil): miss; no entry exists. v is unchanged.
//   - (false, ErrExpired): entry exists but exceeded its TTL. v is unchanged.
//   - (false, other error): I/O or unmarshal failure.
//
// The key can be any string; it is hashed, so raw URLs work directly.
// v must be a pointer to a json.Unmarshal-compatible type.
func (c *Cache) Get(key string, v any) (bool, error) {
	path := c.keyPath(c.prefix + key)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if c.ttl > 0 && time.Since(info.ModTime()) > c.ttl {
		return false, ErrExpired
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(data, v)
}

// Set stores a value in the cache under the given key.
//
// v is marshaled to JSON and written to disk. Set overwrites any existing
// entry for key and resets its modification time, which refreshes the TTL.
func (c *Cache) Set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(c.keyPath(c.prefix+key), data, 0o644)
}

// Namespace returns a Cache view that prefixes all keys with prefix.
//
// The returned Cache shares the parent's directory and TTL. Calls can be
// chained to build hierarchical key spaces:
//
//	cache.Namespace("remote:").Namespace("manifest:") // prefix "remote:manifest:"
//
// An empty prefix is valid and behaves like the parent.
func (c *Cache) Namespace(prefix string) *Cache {
	return &Cache{
		dir:    c.dir,
		ttl:    c.ttl,
		prefix: c.prefix + prefix,
	}
}

func (c *Cache) keyPath(key string) string {
	h := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(h[:]))
}
