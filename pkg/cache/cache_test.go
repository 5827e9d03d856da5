package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	// Miss before Set
	_, hit, err := c.Get(ctx, "survey:abc")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("Get should miss before Set")
	}

	if err := c.Set(ctx, "survey:abc", []byte("document"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	data, hit, err := c.Get(ctx, "survey:abc")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !hit {
		t.Fatal("Get should hit after Set")
	}
	if string(data) != "document" {
		t.Errorf("Get data = %q, want %q", data, "document")
	}

	// Delete then miss
	if err := c.Delete(ctx, "survey:abc"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	_, hit, _ = c.Get(ctx, "survey:abc")
	if hit {
		t.Error("Get should miss after Delete")
	}

	// Deleting an absent key is not an error
	if err := c.Delete(ctx, "survey:missing"); err != nil {
		t.Errorf("Delete of absent key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	if err := c.Set(ctx, "short", []byte("x"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	time.Sleep(30 * time.Millisecond)

	_, hit, err := c.Get(ctx, "short")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("expired entry should miss")
	}

	// ttl 0 means no expiration
	if err := c.Set(ctx, "forever", []byte("y"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	_, hit, _ = c.Get(ctx, "forever")
	if !hit {
		t.Error("entry without TTL should not expire")
	}
}

func TestFileCacheShardLayout(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	if err := c.Set(ctx, "line:xyz", []byte("v"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	hash := Hash([]byte("line:xyz"))
	path := filepath.Join(dir, hash[:2], hash[2:]+".json")
	if _, err := os.Stat(path); err != nil {
		t.Errorf("entry should live at %s: %v", path, err)
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	fc := c.(*FileCache)
	path := fc.path("broken")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, hit, err := c.Get(ctx, "broken")
	if err != nil {
		t.Fatalf("corrupt entry should not error: %v", err)
	}
	if hit {
		t.Error("corrupt entry should be treated as a miss")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed")
	}
}

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestRedisCacheConstruct(t *testing.T) {
	// Connection is lazy, so construction and Close work without a server.
	c := NewRedisCache(RedisOptions{})
	if c == nil {
		t.Fatal("NewRedisCache returned nil")
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close error: %v", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("fodo"))
	h2 := Hash([]byte("fodo"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	h3 := Hash([]byte("ring"))
	if h1 == h3 {
		t.Error("different inputs should produce different hashes")
	}

	// SHA-256 produces 64 hex chars
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	manifest := []byte("[sequence]\nname = \"fodo\"")

	// LineKey is deterministic and prefixed
	lk1 := k.LineKey(manifest, "fodo")
	lk2 := k.LineKey(manifest, "fodo")
	if lk1 != lk2 {
		t.Error("LineKey should be deterministic")
	}
	if lk1[:5] != "line:" {
		t.Errorf("LineKey should carry the line prefix: %s", lk1)
	}

	// Sequence participates in the key
	if k.LineKey(manifest, "ring") == lk1 {
		t.Error("different sequences should produce different keys")
	}
	if k.LineKey([]byte("other"), "fodo") == lk1 {
		t.Error("different manifests should produce different keys")
	}

	// SurveyKey should include placement options in the hash
	sk1 := k.SurveyKey(lk1, SurveyKeyOpts{OriginX: 0, OriginHeading: 0})
	sk2 := k.SurveyKey(lk1, SurveyKeyOpts{OriginX: 1.5, OriginHeading: 0})
	if sk1 == sk2 {
		t.Error("different SurveyKeyOpts should produce different keys")
	}

	// ArtifactKey
	ak1 := k.ArtifactKey(sk1, ArtifactKeyOpts{Format: "svg"})
	ak2 := k.ArtifactKey(sk1, ArtifactKeyOpts{Format: "png"})
	if ak1 == ak2 {
		t.Error("different ArtifactKeyOpts should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "site:cern:")
	manifest := []byte("[sequence]")

	lk := scoped.LineKey(manifest, "fodo")
	if lk != "site:cern:"+inner.LineKey(manifest, "fodo") {
		t.Errorf("ScopedKeyer LineKey unexpected: %s", lk)
	}

	sk := scoped.SurveyKey("line:abc", SurveyKeyOpts{})
	if len(sk) < 10 || sk[:10] != "site:cern:" {
		t.Errorf("ScopedKeyer SurveyKey should be prefixed: %s", sk)
	}

	ak := scoped.ArtifactKey("survey:abc", ArtifactKeyOpts{Format: "svg"})
	if ak[:10] != "site:cern:" {
		t.Errorf("ScopedKeyer ArtifactKey should be prefixed: %s", ak)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	// Falls back to DefaultKeyer when inner is nil
	scoped := NewScopedKeyer(nil, "prefix:")
	def := NewDefaultKeyer()
	if scoped.LineKey([]byte("m"), "s") != "prefix:"+def.LineKey([]byte("m"), "s") {
		t.Error("nil inner should fall back to the default keyer")
	}
}

func TestRetryableError(t *testing.T) {
	base := errors.New("connection refused")

	// Retryable(nil) returns nil
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	err := Retryable(base)
	if err == nil {
		t.Fatal("Retryable should return wrapped error")
	}
	if !IsRetryable(err) {
		t.Error("IsRetryable should report true for wrapped error")
	}

	// Message and unwrap chain are preserved
	if err.Error() != base.Error() {
		t.Errorf("message should be preserved: %s", err.Error())
	}
	if !errors.Is(err, base) {
		t.Error("wrapped error should unwrap to the base error")
	}

	if IsRetryable(base) {
		t.Error("IsRetryable should report false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()
	permanent := errors.New("bad key")
	transient := errors.New("timeout")

	// Success on first try
	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Errorf("should succeed: %v", err)
	}
	if calls != 1 {
		t.Errorf("should call once: %d", calls)
	}

	// Non-retryable error stops immediately
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return permanent
	})
	if err != permanent {
		t.Errorf("should return non-retryable error: %v", err)
	}
	if calls != 1 {
		t.Errorf("should not retry non-retryable error: %d", calls)
	}

	// Retryable error triggers retries
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(transient)
		}
		return nil
	})
	if err != nil {
		t.Errorf("should succeed after retry: %v", err)
	}
	if calls != 2 {
		t.Errorf("should retry once: %d", calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(errors.New("timeout"))
	})
	if err != context.Canceled {
		t.Errorf("should return context error: %v", err)
	}
}
