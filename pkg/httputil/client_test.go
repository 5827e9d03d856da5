package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matzehuels/beamforge/pkg/errors"
)

const manifestBody = "name = \"ring\"\n"

func manifestServer(t *testing.T, requests *int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*requests++
		w.Write([]byte(manifestBody))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientFetch(t *testing.T) {
	var requests int
	srv := manifestServer(t, &requests)

	cache, err := NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("NewCache() failed: %v", err)
	}
	c := NewClient(cache)

	data, err := c.Fetch(context.Background(), srv.URL, false)
	if err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}
	if string(data) != manifestBody {
		t.Errorf("got body %q, want %q", data, manifestBody)
	}
	if requests != 1 {
		t.Fatalf("got %d requests, want 1", requests)
	}

	// Second fetch is served from cache.
	data, err = c.Fetch(context.Background(), srv.URL, false)
	if err != nil {
		t.Fatalf("cached Fetch() failed: %v", err)
	}
	if string(data) != manifestBody {
		t.Errorf("got cached body %q, want %q", data, manifestBody)
	}
	if requests != 1 {
		t.Errorf("got %d requests after cached fetch, want 1", requests)
	}

	// refresh=true bypasses the cache.
	if _, err := c.Fetch(context.Background(), srv.URL, true); err != nil {
		t.Fatalf("refresh Fetch() failed: %v", err)
	}
	if requests != 2 {
		t.Errorf("got %d requests after refresh, want 2", requests)
	}
}

func TestClientFetchNoCache(t *testing.T) {
	var requests int
	srv := manifestServer(t, &requests)

	c := NewClient(nil)
	for range 2 {
		if _, err := c.Fetch(context.Background(), srv.URL, false); err != nil {
			t.Fatalf("Fetch() failed: %v", err)
		}
	}
	if requests != 2 {
		t.Errorf("got %d requests without cache, want 2", requests)
	}
}

func TestClientFetchExpired(t *testing.T) {
	var requests int
	srv := manifestServer(t, &requests)

	cache, _ := NewCache(t.TempDir(), 10*time.Millisecond)
	c := NewClient(cache)

	if _, err := c.Fetch(context.Background(), srv.URL, false); err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, err := c.Fetch(context.Background(), srv.URL, false); err != nil {
		t.Fatalf("Fetch() after expiry failed: %v", err)
	}
	if requests != 2 {
		t.Errorf("got %d requests, want 2 (expired entry must refetch)", requests)
	}
}

func TestClientFetchNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(nil)
	_, err := c.Fetch(context.Background(), srv.URL+"/missing.toml", false)
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("got error %v, want code %s", err, errors.ErrCodeFileNotFound)
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		name      string
		code      int
		wantCode  errors.Code
		retryable bool
	}{
		{"ok", http.StatusOK, "", false},
		{"notFound", http.StatusNotFound, errors.ErrCodeFileNotFound, false},
		{"serverError", http.StatusInternalServerError, errors.ErrCodeNetwork, true},
		{"badGateway", http.StatusBadGateway, errors.ErrCodeNetwork, true},
		{"rateLimited", http.StatusTooManyRequests, errors.ErrCodeNetwork, true},
		{"forbidden", http.StatusForbidden, errors.ErrCodeNetwork, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkStatus("https://optics.example.org/ring.toml", tt.code)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("got error %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("got error %v, want code %s", err, tt.wantCode)
			}
			if IsRetryable(err) != tt.retryable {
				t.Errorf("got retryable=%v, want %v", IsRetryable(err), tt.retryable)
			}
		})
	}
}

func TestIsURL(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"http://optics.example.org/ring.toml", true},
		{"https://optics.example.org/ring.toml", true},
		{"examples/ring.toml", false},
		{"/abs/path/ring.toml", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsURL(tt.path); got != tt.want {
			t.Errorf("IsURL(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestRetry(t *testing.T) {
	t.Run("flakyThenSuccess", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), 3, time.Millisecond, func() error {
			calls++
			if calls < 2 {
				return &RetryableError{Err: errors.New(errors.ErrCodeNetwork, "transient")}
			}
			return nil
		})
		if err != nil {
			t.Fatalf("Retry() failed: %v", err)
		}
		if calls != 2 {
			t.Errorf("got %d calls, want 2", calls)
		}
	})

	t.Run("permanentStopsEarly", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), 3, time.Millisecond, func() error {
			calls++
			return errors.New(errors.ErrCodeInvalidInput, "permanent")
		})
		if !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("got error %v, want INVALID_INPUT", err)
		}
		if calls != 1 {
			t.Errorf("got %d calls, want 1", calls)
		}
	})

	t.Run("exhaustsAttempts", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), 3, time.Millisecond, func() error {
			calls++
			return &RetryableError{Err: errors.New(errors.ErrCodeNetwork, "still down")}
		})
		if !errors.Is(err, errors.ErrCodeNetwork) {
			t.Errorf("got error %v, want NETWORK_ERROR", err)
		}
		if calls != 3 {
			t.Errorf("got %d calls, want 3", calls)
		}
	})
}
