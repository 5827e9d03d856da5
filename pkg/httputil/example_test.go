package httputil_test

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/beamforge/pkg/httputil"
)

func ExampleCache() {
	// Create a cache with 24-hour TTL in a temp directory
	dir := filepath.Join(os.TempDir(), "beamforge-example")
	cache, err := httputil.NewCache(dir, 24*time.Hour)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	// Store a fetched manifest body keyed by its URL
	body := []byte("name = \"ring\"")
	if err := cache.Set("https://optics.example.org/ring.toml", body); err != nil {
		fmt.Println("Error:", err)
		return
	}

	// Retrieve it later without hitting the network
	var cached []byte
	if ok, err := cache.Get("https://optics.example.org/ring.toml", &cached); ok && err == nil {
		fmt.Println("Manifest:", string(cached))
	}

	// Clean up
	os.RemoveAll(dir)
	// Output:
	// Manifest: name = "ring"
}

func ExampleCache_miss() {
	dir := filepath.Join(os.TempDir(), "beamforge-example-miss")
	cache, _ := httputil.NewCache(dir, time.Hour)
	defer os.RemoveAll(dir)

	// Try to get a non-existent key
	var result []byte
	ok, err := cache.Get("https://optics.example.org/unknown.toml", &result)
	fmt.Println("Found:", ok)
	fmt.Println("Error:", err)
	// Output:
	// Found: false
	// Error: <nil>
}
