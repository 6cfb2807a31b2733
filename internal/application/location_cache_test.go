package application

import (
	"testing"
	"time"
)

func TestLocationCacheStoresAndReturnsCopies(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	current := fixed
	cache := newLocationCache(time.Minute, 4, func() time.Time { return current })

	original := []WorkLocation{{ID: "loc-1", Name: "HQ", Address: strPtr("1 Main St")}}
	cache.Store("key", original)

	// Mutating the original slice should not affect the cached copy.
	original[0].Name = "mutated"
	*original[0].Address = "mutated"

	cached, ok := cache.Get("key")
	if !ok {
		t.Fatalf("expected cache hit")
	}
	if cached[0].Name != "HQ" || *cached[0].Address != "1 Main St" {
		t.Fatalf("expected cached location to remain unchanged, got %+v", cached[0])
	}

	// Mutating the returned slice should not be visible on subsequent reads.
	cached[0].Name = "changed"
	cachedAgain, ok := cache.Get("key")
	if !ok {
		t.Fatalf("expected cache hit on second read")
	}
	if cachedAgain[0].Name != "HQ" {
		t.Fatalf("expected cache to return independent copy, got %s", cachedAgain[0].Name)
	}
}

func TestLocationCacheExpiresEntries(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	current := fixed
	cache := newLocationCache(time.Second, 4, func() time.Time { return current })

	cache.Store("key", []WorkLocation{{ID: "loc-1"}})
	if _, ok := cache.Get("key"); !ok {
		t.Fatalf("expected cache hit before expiry")
	}

	current = current.Add(2 * time.Second)
	if _, ok := cache.Get("key"); ok {
		t.Fatalf("expected cache entry to expire")
	}
}

func TestLocationCacheInvalidate(t *testing.T) {
	cache := newLocationCache(time.Minute, 4, time.Now)
	cache.Store(locationCacheKey(true), []WorkLocation{{ID: "loc-1"}})
	cache.Invalidate()
	if _, ok := cache.Get(locationCacheKey(true)); ok {
		t.Fatalf("expected cache to be empty after invalidation")
	}
}

func TestLocationCacheEvictsWhenFull(t *testing.T) {
	cache := newLocationCache(time.Minute, 1, time.Now)
	cache.Store(locationCacheKey(true), []WorkLocation{{ID: "loc-1"}})
	cache.Store(locationCacheKey(false), []WorkLocation{{ID: "loc-2"}})

	if _, ok := cache.Get(locationCacheKey(true)); ok {
		t.Fatalf("expected oldest entry to be evicted")
	}
	if got, ok := cache.Get(locationCacheKey(false)); !ok || got[0].ID != "loc-2" {
		t.Fatalf("expected newest entry to be cached, got %v (%v)", got, ok)
	}
}
