package application

import (
	"sync"
	"time"
)

// locationCache stores recently loaded location listings so that every
// check-in does not reload the geofence set while locations remain unchanged.
type locationCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]locationCacheEntry
}

type locationCacheEntry struct {
	locations []WorkLocation
	expiresAt time.Time
}

func newLocationCache(ttl time.Duration, maxEntries int, now func() time.Time) *locationCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 8
	}
	if now == nil {
		now = time.Now
	}
	return &locationCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]locationCacheEntry),
	}
}

func (c *locationCache) Get(key string) ([]WorkLocation, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return cloneLocations(entry.locations), true
}

func (c *locationCache) Store(key string, locations []WorkLocation) {
	if c == nil {
		return
	}
	cloned := cloneLocations(locations)
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[key] = locationCacheEntry{locations: cloned, expiresAt: expiry}
}

func (c *locationCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]locationCacheEntry)
	c.mu.Unlock()
}

func (c *locationCache) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *locationCache) evictOneLocked() {
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}

// cloneLocations copies the slice and the pointer fields of each location.
func cloneLocations(locations []WorkLocation) []WorkLocation {
	if len(locations) == 0 {
		return nil
	}
	out := make([]WorkLocation, len(locations))
	for i, location := range locations {
		if location.Address != nil {
			address := *location.Address
			location.Address = &address
		}
		out[i] = location
	}
	return out
}

func locationCacheKey(activeOnly bool) string {
	if activeOnly {
		return "locations:active"
	}
	return "locations:all"
}
