package cache

import (
	"sync"
	"time"
)

// urlEntry is a presigned URL and the instant after which it must not be served.
type urlEntry struct {
	URL       string
	ExpiresAt time.Time
}

// URLCache keeps presigned download URLs in memory so repeated stream requests for
// the same object reuse a signature. Entries are dropped a safety margin before the
// signature itself expires.
type URLCache struct {
	mu      sync.RWMutex
	entries map[string]urlEntry
	margin  time.Duration
	now     func() time.Time
}

func NewURLCache(margin time.Duration) *URLCache {
	return &URLCache{
		entries: make(map[string]urlEntry),
		margin:  margin,
		now:     time.Now,
	}
}

// Get returns a URL that is still valid for at least the margin.
func (c *URLCache) Get(key string) (string, bool) {
	c.mu.RLock()
	entry, found := c.entries[key]
	c.mu.RUnlock()

	if found && c.now().Add(c.margin).Before(entry.ExpiresAt) {
		return entry.URL, true
	}

	return "", false
}

// Set stores url which stays valid for ttl from now.
func (c *URLCache) Set(key, url string, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = urlEntry{URL: url, ExpiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
}

// Prune removes expired entries and returns how many were dropped.
func (c *URLCache) Prune() int {
	now := c.now()
	removed := 0

	c.mu.Lock()
	for key, entry := range c.entries {
		if !now.Add(c.margin).Before(entry.ExpiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	c.mu.Unlock()

	return removed
}

func (c *URLCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
