package ai

import (
	"sync"
	"time"
)

// CacheKey builds the cache key for a request. Keys are the exact
// concatenation of kind and prompt, with no normalization, so two prompts
// that differ only in whitespace are distinct entries.
func CacheKey(kind, prompt string) string {
	return kind + "_" + prompt
}

type cacheEntry struct {
	content  string
	storedAt time.Time
}

// Expired reports whether the entry is past its TTL at the given instant.
func (e cacheEntry) Expired(ttl time.Duration, now time.Time) bool {
	return now.Sub(e.storedAt) >= ttl
}

// responseCache holds successful completions for a bounded time. Entries are
// evicted lazily on lookup; there is no background sweep.
type responseCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

func newResponseCache(ttl time.Duration, now func() time.Time) *responseCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if now == nil {
		now = time.Now
	}
	return &responseCache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]cacheEntry),
	}
}

func (c *responseCache) get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if entry.Expired(c.ttl, c.now()) {
		delete(c.entries, key)
		return "", false
	}
	return entry.content, true
}

func (c *responseCache) put(key, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{content: content, storedAt: c.now()}
}

func (c *responseCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}
