package data

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"sync"
	"time"
)

type cacheEntry struct {
	body      []byte
	expiresAt time.Time
}

// ResponseCache keeps downloaded dataset bodies in memory for a TTL.
// It is meant for local development, where the same file is fetched on
// every run; it is disabled when API_ENV=production.
type ResponseCache struct {
	mu    sync.RWMutex
	store map[string]cacheEntry
	ttl   time.Duration
	now   func() time.Time
}

var (
	globalCache *ResponseCache
	cacheOnce   sync.Once
)

func NewResponseCache(ttl time.Duration) *ResponseCache {
	return &ResponseCache{store: map[string]cacheEntry{}, ttl: ttl, now: time.Now}
}

// GetCache returns the process cache when ENABLE_DATASET_CACHE=true, or nil.
// DATASET_CACHE_TTL overrides the one hour default.
func GetCache() *ResponseCache {
	if os.Getenv("ENABLE_DATASET_CACHE") != "true" {
		return nil
	}
	if os.Getenv("API_ENV") == "production" {
		return nil
	}

	cacheOnce.Do(func() {
		ttl := time.Hour
		if s := os.Getenv("DATASET_CACHE_TTL"); s != "" {
			if parsed, err := time.ParseDuration(s); err == nil {
				ttl = parsed
			}
		}
		globalCache = NewResponseCache(ttl)
		go globalCache.cleanup(5 * time.Minute)
	})
	return globalCache
}

func (c *ResponseCache) Get(key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.store[key]
	if !ok || c.now().After(e.expiresAt) {
		return nil, false
	}
	return e.body, true
}

func (c *ResponseCache) Set(key string, body []byte) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = cacheEntry{body: body, expiresAt: c.now().Add(c.ttl)}
}

func (c *ResponseCache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = map[string]cacheEntry{}
}

// Prune drops expired entries and returns how many were removed.
func (c *ResponseCache) Prune() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	now, n := c.now(), 0
	for k, e := range c.store {
		if now.After(e.expiresAt) {
			delete(c.store, k)
			n++
		}
	}
	return n
}

func (c *ResponseCache) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for range ticker.C {
		c.Prune()
	}
}

// CacheKey hashes a source URL.
func CacheKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}
