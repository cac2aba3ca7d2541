package generate

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Cache is a TTL cache of continuations keyed by model, instruction and input text.
type Cache struct {
	cache *ttlcache.Cache[string, string]
}

// NewCache creates a cache whose entries expire ttl after insertion.
func NewCache(ttl time.Duration) *Cache {
	c := ttlcache.New[string, string](
		ttlcache.WithTTL[string, string](ttl),
		ttlcache.WithDisableTouchOnHit[string, string](),
	)
	go c.Start()
	return &Cache{cache: c}
}

// Close stops the cache expiration loop.
func (c *Cache) Close() {
	c.cache.Stop()
}

// Get returns the cached continuation, or false if absent or expired.
func (c *Cache) Get(key string) (string, bool) {
	item := c.cache.Get(key)
	if item == nil {
		return "", false
	}
	return item.Value(), true
}

// Put stores a continuation with the cache's default TTL.
func (c *Cache) Put(key, continuation string) {
	c.cache.Set(key, continuation, ttlcache.DefaultTTL)
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	return c.cache.Len()
}

// cacheKey hashes the parts of a request that determine its output.
func cacheKey(model, instruction, text string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(instruction))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}
