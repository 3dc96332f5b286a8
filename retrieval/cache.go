package retrieval

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

type cacheEntry struct {
	results  []ScoredChunk
	storedAt time.Time
}

// ResultCache memoizes retrieval results with LRU eviction and a TTL.
type ResultCache struct {
	lru *lru.Cache
	ttl time.Duration
	now func() time.Time
}

func NewResultCache(maxEntries int, ttl time.Duration) *ResultCache {
	if maxEntries <= 0 {
		maxEntries = 256
	}
	cache, err := lru.New(maxEntries)
	if err != nil {
		// lru.New only fails on non-positive size, which is guarded above
		panic(err)
	}
	return &ResultCache{lru: cache, ttl: ttl, now: time.Now}
}

// Get returns a copy of the cached results for key, or false when the entry
// is absent or expired. Expired entries are evicted on access.
func (c *ResultCache) Get(key string) ([]ScoredChunk, bool) {
	value, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	entry := value.(cacheEntry)
	if c.ttl > 0 && c.now().Sub(entry.storedAt) > c.ttl {
		c.lru.Remove(key)
		return nil, false
	}
	return append([]ScoredChunk(nil), entry.results...), true
}

// Put stores a copy of the results so later mutation by the caller cannot
// corrupt cached entries.
func (c *ResultCache) Put(key string, results []ScoredChunk) {
	c.lru.Add(key, cacheEntry{
		results:  append([]ScoredChunk(nil), results...),
		storedAt: c.now(),
	})
}

// Purge drops every entry.
func (c *ResultCache) Purge() {
	c.lru.Purge()
}

// Len returns the number of live entries, counting expired ones not yet
// evicted.
func (c *ResultCache) Len() int {
	return c.lru.Len()
}

// cacheKey derives a deterministic key from the request parameters.
func cacheKey(query string, filter Filter, strategy Strategy, limit int) string {
	payload := fmt.Sprintf("%s|%s|%s|%d", normalizeQuery(query), filter.canonical(), strategy, limit)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// normalizeQuery lowercases and collapses whitespace so trivially different
// spellings share a cache entry.
func normalizeQuery(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}
