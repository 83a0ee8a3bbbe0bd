// Package retrieval orchestrates cached, filtered context retrieval over a
// vector index.
package retrieval

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/finvault-ai/semindex/internal/index"
)

// ContextStore is the cache interface consumed by the retrieval service. Any
// fault inside an implementation is equivalent to a miss and never affects
// correctness.
type ContextStore interface {
	Get(ctx context.Context, key string) (string, bool)
	Put(ctx context.Context, key string, value string)
}

// CacheKey builds the deterministic cache key for a retrieval request:
// normalized query text, result count, and an order-independent filter
// serialization, hashed.
func CacheKey(query string, k int, filter index.Filter) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(query), " "))

	parts := []string{normalized, fmt.Sprintf("k=%d", k)}
	if filter.Category != "" {
		parts = append(parts, "category="+string(filter.Category))
	}
	if filter.SubCategory != "" {
		parts = append(parts, "sub_category="+string(filter.SubCategory))
	}
	if filter.Section != "" {
		parts = append(parts, "section="+filter.Section)
	}
	if filter.Language != "" {
		parts = append(parts, "language="+string(filter.Language))
	}
	if filter.IsTable != nil {
		parts = append(parts, fmt.Sprintf("is_table=%t", *filter.IsTable))
	}
	if filter.IsFAQ != nil {
		parts = append(parts, fmt.Sprintf("is_faq=%t", *filter.IsFAQ))
	}
	sort.Strings(parts[2:])

	hash := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(hash[:16])
}

// ContextCache is a bounded, TTL-based in-process cache of formatted context
// strings. The clock is injected for testability. All access is serialized by
// a single mutex; operations are O(1) and never block on embedding or index
// I/O.
type ContextCache struct {
	mu       sync.Mutex
	entries  map[string]*list.Element
	order    *list.List // front = most recently used
	ttl      time.Duration
	capacity int
	clock    func() time.Time

	hits   int64
	misses int64
}

type cacheEntry struct {
	key       string
	value     string
	expiresAt time.Time
}

// ContextCacheConfig configures the cache.
type ContextCacheConfig struct {
	TTL      time.Duration
	Capacity int
	Clock    func() time.Time
}

// NewContextCache creates a cache with the given TTL and capacity.
func NewContextCache(cfg ContextCacheConfig) *ContextCache {
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = 1000
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &ContextCache{
		entries:  make(map[string]*list.Element),
		order:    list.New(),
		ttl:      cfg.TTL,
		capacity: cfg.Capacity,
		clock:    cfg.Clock,
	}
}

// Get returns the cached value if present and unexpired, refreshing recency.
func (c *ContextCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		c.misses++
		return "", false
	}

	entry := el.Value.(*cacheEntry)
	if c.clock().After(entry.expiresAt) {
		c.order.Remove(el)
		delete(c.entries, key)
		c.misses++
		return "", false
	}

	c.order.MoveToFront(el)
	c.hits++
	return entry.value, true
}

// Put inserts or overwrites with a fresh expiry, evicting the least recently
// used entry when over capacity.
func (c *ContextCache) Put(_ context.Context, key string, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expires := c.clock().Add(c.ttl)

	if el, ok := c.entries[key]; ok {
		entry := el.Value.(*cacheEntry)
		entry.value = value
		entry.expiresAt = expires
		c.order.MoveToFront(el)
		return
	}

	el := c.order.PushFront(&cacheEntry{key: key, value: value, expiresAt: expires})
	c.entries[key] = el

	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*cacheEntry).key)
		}
	}
}

// Len returns the number of live entries.
func (c *ContextCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats reports hit/miss counters.
func (c *ContextCache) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

var _ ContextStore = (*ContextCache)(nil)
