package compat

import (
	"strings"
	"sync"
	"time"

	"github.com/arthur-debert/silkmod/pkg/types"
	"k8s.io/apimachinery/pkg/util/cache"
)

// Clock supplies the time used for entry expiry
type Clock = cache.Clock

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Cache is a size-bounded LRU of compatibility results with a per-entry TTL
type Cache struct {
	mu    sync.Mutex
	size  int
	ttl   time.Duration
	clock Clock
	lru   *cache.LRUExpireCache
}

// CacheOption configures a Cache
type CacheOption func(*Cache)

// WithClock replaces the wall clock, for tests
func WithClock(c Clock) CacheOption {
	return func(cc *Cache) {
		if c != nil {
			cc.clock = c
		}
	}
}

// NewCache creates a cache holding at most size results for ttl each
func NewCache(size int, ttl time.Duration, opts ...CacheOption) *Cache {
	if size <= 0 {
		size = 1
	}
	c := &Cache{size: size, ttl: ttl, clock: realClock{}}
	for _, opt := range opts {
		opt(c)
	}
	c.lru = cache.NewLRUExpireCacheWithClock(c.size, c.clock)
	return c
}

// Key builds the cache key for a mod within one game install
func Key(modID, installID string) string {
	return strings.ToLower(modID) + "@" + installID
}

// Get returns a live cached result
func (c *Cache) Get(modID, installID string) (types.CompatibilityResult, bool) {
	c.mu.Lock()
	lru := c.lru
	c.mu.Unlock()

	v, ok := lru.Get(Key(modID, installID))
	if !ok {
		return types.CompatibilityResult{}, false
	}
	result, ok := v.(types.CompatibilityResult)
	return result, ok
}

// Put stores a result under its mod id
func (c *Cache) Put(installID string, result types.CompatibilityResult) {
	c.mu.Lock()
	lru := c.lru
	c.mu.Unlock()

	lru.Add(Key(result.ModID, installID), result, c.ttl)
}

// Invalidate drops one entry
func (c *Cache) Invalidate(modID, installID string) {
	c.mu.Lock()
	lru := c.lru
	c.mu.Unlock()

	lru.Remove(Key(modID, installID))
}

// Purge drops every entry. Any change to the installed set can flip the
// verdict of mods that were not touched, so installs purge wholesale.
func (c *Cache) Purge() {
	c.mu.Lock()
	c.lru = cache.NewLRUExpireCacheWithClock(c.size, c.clock)
	c.mu.Unlock()
}
