package promotions

import (
	"sync"
	"time"

	evbus "github.com/asaskevich/EventBus"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

// Cache keys used by the read API. Entries expire after the configured
// TTL; correctness never depends on the cache being populated.
const (
	CacheKeyFlashDeals   = "flash_deals"
	CacheKeyHomepageData = "homepage_data"

	DefaultCacheTTL = 15 * time.Minute
)

var jsonfast = jsoniter.ConfigCompatibleWithStandardLibrary

type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

// ResultCache is an in-process TTL cache for serialized read-API results.
// Values are stored as JSON so cached reads return copies, never shared
// mutable state. A deal write published on the event bus flushes it.
type ResultCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	done    chan struct{}
	once    sync.Once
}

// NewResultCache creates a cache and subscribes it to deal-change events.
// bus may be nil.
func NewResultCache(ttl time.Duration, bus evbus.Bus) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	c := &ResultCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		done:    make(chan struct{}),
	}
	if bus != nil {
		if err := bus.Subscribe(TopicDealChanged, c.Flush); err != nil {
			zap.L().Warn("cache bus subscribe failed", zap.Error(err))
		}
	}
	go c.janitor()
	return c
}

// Get unmarshals the cached value for key into out; false on miss or
// expired entry.
func (c *ResultCache) Get(key string, out interface{}) bool {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return false
	}
	if err := jsonfast.Unmarshal(entry.data, out); err != nil {
		zap.L().Warn("cache entry unmarshal failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Set stores value under key for the cache TTL. Marshal failures are
// logged and skipped; the cache is an optimization only.
func (c *ResultCache) Set(key string, value interface{}) {
	data, err := jsonfast.Marshal(value)
	if err != nil {
		zap.L().Warn("cache entry marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	c.mu.Lock()
	c.entries[key] = cacheEntry{data: data, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// Flush drops every entry.
func (c *ResultCache) Flush() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// Stop terminates the expiry janitor.
func (c *ResultCache) Stop() {
	c.once.Do(func() { close(c.done) })
}

func (c *ResultCache) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for k, e := range c.entries {
				if now.After(e.expiresAt) {
					delete(c.entries, k)
				}
			}
			c.mu.Unlock()
		}
	}
}
