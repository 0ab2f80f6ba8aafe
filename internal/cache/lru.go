package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/SaadGoaya/Farmer-aid/internal/domain"
)

// LRUCache is an in-process cache with per-entry TTL and least recently
// used eviction. It serves the Community tier and the L1 of the two-phase
// cache. Expired entries are dropped lazily on read.
type LRUCache struct {
	mu    sync.Mutex
	cap   int
	index map[string]*list.Element
	order *list.List
}

type lruEntry struct {
	key     string
	value   []byte
	expires time.Time
}

// NewLRUCache returns a cache holding at most maxSize entries.
func NewLRUCache(maxSize int) *LRUCache {
	if maxSize <= 0 {
		maxSize = 10000
	}
	return &LRUCache{
		cap:   maxSize,
		index: make(map[string]*list.Element),
		order: list.New(),
	}
}

// Get returns the cached value, or nil when the key is absent or expired.
func (c *LRUCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.index[key]
	if !ok {
		return nil, nil
	}
	entry := elem.Value.(*lruEntry)
	if time.Now().After(entry.expires) {
		c.evict(elem)
		return nil, nil
	}

	c.order.MoveToFront(elem)
	return entry.value, nil
}

// Set stores value under key for ttl, evicting the oldest entries when the
// cache is full.
func (c *LRUCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	expires := time.Now().Add(ttl)
	if elem, ok := c.index[key]; ok {
		entry := elem.Value.(*lruEntry)
		entry.value = value
		entry.expires = expires
		c.order.MoveToFront(elem)
		return nil
	}

	c.index[key] = c.order.PushFront(&lruEntry{key: key, value: value, expires: expires})
	for c.order.Len() > c.cap {
		if oldest := c.order.Back(); oldest != nil {
			c.evict(oldest)
		}
	}
	return nil
}

// Delete removes key if present.
func (c *LRUCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.index[key]; ok {
		c.evict(elem)
	}
	return nil
}

// GetForecast returns a cached decoded forecast payload, or nil on miss.
func (c *LRUCache) GetForecast(ctx context.Context, key string) (*domain.ForecastPayload, error) {
	data, err := c.Get(ctx, payloadPrefix+key)
	if err != nil {
		return nil, err
	}
	return decodePayload(data)
}

// SetForecast caches a decoded forecast payload.
func (c *LRUCache) SetForecast(ctx context.Context, key string, payload *domain.ForecastPayload, ttl time.Duration) error {
	data, err := encodePayload(payload)
	if err != nil {
		return err
	}
	return c.Set(ctx, payloadPrefix+key, data, ttl)
}

// Ping always succeeds; the cache is in-process.
func (c *LRUCache) Ping(ctx context.Context) error {
	return nil
}

// Close drops all entries.
func (c *LRUCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = make(map[string]*list.Element)
	c.order = list.New()
	return nil
}

// Stats reports the current fill level and capacity.
func (c *LRUCache) Stats() (size int, capacity int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len(), c.cap
}

// evict removes elem from both the order list and the index. Callers hold
// the lock.
func (c *LRUCache) evict(elem *list.Element) {
	c.order.Remove(elem)
	delete(c.index, elem.Value.(*lruEntry).key)
}
