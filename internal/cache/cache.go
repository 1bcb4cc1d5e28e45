// Package cache provides the time-boxed key/value cache each risk source
// fronts its collaborator with. Every source owns one instance with its own
// TTL reflecting how often the underlying ground truth changes.
package cache

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type entry[T any] struct {
	data  T
	stamp time.Time
}

// Cache is a bounded TTL cache. Eviction is FIFO by first insertion, not LRU:
// overwriting a live key refreshes its data and timestamp without moving its
// eviction position. Downstream consumers depend on that exact order.
type Cache[T any] struct {
	ttl     time.Duration
	maxSize int
	clock   clockwork.Clock

	mu      sync.Mutex
	entries map[string]entry[T]
	order   []string // keys in first-insertion order, oldest first
}

// New creates a cache holding at most maxSize entries for up to ttl each.
func New[T any](ttl time.Duration, maxSize int, clock clockwork.Clock) *Cache[T] {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Cache[T]{
		ttl:     ttl,
		maxSize: maxSize,
		clock:   clock,
		entries: make(map[string]entry[T]),
	}
}

// Get returns the live value for key. An entry whose age has reached the TTL
// is purged and reported as absent.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero T
		return zero, false
	}
	if c.clock.Since(e.stamp) >= c.ttl {
		c.removeLocked(key)
		var zero T
		return zero, false
	}
	return e.data, true
}

// Set inserts or overwrites key. When the insert pushes the cache past its
// bound, exactly one entry is evicted: the oldest-inserted.
func (c *Cache[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.entries[key] = entry[T]{data: value, stamp: c.clock.Now()}
		return
	}

	c.entries[key] = entry[T]{data: value, stamp: c.clock.Now()}
	c.order = append(c.order, key)

	if len(c.entries) > c.maxSize {
		c.removeLocked(c.order[0])
	}
}

// Len reports the number of entries currently held, expired or not.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache[T]) removeLocked(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
