package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestCache_GetSet(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := New[string](10*time.Minute, 5, clock)

	_, ok := c.Get("a")
	assert.False(t, ok, "empty cache should miss")

	c.Set("a", "alpha")
	got, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "alpha", got)
}

func TestCache_TTLExpiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := New[int](10*time.Minute, 5, clock)

	c.Set("k", 42)

	clock.Advance(9 * time.Minute)
	got, ok := c.Get("k")
	assert.True(t, ok, "entry should still be live before TTL")
	assert.Equal(t, 42, got)

	// Age == TTL counts as expired.
	clock.Advance(time.Minute)
	_, ok = c.Get("k")
	assert.False(t, ok, "entry should expire at TTL")
	assert.Equal(t, 0, c.Len(), "expired entry should be purged")
}

func TestCache_OverwriteRefreshesTTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := New[int](10*time.Minute, 5, clock)

	c.Set("k", 1)
	clock.Advance(8 * time.Minute)
	c.Set("k", 2)

	clock.Advance(8 * time.Minute)
	got, ok := c.Get("k")
	assert.True(t, ok, "overwrite should restart the TTL window")
	assert.Equal(t, 2, got)
}

func TestCache_EvictsExactlyOldestInserted(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := New[int](time.Hour, 3, clock)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)
	c.Set("d", 4) // exceeds bound, evicts "a" only

	_, ok := c.Get("a")
	assert.False(t, ok, "oldest-inserted entry should be evicted")
	assert.Equal(t, 3, c.Len(), "exactly one entry should be evicted")

	for _, k := range []string{"b", "c", "d"} {
		_, ok := c.Get(k)
		assert.True(t, ok, "entry %q should survive eviction", k)
	}
}

func TestCache_OverwriteKeepsEvictionPosition(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := New[int](time.Hour, 2, clock)

	c.Set("a", 1)
	c.Set("b", 2)
	// Refreshing "a" must not move it to the back of the eviction queue.
	c.Set("a", 10)
	c.Set("c", 3)

	_, ok := c.Get("a")
	assert.False(t, ok, "refreshed key keeps its first-insertion position")
	_, ok = c.Get("b")
	assert.True(t, ok)
}

func TestCache_ExpiredKeyReentersAtBack(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := New[int](time.Minute, 2, clock)

	c.Set("a", 1)
	clock.Advance(time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected a to be expired")
	}

	// "a" was purged, so this insertion is fresh and goes to the back.
	c.Set("b", 2)
	c.Set("a", 3)
	c.Set("c", 4) // evicts "b", the oldest live insertion

	_, ok := c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := New[int](time.Hour, 64, clockwork.NewRealClock())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d", j%32)
				c.Set(key, n*1000+j)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()

	if c.Len() > 64 {
		t.Errorf("cache exceeded its bound: %d entries", c.Len())
	}
}
