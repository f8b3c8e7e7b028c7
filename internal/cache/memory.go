package cache

import (
	"container/list"
	"sync"
	"time"
)

// entry is owned by MemoryCache; nothing outside the package ever sees it.
type entry[K comparable, V any] struct {
	key       K
	value     V
	createdAt time.Time
}

// MemoryCache is an in-memory Cache with a per-instance TTL and entry bound.
//
// Entries are kept in insertion order. Eviction removes the oldest inserted
// entry; reads never reorder anything. All access goes through one mutex,
// including Get, since a read may physically remove an expired entry.
type MemoryCache[K comparable, V any] struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	order      *list.List
	items      map[K]*list.Element
	now        func() time.Time
}

// NewMemoryCache creates an empty cache. A ttl <= 0 disables expiry and
// maxEntries <= 0 disables the capacity bound.
func NewMemoryCache[K comparable, V any](ttl time.Duration, maxEntries int) *MemoryCache[K, V] {
	return &MemoryCache[K, V]{
		ttl:        ttl,
		maxEntries: maxEntries,
		order:      list.New(),
		items:      make(map[K]*list.Element),
		now:        time.Now,
	}
}

// WithClock swaps the time source. Intended for tests.
func (c *MemoryCache[K, V]) WithClock(now func() time.Time) *MemoryCache[K, V] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
	return c
}

func (c *MemoryCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	elem, ok := c.items[key]
	if !ok {
		return zero, false
	}
	e := elem.Value.(*entry[K, V])
	if c.expired(e, c.now()) {
		c.remove(elem)
		return zero, false
	}
	return e.value, true
}

func (c *MemoryCache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.purgeExpired(now)

	// re-putting a key refreshes it rather than occupying a second slot
	if elem, ok := c.items[key]; ok {
		c.remove(elem)
	}

	if c.maxEntries > 0 {
		for c.order.Len() >= c.maxEntries {
			c.remove(c.order.Front())
		}
	}

	elem := c.order.PushBack(&entry[K, V]{key: key, value: value, createdAt: now})
	c.items[key] = elem
}

// Len returns the number of stored entries, expired ones included until
// they are purged.
func (c *MemoryCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Clear drops every entry.
func (c *MemoryCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.items = make(map[K]*list.Element)
}

// expired: now - createdAt > ttl
func (c *MemoryCache[K, V]) expired(e *entry[K, V], now time.Time) bool {
	if c.ttl <= 0 {
		return false
	}
	return now.Sub(e.createdAt) > c.ttl
}

// purgeExpired walks from the oldest entry; since entries are in insertion
// order, it stops at the first fresh one.
func (c *MemoryCache[K, V]) purgeExpired(now time.Time) {
	for elem := c.order.Front(); elem != nil; {
		e := elem.Value.(*entry[K, V])
		if !c.expired(e, now) {
			return
		}
		next := elem.Next()
		c.remove(elem)
		elem = next
	}
}

func (c *MemoryCache[K, V]) remove(elem *list.Element) {
	e := c.order.Remove(elem).(*entry[K, V])
	delete(c.items, e.key)
}
