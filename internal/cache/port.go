package cache

// Cache is the port every result cache implements. Each use site owns its own
// instance, so key space, capacity and TTL are never shared between caches.
type Cache[K comparable, V any] interface {
	// Get returns the stored value and true only while the entry is fresh.
	// An expired entry is indistinguishable from a miss.
	Get(key K) (V, bool)

	// Put stores value under key, evicting the oldest-inserted entry first
	// when the capacity would otherwise be exceeded.
	Put(key K, value V)
}
