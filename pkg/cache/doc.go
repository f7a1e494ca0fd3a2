// Package cache provides TTLCache, a generic in-memory LRU cache whose
// entries also expire after a fixed time to live.
//
// It backs short-lived state such as pending login attempts when no shared
// store is configured:
//
//	attempts := cache.New[string, []byte](10_000, 10*time.Minute)
//	attempts.Put(id, payload)
//	payload, ok := attempts.Get(id)
//
// Capacity bounds memory; the least recently used entry goes first. Expired
// entries are dropped lazily by Get or in bulk by Sweep.
package cache
