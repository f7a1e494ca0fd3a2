package ratelimiter

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrymomot/twofa/pkg/cache"
)

type bucketState struct {
	tokens     int
	lastRefill time.Time
}

// MemoryStore keeps buckets in a bounded TTL cache. A bucket untouched for
// the idle TTL is dropped, which is equivalent to it refilling completely
// as long as the TTL covers a full refill.
type MemoryStore struct {
	mu      sync.Mutex
	buckets *cache.TTLCache[string, bucketState]
}

func NewMemoryStore(capacity int, idle time.Duration) *MemoryStore {
	return &MemoryStore{buckets: cache.New[string, bucketState](capacity, idle)}
}

func (s *MemoryStore) ConsumeTokens(_ context.Context, key string, n int, cfg Config, now time.Time) (int, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets.Get(key)
	if !ok {
		b = bucketState{tokens: cfg.Capacity, lastRefill: now}
	}
	b.tokens, b.lastRefill = Refill(b.tokens, b.lastRefill, now, cfg)

	remaining := b.tokens - n
	if remaining >= 0 {
		b.tokens = remaining
	}
	s.buckets.Put(key, b)
	return remaining, b.lastRefill.Add(cfg.RefillInterval), nil
}

func (s *MemoryStore) Reset(_ context.Context, key string) error {
	s.buckets.Remove(key)
	return nil
}
