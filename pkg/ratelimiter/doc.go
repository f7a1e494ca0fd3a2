// Package ratelimiter throttles second-factor traffic with token buckets.
//
// The per-attempt retry limit alone does not stop a client from opening a
// fresh attempt after every lockout, so the HTTP module also draws from a
// bucket keyed by account, and Middleware can add a per-IP bucket in front
// of it.
//
//	limiter, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(10_000, time.Hour), ratelimiter.Config{
//	    Capacity:       10,
//	    RefillRate:     1,
//	    RefillInterval: time.Minute,
//	})
//
// Denied requests do not drain the bucket further. MemoryStore is process
// local; pkg/redis provides a shared store for multi-instance deployments.
package ratelimiter
