// Package redis connects to Redis with go-redis and provides the Redis
// backends of the two-factor service.
//
// OptionBackend keeps per-account options in a hash and commits staged
// changes in a single transaction; wrap it with secondfactor.NewStagedStore
// to get an OptionStore. AttemptStore keeps pending login attempts as JSON
// with a TTL, so attempts survive across service instances.
// RateLimitStore runs the token bucket as a Lua script, so every instance
// draws from the same per-account budget.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	store := secondfactor.NewStagedStore(redis.NewOptionBackend(client, cfg.KeyPrefix))
//	attempts := redis.NewAttemptStore(client, cfg.KeyPrefix, 10*time.Minute)
//
// Healthcheck returns a readiness check for pkg/httpserver.
package redis
