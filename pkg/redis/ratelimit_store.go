package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/twofa/pkg/ratelimiter"
)

// tokenBucket mirrors ratelimiter.Refill in Lua so the read-modify-write
// happens atomically on the server. Times are unix milliseconds.
var tokenBucket = redis.NewScript(`
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local interval = tonumber(ARGV[3])
local now = tonumber(ARGV[4])
local n = tonumber(ARGV[5])
local ttl = tonumber(ARGV[6])

local state = redis.call('HMGET', KEYS[1], 'tokens', 'mark')
local tokens = tonumber(state[1])
local mark = tonumber(state[2])
if tokens == nil or mark == nil then
  tokens = capacity
  mark = now
end

if now > mark then
  local intervals = math.floor((now - mark) / interval)
  if intervals > 0 then
    local fill = math.floor(capacity / rate) + 1
    tokens = math.min(tokens + math.min(intervals, fill) * rate, capacity)
    mark = mark + intervals * interval
  end
end

local remaining = tokens - n
if remaining >= 0 then
  tokens = remaining
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'mark', mark)
redis.call('PEXPIRE', KEYS[1], ttl)
return {remaining, mark + interval}
`)

// RateLimitStore keeps token buckets in redis hashes under
// {prefix}ratelimit:{key}. It implements ratelimiter.Store.
type RateLimitStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRateLimitStore(client redis.UniversalClient, prefix string) *RateLimitStore {
	return &RateLimitStore{client: client, prefix: prefix}
}

func (s *RateLimitStore) key(k string) string {
	return s.prefix + "ratelimit:" + k
}

func (s *RateLimitStore) ConsumeTokens(ctx context.Context, key string, n int, cfg ratelimiter.Config, now time.Time) (int, time.Time, error) {
	// A bucket idle long enough to refill completely can be forgotten.
	refills := (cfg.Capacity + cfg.RefillRate - 1) / cfg.RefillRate
	ttl := time.Duration(refills+1) * cfg.RefillInterval

	res, err := tokenBucket.Run(ctx, s.client, []string{s.key(key)},
		cfg.Capacity,
		cfg.RefillRate,
		cfg.RefillInterval.Milliseconds(),
		now.UnixMilli(),
		n,
		ttl.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return 0, time.Time{}, errors.Join(ErrRateLimitStore, err)
	}
	if len(res) != 2 {
		return 0, time.Time{}, ErrRateLimitStore
	}
	return int(res[0]), time.UnixMilli(res[1]), nil
}

func (s *RateLimitStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return errors.Join(ErrRateLimitStore, err)
	}
	return nil
}
