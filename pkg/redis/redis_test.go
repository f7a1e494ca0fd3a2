//go:build integration

package redis_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/dmitrymomot/twofa/pkg/ratelimiter"
	"github.com/dmitrymomot/twofa/pkg/redis"
	"github.com/dmitrymomot/twofa/pkg/secondfactor"
)

var redisURL string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		panic(err)
	}
	redisURL, err = container.ConnectionString(ctx)
	if err != nil {
		panic(err)
	}

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func connect(t *testing.T) redis.Config {
	t.Helper()
	return redis.Config{
		ConnectionURL:  redisURL,
		RetryAttempts:  3,
		RetryInterval:  time.Second,
		ConnectTimeout: 10 * time.Second,
		KeyPrefix:      "test:" + t.Name() + ":",
	}
}

func TestOptionBackend(t *testing.T) {
	ctx := context.Background()
	cfg := connect(t)
	client, err := redis.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, redis.Healthcheck(client)(ctx))

	store := secondfactor.NewStagedStore(redis.NewOptionBackend(client, cfg.KeyPrefix))
	require.NoError(t, store.SetOption(ctx, "jane", secondfactor.KeySecret, "JBSWY3DPEHPK3PXP"))
	require.NoError(t, store.SetOption(ctx, "jane", secondfactor.KeySetupComplete, "1"))
	require.NoError(t, store.SaveOptions(ctx, "jane"))

	state, err := secondfactor.LoadState(ctx, store, "jane")
	require.NoError(t, err)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", state.Secret)
	assert.True(t, state.SetupComplete)

	require.NoError(t, store.SetOption(ctx, "jane", secondfactor.KeySetupComplete, ""))
	require.NoError(t, store.SaveOptions(ctx, "jane"))
	_, ok, err := store.GetOption(ctx, "jane", secondfactor.KeySetupComplete)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAttemptStore(t *testing.T) {
	ctx := context.Background()
	cfg := connect(t)
	client, err := redis.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	store := redis.NewAttemptStore(client, cfg.KeyPrefix, time.Minute)
	attempt := &secondfactor.LoginAttempt{ID: "a-1", Account: "jane", State: secondfactor.StateAwaitingCode, FailureCount: 2, MaxRetries: 4}
	require.NoError(t, store.SaveAttempt(ctx, attempt))

	loaded, err := store.LoadAttempt(ctx, "a-1")
	require.NoError(t, err)
	assert.Equal(t, attempt, loaded)

	ttl, err := client.TTL(ctx, cfg.KeyPrefix+"attempt:a-1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Second)

	require.NoError(t, store.DeleteAttempt(ctx, "a-1"))
	_, err = store.LoadAttempt(ctx, "a-1")
	assert.ErrorIs(t, err, secondfactor.ErrAttemptNotFound)
}

func TestAttemptStore_Lock(t *testing.T) {
	ctx := context.Background()
	cfg := connect(t)
	client, err := redis.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	var store secondfactor.AttemptLocker = redis.NewAttemptStore(client, cfg.KeyPrefix, time.Minute)
	other := redis.NewAttemptStore(client, cfg.KeyPrefix, time.Minute)

	unlock, err := store.LockAttempt(ctx, "a-1")
	require.NoError(t, err)

	// A second process sees the lock until it is released.
	busyCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_, err = other.LockAttempt(busyCtx, "a-1")
	assert.ErrorIs(t, err, secondfactor.ErrAttemptBusy)

	unlock()
	unlock()
	unlockOther, err := other.LockAttempt(ctx, "a-1")
	require.NoError(t, err)
	unlockOther()

	exists, err := client.Exists(ctx, cfg.KeyPrefix+"attempt:a-1:lock").Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}

func TestOptionBackend_GetAll(t *testing.T) {
	ctx := context.Background()
	cfg := connect(t)
	client, err := redis.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	backend := redis.NewOptionBackend(client, cfg.KeyPrefix)
	all, err := backend.GetAll(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, all)

	require.NoError(t, backend.Commit(ctx, "jane", map[string]string{
		secondfactor.KeySecret:  "JBSWY3DPEHPK3PXP",
		secondfactor.KeyRescue1: "AAAAAAAAAAAAAAAA",
	}))
	all, err = backend.GetAll(ctx, "jane")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		secondfactor.KeySecret:  "JBSWY3DPEHPK3PXP",
		secondfactor.KeyRescue1: "AAAAAAAAAAAAAAAA",
	}, all)
}

func TestRateLimitStore(t *testing.T) {
	ctx := context.Background()
	cfg := connect(t)
	client, err := redis.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	now := time.UnixMilli(1_700_000_000_000)
	limiter, err := ratelimiter.NewBucket(
		redis.NewRateLimitStore(client, cfg.KeyPrefix),
		ratelimiter.Config{Capacity: 2, RefillRate: 1, RefillInterval: time.Minute},
		ratelimiter.WithClock(func() time.Time { return now }),
	)
	require.NoError(t, err)

	for want := 1; want >= 0; want-- {
		res, err := limiter.Allow(ctx, "jane")
		require.NoError(t, err)
		assert.Equal(t, want, res.Remaining)
	}
	res, err := limiter.Allow(ctx, "jane")
	require.NoError(t, err)
	assert.False(t, res.Allowed())
	assert.Equal(t, time.Minute, res.RetryAfter())

	now = now.Add(time.Minute)
	res, err = limiter.Allow(ctx, "jane")
	require.NoError(t, err)
	assert.True(t, res.Allowed())

	require.NoError(t, limiter.Reset(ctx, "jane"))
	res, err = limiter.Allow(ctx, "jane")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Remaining)
}

func TestConnect_InvalidURL(t *testing.T) {
	_, err := redis.Connect(context.Background(), redis.Config{ConnectionURL: "://bad", ConnectTimeout: time.Second})
	assert.ErrorIs(t, err, redis.ErrFailedToParseRedisConnString)

	_, err = redis.Connect(context.Background(), redis.Config{})
	assert.ErrorIs(t, err, redis.ErrEmptyConnectionURL)
}
