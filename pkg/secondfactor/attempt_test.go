package secondfactor_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/twofa/pkg/cache"
	"github.com/dmitrymomot/twofa/pkg/secondfactor"
)

func TestMemoryAttemptStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Unix(1_000, 0)
	store := secondfactor.NewMemoryAttemptStore(16, time.Minute,
		cache.WithClock[string, secondfactor.LoginAttempt](func() time.Time { return now }))

	attempt := &secondfactor.LoginAttempt{ID: "a-1", Account: "jane", State: secondfactor.StateAwaitingCode, MaxRetries: 4}
	require.NoError(t, store.SaveAttempt(ctx, attempt))

	// Stored by value: later mutations need another save.
	attempt.FailureCount = 3
	loaded, err := store.LoadAttempt(ctx, "a-1")
	require.NoError(t, err)
	assert.Zero(t, loaded.FailureCount)

	require.NoError(t, store.DeleteAttempt(ctx, "a-1"))
	_, err = store.LoadAttempt(ctx, "a-1")
	assert.ErrorIs(t, err, secondfactor.ErrAttemptNotFound)

	assert.ErrorIs(t, store.SaveAttempt(ctx, &secondfactor.LoginAttempt{}), secondfactor.ErrAttemptNotFound)
}

func TestMemoryAttemptStore_Expiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Unix(1_000, 0)
	store := secondfactor.NewMemoryAttemptStore(16, time.Minute,
		cache.WithClock[string, secondfactor.LoginAttempt](func() time.Time { return now }))

	require.NoError(t, store.SaveAttempt(ctx, &secondfactor.LoginAttempt{ID: "a-1"}))
	now = now.Add(2 * time.Minute)

	_, err := store.LoadAttempt(ctx, "a-1")
	assert.ErrorIs(t, err, secondfactor.ErrAttemptNotFound)
}

func TestLoginAttempt_JSON(t *testing.T) {
	t.Parallel()

	attempt := secondfactor.LoginAttempt{ID: "a-1", Account: "jane", State: secondfactor.StateNeedsSetup, FailureCount: 2, MaxRetries: 4}
	raw, err := json.Marshal(attempt)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"a-1","account":"jane","state":"needs_setup","failure_count":2,"max_retries":4}`, string(raw))
}

func TestState_Terminal(t *testing.T) {
	t.Parallel()
	assert.True(t, secondfactor.StatePassed.Terminal())
	assert.True(t, secondfactor.StateFailed.Terminal())
	assert.True(t, secondfactor.StateRetryLimitExceeded.Terminal())
	assert.False(t, secondfactor.StateNeedsSetup.Terminal())
	assert.False(t, secondfactor.StateAwaitingCode.Terminal())
	assert.False(t, secondfactor.StateNew.Terminal())
}
