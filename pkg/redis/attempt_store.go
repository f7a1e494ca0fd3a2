package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/twofa/pkg/secondfactor"
)

const (
	attemptLockTTL  = 10 * time.Second
	attemptLockWait = 5 * time.Second
	attemptLockPoll = 20 * time.Millisecond
)

// releaseLock deletes the lock only if it still carries our token, so a
// holder whose lock expired cannot release someone else's.
var releaseLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// AttemptStore keeps login attempts as JSON strings that expire after ttl.
// Every save restarts the expiry. LockAttempt takes a SET NX lock shared by
// every process using the same redis, which implements
// secondfactor.AttemptLocker.
type AttemptStore struct {
	db     redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewAttemptStore(client redis.UniversalClient, prefix string, ttl time.Duration) *AttemptStore {
	return &AttemptStore{db: client, prefix: prefix, ttl: ttl}
}

func (s *AttemptStore) key(id string) string {
	return s.prefix + "attempt:" + id
}

func (s *AttemptStore) SaveAttempt(ctx context.Context, attempt *secondfactor.LoginAttempt) error {
	if attempt == nil || attempt.ID == "" {
		return secondfactor.ErrAttemptNotFound
	}
	payload, err := json.Marshal(attempt)
	if err != nil {
		return err
	}
	return s.db.Set(ctx, s.key(attempt.ID), payload, s.ttl).Err()
}

func (s *AttemptStore) LoadAttempt(ctx context.Context, id string) (*secondfactor.LoginAttempt, error) {
	payload, err := s.db.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, secondfactor.ErrAttemptNotFound
	}
	if err != nil {
		return nil, err
	}

	var attempt secondfactor.LoginAttempt
	if err := json.Unmarshal(payload, &attempt); err != nil {
		return nil, errors.Join(ErrCorruptAttempt, err)
	}
	return &attempt, nil
}

func (s *AttemptStore) DeleteAttempt(ctx context.Context, id string) error {
	return s.db.Del(ctx, s.key(id)).Err()
}

// LockAttempt polls for {prefix}attempt:{id}:lock until it is acquired,
// ctx is done or attemptLockWait passes. The lock expires on its own after
// attemptLockTTL if the holder dies.
func (s *AttemptStore) LockAttempt(ctx context.Context, id string) (func(), error) {
	key := s.key(id) + ":lock"
	token := uuid.NewString()

	wait, cancel := context.WithTimeout(ctx, attemptLockWait)
	defer cancel()
	ticker := time.NewTicker(attemptLockPoll)
	defer ticker.Stop()

	for {
		ok, err := s.db.SetNX(wait, key, token, attemptLockTTL).Result()
		switch {
		case ok:
			released := false
			return func() {
				if released {
					return
				}
				released = true
				_ = releaseLock.Run(context.WithoutCancel(ctx), s.db, []string{key}, token).Err()
			}, nil
		case err != nil && wait.Err() == nil:
			return nil, errors.Join(secondfactor.ErrStorePersistence, ErrAttemptLock, err)
		}

		select {
		case <-wait.Done():
			return nil, errors.Join(secondfactor.ErrAttemptBusy, wait.Err())
		case <-ticker.C:
		}
	}
}
