package secondfactor

import (
	"context"
	"time"

	"github.com/dmitrymomot/twofa/pkg/cache"
)

// State is a login attempt state.
type State string

const (
	StateNew                State = "new"
	StateNeedsSetup         State = "needs_setup"
	StateAwaitingCode       State = "awaiting_code"
	StatePassed             State = "passed"
	StateFailed             State = "failed"
	StateRetryLimitExceeded State = "retry_limit_exceeded"
)

func (s State) Name() string { return string(s) }

// Terminal reports whether the attempt accepts no more tokens.
func (s State) Terminal() bool {
	switch s {
	case StatePassed, StateFailed, StateRetryLimitExceeded:
		return true
	}
	return false
}

// LoginAttempt is the caller-owned record of one second-factor login. It is
// threaded through Continue and may be persisted between requests.
type LoginAttempt struct {
	ID           string `json:"id"`
	Account      string `json:"account"`
	State        State  `json:"state"`
	FailureCount int    `json:"failure_count"`
	MaxRetries   int    `json:"max_retries"`
}

// AttemptStore parks login attempts between requests.
type AttemptStore interface {
	SaveAttempt(ctx context.Context, attempt *LoginAttempt) error
	LoadAttempt(ctx context.Context, id string) (*LoginAttempt, error)
	DeleteAttempt(ctx context.Context, id string) error
}

// MemoryAttemptStore keeps attempts in a bounded TTL cache. It also
// implements AttemptLocker for single-process deployments.
type MemoryAttemptStore struct {
	attempts *cache.TTLCache[string, LoginAttempt]
	locks    *KeyedMutex
}

// NewMemoryAttemptStore holds up to capacity attempts, each for ttl after
// its last save.
func NewMemoryAttemptStore(capacity int, ttl time.Duration, opts ...cache.Option[string, LoginAttempt]) *MemoryAttemptStore {
	return &MemoryAttemptStore{
		attempts: cache.New(capacity, ttl, opts...),
		locks:    NewKeyedMutex(),
	}
}

func (s *MemoryAttemptStore) LockAttempt(ctx context.Context, id string) (func(), error) {
	return s.locks.LockAttempt(ctx, id)
}

func (s *MemoryAttemptStore) SaveAttempt(_ context.Context, attempt *LoginAttempt) error {
	if attempt == nil || attempt.ID == "" {
		return ErrAttemptNotFound
	}
	s.attempts.Put(attempt.ID, *attempt)
	return nil
}

func (s *MemoryAttemptStore) LoadAttempt(_ context.Context, id string) (*LoginAttempt, error) {
	attempt, ok := s.attempts.Get(id)
	if !ok {
		return nil, ErrAttemptNotFound
	}
	return &attempt, nil
}

func (s *MemoryAttemptStore) DeleteAttempt(_ context.Context, id string) error {
	s.attempts.Remove(id)
	return nil
}

// Sweep drops expired attempts.
func (s *MemoryAttemptStore) Sweep() int {
	return s.attempts.Sweep()
}
