package secondfactor

import (
	"context"
	"errors"
	"sync"
)

// AttemptLocker serializes Continue calls on one login attempt. Without
// it, concurrent submissions read the same FailureCount and overwrite each
// other, so more than MaxRetries codes get verified. The returned unlock
// func is safe to call more than once.
type AttemptLocker interface {
	LockAttempt(ctx context.Context, id string) (unlock func(), err error)
}

// KeyedMutex is an in-process AttemptLocker. Entries exist only while some
// caller holds or waits for the key.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	held chan struct{}
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyedLock)}
}

// LockAttempt blocks until id is free or ctx is done.
func (m *KeyedMutex) LockAttempt(ctx context.Context, id string) (func(), error) {
	m.mu.Lock()
	l := m.locks[id]
	if l == nil {
		l = &keyedLock{held: make(chan struct{}, 1)}
		m.locks[id] = l
	}
	l.refs++
	m.mu.Unlock()

	select {
	case l.held <- struct{}{}:
	case <-ctx.Done():
		m.release(id, l)
		return nil, errors.Join(ErrAttemptBusy, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-l.held
			m.release(id, l)
		})
	}, nil
}

func (m *KeyedMutex) release(id string, l *keyedLock) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l.refs--; l.refs == 0 {
		delete(m.locks, id)
	}
}

// Len returns the number of keys currently held or awaited.
func (m *KeyedMutex) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}
