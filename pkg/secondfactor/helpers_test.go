package secondfactor_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/twofa/pkg/secondfactor"
	"github.com/dmitrymomot/twofa/pkg/totp"
)

// 3,000,000 / 30 = step 100000.
var fixedNow = time.Unix(3_000_000, 0)

type countingAuth struct {
	*totp.Engine

	mu    sync.Mutex
	calls int
}

func newCountingAuth() *countingAuth {
	return &countingAuth{Engine: totp.NewEngine(
		totp.WithClock(func() time.Time { return fixedNow }),
		totp.WithSecretLength(16),
	)}
}

func (a *countingAuth) Verify(secret, code string) (bool, error) {
	a.mu.Lock()
	a.calls++
	a.mu.Unlock()
	return a.Engine.Verify(secret, code)
}

func (a *countingAuth) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

func currentCode(t *testing.T, secret string) string {
	t.Helper()
	code, err := totp.ComputeCode(secret, totp.TimeStep(fixedNow))
	require.NoError(t, err)
	return code
}

// wrongCode returns a six digit code outside the accepted window.
func wrongCode(t *testing.T, secret string) string {
	t.Helper()
	window := map[string]bool{}
	step := totp.TimeStep(fixedNow)
	for i := step - 1; i <= step+1; i++ {
		code, err := totp.ComputeCode(secret, i)
		require.NoError(t, err)
		window[code] = true
	}
	for n := 0; ; n++ {
		if c := fmt.Sprintf("%06d", n); !window[c] {
			return c
		}
	}
}

type flakyBackend struct {
	*secondfactor.MemoryBackend

	mu        sync.Mutex
	getErr    error
	commitErr error
	gets      int
	getAlls   int
}

func newFlakyBackend() *flakyBackend {
	return &flakyBackend{MemoryBackend: secondfactor.NewMemoryBackend()}
}

func (b *flakyBackend) FailGet(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.getErr = err
}

func (b *flakyBackend) FailCommit(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.commitErr = err
}

func (b *flakyBackend) Get(ctx context.Context, account, key string) (string, bool, error) {
	b.mu.Lock()
	b.gets++
	err := b.getErr
	b.mu.Unlock()
	if err != nil {
		return "", false, err
	}
	return b.MemoryBackend.Get(ctx, account, key)
}

func (b *flakyBackend) GetAll(ctx context.Context, account string) (map[string]string, error) {
	b.mu.Lock()
	b.getAlls++
	err := b.getErr
	b.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return b.MemoryBackend.GetAll(ctx, account)
}

// Reads returns the number of single-key and whole-account reads.
func (b *flakyBackend) Reads() (gets, getAlls int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.gets, b.getAlls
}

func (b *flakyBackend) Commit(ctx context.Context, account string, changes map[string]string) error {
	b.mu.Lock()
	err := b.commitErr
	b.mu.Unlock()
	if err != nil {
		return err
	}
	return b.MemoryBackend.Commit(ctx, account, changes)
}

func seed(t *testing.T, store secondfactor.OptionStore, account string, options map[string]string) {
	t.Helper()
	ctx := context.Background()
	for k, v := range options {
		require.NoError(t, store.SetOption(ctx, account, k, v))
	}
	require.NoError(t, store.SaveOptions(ctx, account))
}

func loadState(t *testing.T, store secondfactor.OptionStore, account string) secondfactor.AccountState {
	t.Helper()
	state, err := secondfactor.LoadState(context.Background(), store, account)
	require.NoError(t, err)
	return state
}

// stagingOnlyStore hides the batch methods of a StagedStore and can fail
// SetOption for one key.
type stagingOnlyStore struct {
	next    *secondfactor.StagedStore
	failKey string
}

func (s *stagingOnlyStore) GetOption(ctx context.Context, account, key string) (string, bool, error) {
	return s.next.GetOption(ctx, account, key)
}

func (s *stagingOnlyStore) SetOption(ctx context.Context, account, key, value string) error {
	if key == s.failKey {
		return errors.New("value rejected")
	}
	return s.next.SetOption(ctx, account, key, value)
}

func (s *stagingOnlyStore) SaveOptions(ctx context.Context, account string) error {
	return s.next.SaveOptions(ctx, account)
}

func (s *stagingOnlyStore) Discard(account string) {
	s.next.Discard(account)
}
