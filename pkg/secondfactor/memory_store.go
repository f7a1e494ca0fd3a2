package secondfactor

import (
	"context"
	"maps"
	"sync"
)

// MemoryBackend keeps options in process memory. Useful for tests and
// single-instance deployments that accept losing enrolments on restart.
type MemoryBackend struct {
	mu      sync.RWMutex
	options map[string]map[string]string
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{options: make(map[string]map[string]string)}
}

// NewMemoryStore returns a StagedStore over a fresh MemoryBackend.
func NewMemoryStore() *StagedStore {
	return NewStagedStore(NewMemoryBackend())
}

func (b *MemoryBackend) Get(_ context.Context, account, key string) (string, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.options[account][key]
	return v, ok, nil
}

func (b *MemoryBackend) GetAll(_ context.Context, account string) (map[string]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	opts := maps.Clone(b.options[account])
	if opts == nil {
		opts = make(map[string]string)
	}
	return opts, nil
}

func (b *MemoryBackend) Commit(_ context.Context, account string, changes map[string]string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	opts := b.options[account]
	if opts == nil {
		opts = make(map[string]string, len(changes))
		b.options[account] = opts
	}
	for k, v := range changes {
		if v == "" {
			delete(opts, k)
			continue
		}
		opts[k] = v
	}
	if len(opts) == 0 {
		delete(b.options, account)
	}
	return nil
}

// Snapshot returns a copy of the committed options for account.
func (b *MemoryBackend) Snapshot(account string) map[string]string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return maps.Clone(b.options[account])
}
