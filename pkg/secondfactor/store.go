package secondfactor

import (
	"context"
	"errors"
	"maps"
	"strconv"
	"sync"
)

// Option keys persisted per account.
const (
	KeySecret           = "totp_secret"
	KeySetupComplete    = "totp_setup_complete"
	KeyRescue1          = "totp_rescue_1"
	KeyRescue2          = "totp_rescue_2"
	KeyRescue3          = "totp_rescue_3"
	KeyRecoveryMailSent = "totp_recovery_mail_sent"
)

// RescueCodeCount is the number of rescue codes issued with every secret.
const RescueCodeCount = 3

var rescueKeys = [RescueCodeCount]string{KeyRescue1, KeyRescue2, KeyRescue3}

// OptionStore is a per-account key-value store. SetOption stages a change
// (an empty value deletes the key) that becomes durable on SaveOptions;
// GetOption observes staged changes.
type OptionStore interface {
	GetOption(ctx context.Context, account, key string) (string, bool, error)
	SetOption(ctx context.Context, account, key, value string) error
	SaveOptions(ctx context.Context, account string) error
}

// BatchStore is implemented by option stores that can read all options of
// an account at once and apply a change set atomically without going
// through the shared staging area. The flow prefers it when available.
type BatchStore interface {
	LoadOptions(ctx context.Context, account string) (map[string]string, error)
	ApplyOptions(ctx context.Context, account string, changes map[string]string) error
}

// Backend is the durable half of an OptionStore. Commit must apply all
// changes for one account atomically; an empty value deletes the key.
// GetAll returns a consistent view of every option of account.
type Backend interface {
	Get(ctx context.Context, account, key string) (string, bool, error)
	GetAll(ctx context.Context, account string) (map[string]string, error)
	Commit(ctx context.Context, account string, changes map[string]string) error
}

// StagedStore implements OptionStore on top of a Backend by buffering
// SetOption calls until SaveOptions.
type StagedStore struct {
	backend Backend
	mu      sync.Mutex
	staged  map[string]map[string]string
}

func NewStagedStore(backend Backend) *StagedStore {
	return &StagedStore{
		backend: backend,
		staged:  make(map[string]map[string]string),
	}
}

func (s *StagedStore) GetOption(ctx context.Context, account, key string) (string, bool, error) {
	s.mu.Lock()
	value, ok := s.staged[account][key]
	s.mu.Unlock()
	if ok {
		return value, value != "", nil
	}
	return s.backend.Get(ctx, account, key)
}

func (s *StagedStore) SetOption(_ context.Context, account, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.staged[account] == nil {
		s.staged[account] = make(map[string]string)
	}
	s.staged[account][key] = value
	return nil
}

// SaveOptions commits staged changes. Staged changes are dropped whether or
// not the commit succeeds.
func (s *StagedStore) SaveOptions(ctx context.Context, account string) error {
	s.mu.Lock()
	changes := s.staged[account]
	delete(s.staged, account)
	s.mu.Unlock()

	if len(changes) == 0 {
		return nil
	}
	return s.backend.Commit(ctx, account, changes)
}

// Discard drops staged changes for account.
func (s *StagedStore) Discard(account string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.staged, account)
}

// LoadOptions reads the committed options with one backend call and
// overlays anything staged for account.
func (s *StagedStore) LoadOptions(ctx context.Context, account string) (map[string]string, error) {
	committed, err := s.backend.GetAll(ctx, account)
	if err != nil {
		return nil, err
	}
	opts := maps.Clone(committed)
	if opts == nil {
		opts = make(map[string]string)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range s.staged[account] {
		if v == "" {
			delete(opts, k)
			continue
		}
		opts[k] = v
	}
	return opts, nil
}

// ApplyOptions commits changes directly. Changes staged by other callers
// stay staged and are not committed.
func (s *StagedStore) ApplyOptions(ctx context.Context, account string, changes map[string]string) error {
	if len(changes) == 0 {
		return nil
	}
	return s.backend.Commit(ctx, account, maps.Clone(changes))
}

// AccountState is the typed view of an account's second-factor options.
type AccountState struct {
	Secret           string
	SetupComplete    bool
	Rescue           [RescueCodeCount]string
	RecoveryMailSent bool
}

// RescueCodes returns the non-empty rescue codes.
func (s AccountState) RescueCodes() []string {
	codes := make([]string, 0, RescueCodeCount)
	for _, c := range s.Rescue {
		if c != "" {
			codes = append(codes, c)
		}
	}
	return codes
}

func (s AccountState) HasRescueCodes() bool {
	return len(s.RescueCodes()) == RescueCodeCount
}

// stateKeys are the options that make up an AccountState.
var stateKeys = [...]string{KeySecret, KeySetupComplete, KeyRecoveryMailSent, KeyRescue1, KeyRescue2, KeyRescue3}

// LoadState reads the account's options. A partially populated rescue set
// or an unreadable value yields ErrCorruptState; other store errors are
// joined with ErrStorePersistence.
func LoadState(ctx context.Context, store OptionStore, account string) (AccountState, error) {
	opts, err := loadOptions(ctx, store, account)
	if err != nil {
		return AccountState{}, storeError(err)
	}

	state := AccountState{Secret: opts[KeySecret]}
	if state.SetupComplete, err = parseBool(opts[KeySetupComplete]); err != nil {
		return AccountState{}, err
	}
	if state.RecoveryMailSent, err = parseBool(opts[KeyRecoveryMailSent]); err != nil {
		return AccountState{}, err
	}
	for i, key := range rescueKeys {
		state.Rescue[i] = opts[key]
	}

	if n := len(state.RescueCodes()); n != 0 && n != RescueCodeCount {
		return AccountState{}, ErrCorruptState
	}
	return state, nil
}

func parseBool(v string) (bool, error) {
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.Join(ErrCorruptState, err)
	}
	return b, nil
}

// stateChanges returns every field of state as an option change set.
func stateChanges(state AccountState) map[string]string {
	changes := map[string]string{
		KeySecret:           state.Secret,
		KeySetupComplete:    formatBool(state.SetupComplete),
		KeyRecoveryMailSent: formatBool(state.RecoveryMailSent),
	}
	for i, key := range rescueKeys {
		changes[key] = state.Rescue[i]
	}
	return changes
}

// saveState replaces the account's options with state in one commit.
func saveState(ctx context.Context, store OptionStore, account string, state AccountState) error {
	return storeError(applyOptions(ctx, store, account, stateChanges(state)))
}

// persistOption commits a single change.
func persistOption(ctx context.Context, store OptionStore, account, key, value string) error {
	return storeError(applyOptions(ctx, store, account, map[string]string{key: value}))
}

// discarder drops staged changes. StagedStore implements it.
type discarder interface {
	Discard(account string)
}

func loadOptions(ctx context.Context, store OptionStore, account string) (map[string]string, error) {
	if bs, ok := store.(BatchStore); ok {
		return bs.LoadOptions(ctx, account)
	}

	opts := make(map[string]string, len(stateKeys))
	for _, key := range stateKeys {
		v, ok, err := store.GetOption(ctx, account, key)
		if err != nil {
			return nil, err
		}
		if ok && v != "" {
			opts[key] = v
		}
	}
	return opts, nil
}

// applyOptions commits changes as one unit. Stores without BatchStore go
// through SetOption and SaveOptions; a failed SetOption discards whatever
// was staged so a later save cannot commit half of the set.
func applyOptions(ctx context.Context, store OptionStore, account string, changes map[string]string) error {
	if bs, ok := store.(BatchStore); ok {
		return bs.ApplyOptions(ctx, account, changes)
	}

	for k, v := range changes {
		if err := store.SetOption(ctx, account, k, v); err != nil {
			if d, ok := store.(discarder); ok {
				d.Discard(account)
			}
			return err
		}
	}
	return store.SaveOptions(ctx, account)
}

// storeError joins err with ErrStorePersistence unless it already reports
// corrupt state.
func storeError(err error) error {
	if err == nil || errors.Is(err, ErrCorruptState) || errors.Is(err, ErrStorePersistence) {
		return err
	}
	return errors.Join(ErrStorePersistence, err)
}

// Flags are stored as "1"; false deletes the key.
func formatBool(b bool) string {
	if b {
		return "1"
	}
	return ""
}
