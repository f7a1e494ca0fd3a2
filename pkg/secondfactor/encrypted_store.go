package secondfactor

import (
	"context"
	"errors"

	"github.com/dmitrymomot/twofa/pkg/totp"
)

// EncryptedStore wraps an OptionStore and keeps the master secret and the
// rescue codes encrypted at rest. Other options pass through unchanged.
type EncryptedStore struct {
	next OptionStore
	key  []byte
}

var sensitiveKeys = map[string]struct{}{
	KeySecret:  {},
	KeyRescue1: {},
	KeyRescue2: {},
	KeyRescue3: {},
}

// NewEncryptedStore returns a decorator encrypting with key, which must be
// totp.AESKeySize bytes.
func NewEncryptedStore(next OptionStore, key []byte) (*EncryptedStore, error) {
	if len(key) != totp.AESKeySize {
		return nil, totp.ErrInvalidEncryptionKeyLength
	}
	return &EncryptedStore{next: next, key: key}, nil
}

func (s *EncryptedStore) GetOption(ctx context.Context, account, key string) (string, bool, error) {
	value, ok, err := s.next.GetOption(ctx, account, key)
	if err != nil || !ok || value == "" {
		return value, ok, err
	}
	if _, sensitive := sensitiveKeys[key]; !sensitive {
		return value, ok, nil
	}

	plain, err := s.decrypt(account, value)
	if err != nil {
		return "", false, err
	}
	return plain, true, nil
}

// A value that does not decrypt under the configured key is unreadable
// state, not a store outage.
func (s *EncryptedStore) decrypt(account, value string) (string, error) {
	plain, err := totp.DecryptSecret(value, s.key, account)
	if err != nil {
		return "", errors.Join(ErrCorruptState, err)
	}
	return plain, nil
}

func (s *EncryptedStore) encrypt(account, key, value string) (string, error) {
	if _, sensitive := sensitiveKeys[key]; !sensitive || value == "" {
		return value, nil
	}
	return totp.EncryptSecret(value, s.key, account)
}

func (s *EncryptedStore) SetOption(ctx context.Context, account, key, value string) error {
	encrypted, err := s.encrypt(account, key, value)
	if err != nil {
		return err
	}
	return s.next.SetOption(ctx, account, key, encrypted)
}

func (s *EncryptedStore) SaveOptions(ctx context.Context, account string) error {
	return s.next.SaveOptions(ctx, account)
}

func (s *EncryptedStore) Discard(account string) {
	if d, ok := s.next.(discarder); ok {
		d.Discard(account)
	}
}

func (s *EncryptedStore) LoadOptions(ctx context.Context, account string) (map[string]string, error) {
	opts, err := loadOptions(ctx, s.next, account)
	if err != nil {
		return nil, err
	}
	for key, value := range opts {
		if _, sensitive := sensitiveKeys[key]; !sensitive || value == "" {
			continue
		}
		if opts[key], err = s.decrypt(account, value); err != nil {
			return nil, err
		}
	}
	return opts, nil
}

// ApplyOptions encrypts the whole change set before anything reaches the
// wrapped store.
func (s *EncryptedStore) ApplyOptions(ctx context.Context, account string, changes map[string]string) error {
	encrypted := make(map[string]string, len(changes))
	for key, value := range changes {
		v, err := s.encrypt(account, key, value)
		if err != nil {
			return err
		}
		encrypted[key] = v
	}
	return applyOptions(ctx, s.next, account, encrypted)
}
