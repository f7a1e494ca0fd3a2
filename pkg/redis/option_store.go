package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// OptionBackend stores each account's options in one hash,
// {prefix}options:{account}. It implements secondfactor.Backend.
type OptionBackend struct {
	db     redis.UniversalClient
	prefix string
}

func NewOptionBackend(client redis.UniversalClient, prefix string) *OptionBackend {
	return &OptionBackend{db: client, prefix: prefix}
}

func (b *OptionBackend) key(account string) string {
	return b.prefix + "options:" + account
}

func (b *OptionBackend) Get(ctx context.Context, account, key string) (string, bool, error) {
	v, err := b.db.HGet(ctx, b.key(account), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// GetAll reads the whole hash with one HGETALL.
func (b *OptionBackend) GetAll(ctx context.Context, account string) (map[string]string, error) {
	return b.db.HGetAll(ctx, b.key(account)).Result()
}

// Commit applies all changes in one MULTI/EXEC block.
func (b *OptionBackend) Commit(ctx context.Context, account string, changes map[string]string) error {
	var (
		set = make([]any, 0, len(changes)*2)
		del = make([]string, 0, len(changes))
	)
	for k, v := range changes {
		if v == "" {
			del = append(del, k)
			continue
		}
		set = append(set, k, v)
	}

	key := b.key(account)
	_, err := b.db.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(del) > 0 {
			pipe.HDel(ctx, key, del...)
		}
		if len(set) > 0 {
			pipe.HSet(ctx, key, set...)
		}
		return nil
	})
	return err
}
