package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	selectOption  = `SELECT value FROM twofa_options WHERE account = $1 AND key = $2`
	selectOptions = `SELECT key, value FROM twofa_options WHERE account = $1`
	upsertOption  = `INSERT INTO twofa_options (account, key, value, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (account, key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	deleteOption = `DELETE FROM twofa_options WHERE account = $1 AND key = $2`
)

// OptionBackend stores options in the twofa_options table, one row per
// (account, key). It implements secondfactor.Backend.
type OptionBackend struct {
	pool *pgxpool.Pool
}

func NewOptionBackend(pool *pgxpool.Pool) *OptionBackend {
	return &OptionBackend{pool: pool}
}

func (b *OptionBackend) Get(ctx context.Context, account, key string) (string, bool, error) {
	var value string
	err := b.pool.QueryRow(ctx, selectOption, account, key).Scan(&value)
	if IsNotFoundError(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// GetAll reads every row of account in one query.
func (b *OptionBackend) GetAll(ctx context.Context, account string) (map[string]string, error) {
	rows, err := b.pool.Query(ctx, selectOptions, account)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	opts := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		opts[key] = value
	}
	return opts, rows.Err()
}

// Commit applies all changes in one transaction.
func (b *OptionBackend) Commit(ctx context.Context, account string, changes map[string]string) error {
	return pgx.BeginFunc(ctx, b.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for k, v := range changes {
			if v == "" {
				batch.Queue(deleteOption, account, k)
				continue
			}
			batch.Queue(upsertOption, account, k, v)
		}
		return errors.Join(tx.SendBatch(ctx, batch).Close())
	})
}
