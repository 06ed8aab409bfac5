package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// KVRepo stores whole-value JSON blobs under string keys. Every write
// replaces the previous value for the key.
type KVRepo struct {
	db *sql.DB
}

func NewKVRepo(db *sql.DB) *KVRepo {
	return &KVRepo{db: db}
}

// Get returns nil, nil when the key does not exist.
func (r *KVRepo) Get(ctx context.Context, key string) (json.RawMessage, error) {
	row := r.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key)

	var v string
	if err := row.Scan(&v); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("kv get %q: %w", key, err)
	}
	return json.RawMessage(v), nil
}

func (r *KVRepo) Put(ctx context.Context, key string, value json.RawMessage) error {
	return putKV(ctx, r.db, key, value, time.Now().UTC())
}

// PutMany writes all values in one transaction.
func (r *KVRepo) PutMany(ctx context.Context, values map[string]json.RawMessage) error {
	now := time.Now().UTC()
	return WithTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, k := range sortedKeys(values) {
			if err := putKV(ctx, tx, k, values[k], now); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *KVRepo) Delete(ctx context.Context, keys ...string) error {
	return WithTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, k := range keys {
			if _, err := tx.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, k); err != nil {
				return fmt.Errorf("kv delete %q: %w", k, err)
			}
		}
		return nil
	})
}

func (r *KVRepo) List(ctx context.Context) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value, updated_at FROM kv ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("kv list: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e Entry
			v string
		)
		if err := rows.Scan(&e.Key, &v, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("kv list scan: %w", err)
		}
		e.Value = json.RawMessage(v)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("kv list rows: %w", err)
	}
	return out, nil
}

// Snapshot returns the current value of every key.
func (r *KVRepo) Snapshot(ctx context.Context) (map[string]json.RawMessage, error) {
	entries, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]json.RawMessage, len(entries))
	for _, e := range entries {
		out[e.Key] = e.Value
	}
	return out, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func putKV(ctx context.Context, db execer, key string, value json.RawMessage, now time.Time) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, string(value), now)
	if err != nil {
		return fmt.Errorf("kv put %q: %w", key, err)
	}
	return nil
}

func sortedKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
