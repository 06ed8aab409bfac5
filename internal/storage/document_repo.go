package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// DocumentRepo holds remote copies of player state, one row per key.
type DocumentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// Get returns nil, nil when nothing has been written for the player.
func (r *DocumentRepo) Get(ctx context.Context, playerID string) (*Document, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT key, value, updated_at
		FROM documents
		WHERE player_id = ?
		ORDER BY key
	`, playerID)
	if err != nil {
		return nil, fmt.Errorf("document get: %w", err)
	}
	defer rows.Close()

	doc := &Document{PlayerID: playerID, Values: map[string]json.RawMessage{}}
	for rows.Next() {
		var (
			key, value string
			updated    time.Time
		)
		if err := rows.Scan(&key, &value, &updated); err != nil {
			return nil, fmt.Errorf("document scan: %w", err)
		}
		doc.Values[key] = json.RawMessage(value)
		if updated.After(doc.UpdatedAt) {
			doc.UpdatedAt = updated
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("document rows: %w", err)
	}
	if len(doc.Values) == 0 {
		return nil, nil
	}
	return doc, nil
}

// Merge writes each given key, replacing whatever was stored for it.
// Keys absent from values are left untouched.
func (r *DocumentRepo) Merge(ctx context.Context, playerID string, values map[string]json.RawMessage, now time.Time) error {
	return WithTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, k := range sortedKeys(values) {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO documents (player_id, key, value, updated_at) VALUES (?, ?, ?, ?)
				ON CONFLICT(player_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
			`, playerID, k, string(values[k]), now)
			if err != nil {
				return fmt.Errorf("document merge %q: %w", k, err)
			}
		}
		return nil
	})
}

func (r *DocumentRepo) DeletePlayer(ctx context.Context, playerID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE player_id = ?`, playerID); err != nil {
		return fmt.Errorf("document delete: %w", err)
	}
	return nil
}
