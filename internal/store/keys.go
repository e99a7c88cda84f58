package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/oldtora/ppshiftsbot/internal/domain"
)

// ActivationKeyByText looks up an activation key by its text.
func (r *SQLiteRepo) ActivationKeyByText(ctx context.Context, key string) (*domain.ActivationKey, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, key_text, used, created_at
		FROM activation_keys
		WHERE key_text = ?`,
		strings.TrimSpace(key),
	)

	var (
		k       domain.ActivationKey
		usedInt int
		created int64
	)
	if err := row.Scan(&k.ID, &k.Key, &usedInt, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	k.Used = usedInt != 0
	k.CreatedAt = time.Unix(created, 0).UTC()
	return &k, nil
}

// MarkKeyUsed marks an activation key as redeemed.
func (r *SQLiteRepo) MarkKeyUsed(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE activation_keys SET used = 1 WHERE id = ?`, id)
	return err
}

// AddActivationKeys inserts new keys, silently skipping duplicates.
func (r *SQLiteRepo) AddActivationKeys(ctx context.Context, keys []string) error {
	now := time.Now().UTC().Unix()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO activation_keys (key_text, used, created_at)
			VALUES (?, 0, ?)`,
			strings.TrimSpace(k), now,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// AvailableKeys returns up to limit unused key texts in insertion order.
func (r *SQLiteRepo) AvailableKeys(ctx context.Context, limit int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT key_text FROM activation_keys
		WHERE used = 0
		ORDER BY id
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
