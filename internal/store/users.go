package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/oldtora/ppshiftsbot/internal/domain"
)

// CreateUser creates a user row after key activation and returns its id.
func (r *SQLiteRepo) CreateUser(ctx context.Context, telegramID, keyID int64, phone string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (telegram_id, key_id, phone, created_at)
		VALUES (?, ?, ?, ?)`,
		telegramID, keyID, phone, time.Now().UTC().Unix(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UserByTelegramID returns a user by their Telegram id.
func (r *SQLiteRepo) UserByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, telegram_id, key_id, person, phone, created_at
		FROM users
		WHERE telegram_id = ?`,
		telegramID,
	)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// AllUsers returns every activated user ordered by id.
func (r *SQLiteRepo) AllUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, telegram_id, key_id, person, phone, created_at
		FROM users
		ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u       domain.User
		person  sql.NullString
		created int64
	)
	if err := row.Scan(&u.ID, &u.TelegramID, &u.KeyID, &person, &u.Phone, &created); err != nil {
		return nil, err
	}
	u.Person = person.String
	u.CreatedAt = time.Unix(created, 0).UTC()
	return &u, nil
}

// SetUserPerson binds a roster person name to the user.
func (r *SQLiteRepo) SetUserPerson(ctx context.Context, userID int64, person string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET person = ? WHERE id = ?`, person, userID)
	return err
}

// ResetUserPerson clears the user's person binding.
func (r *SQLiteRepo) ResetUserPerson(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET person = NULL WHERE id = ?`, userID)
	return err
}

// DeleteUserByTelegramID removes the user together with their notification
// settings and sent-reminder history. Returns false when no such user exists.
func (r *SQLiteRepo) DeleteUserByTelegramID(ctx context.Context, telegramID int64) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}

	var userID int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM users WHERE telegram_id = ?`, telegramID).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		_ = tx.Rollback()
		return false, nil
	}
	if err != nil {
		_ = tx.Rollback()
		return false, err
	}

	for _, q := range []string{
		`DELETE FROM notification_sent WHERE user_id = ?`,
		`DELETE FROM notification_settings WHERE user_id = ?`,
		`DELETE FROM users WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, userID); err != nil {
			_ = tx.Rollback()
			return false, err
		}
	}
	return true, tx.Commit()
}
