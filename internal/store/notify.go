package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/oldtora/ppshiftsbot/internal/domain"
)

// NotificationSettings returns the user's reminder settings.
func (r *SQLiteRepo) NotificationSettings(ctx context.Context, userID int64) (*domain.NotificationSettings, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT user_id, hour, minute, enabled
		FROM notification_settings
		WHERE user_id = ?`,
		userID,
	)

	var (
		s          domain.NotificationSettings
		enabledInt int
	)
	if err := row.Scan(&s.UserID, &s.Hour, &s.Minute, &enabledInt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.Enabled = enabledInt != 0
	return &s, nil
}

// SetNotificationSettings upserts the user's reminder time and enabled flag.
func (r *SQLiteRepo) SetNotificationSettings(ctx context.Context, s domain.NotificationSettings) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notification_settings (user_id, hour, minute, enabled)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			hour    = excluded.hour,
			minute  = excluded.minute,
			enabled = excluded.enabled`,
		s.UserID, s.Hour, s.Minute, boolToInt(s.Enabled),
	)
	return err
}

// UsersWithNotificationsEnabled returns every enabled, person-bound user with
// their reminder time. Users without a person binding have nothing to be
// reminded about and are excluded.
func (r *SQLiteRepo) UsersWithNotificationsEnabled(ctx context.Context) ([]domain.NotifyTarget, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT u.id, u.telegram_id, u.person, n.hour, n.minute
		FROM users u
		JOIN notification_settings n ON u.id = n.user_id
		WHERE n.enabled = 1 AND u.person IS NOT NULL AND u.person != ''`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var targets []domain.NotifyTarget
	for rows.Next() {
		var t domain.NotifyTarget
		if err := rows.Scan(&t.UserID, &t.TelegramID, &t.Person, &t.Hour, &t.Minute); err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

// WasNotified reports whether a reminder was already sent to the user for the
// given target date.
func (r *SQLiteRepo) WasNotified(ctx context.Context, userID int64, targetDate string) (bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT 1 FROM notification_sent
		WHERE user_id = ? AND target_date = ?`,
		userID, targetDate,
	)
	var one int
	if err := row.Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// MarkNotified records a sent reminder. INSERT OR REPLACE keeps it safe to
// call twice for the same (user, target date).
func (r *SQLiteRepo) MarkNotified(ctx context.Context, userID int64, targetDate string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO notification_sent (user_id, target_date, sent_at)
		VALUES (?, ?, ?)`,
		userID, targetDate, time.Now().UTC().Unix(),
	)
	return err
}
