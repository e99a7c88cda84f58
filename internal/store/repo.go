package store

import (
	"context"
	"errors"

	"github.com/oldtora/ppshiftsbot/internal/domain"
)

// ErrNotFound is returned by point lookups when no row matches.
var ErrNotFound = errors.New("not found")

// Repo defines storage operations for activation keys, users, the shift
// roster, notification settings and the sent-reminder ledger.
type Repo interface {
	// Activation keys.
	ActivationKeyByText(ctx context.Context, key string) (*domain.ActivationKey, error)
	MarkKeyUsed(ctx context.Context, id int64) error
	AddActivationKeys(ctx context.Context, keys []string) error
	AvailableKeys(ctx context.Context, limit int) ([]string, error)

	// Users.
	CreateUser(ctx context.Context, telegramID, keyID int64, phone string) (int64, error)
	UserByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)
	AllUsers(ctx context.Context) ([]domain.User, error)
	SetUserPerson(ctx context.Context, userID int64, person string) error
	ResetUserPerson(ctx context.Context, userID int64) error
	DeleteUserByTelegramID(ctx context.Context, telegramID int64) (bool, error)

	// Roster. ReplaceShifts swaps the whole roster in one transaction and
	// reports how many rows were stored and how many carry an anomalous date.
	ReplaceShifts(ctx context.Context, rows []domain.RosterRow, defaultYear int) (stored, anomalous int, err error)
	ShiftsByPerson(ctx context.Context, person string) ([]domain.Shift, error)
	ShiftsForDate(ctx context.Context, dateKey string) ([]domain.Shift, error)
	DistinctPersons(ctx context.Context) ([]string, error)

	// Notification settings.
	NotificationSettings(ctx context.Context, userID int64) (*domain.NotificationSettings, error)
	SetNotificationSettings(ctx context.Context, s domain.NotificationSettings) error
	UsersWithNotificationsEnabled(ctx context.Context) ([]domain.NotifyTarget, error)

	// Sent-reminder ledger, keyed by (user, target date).
	WasNotified(ctx context.Context, userID int64, targetDate string) (bool, error)
	MarkNotified(ctx context.Context, userID int64, targetDate string) error

	Close() error
}
