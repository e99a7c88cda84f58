package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oldtora/ppshiftsbot/internal/domain"
)

func newTestRepo(t *testing.T) *SQLiteRepo {
	t.Helper()
	repo, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "bot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestActivationKeyFlow(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	require.NoError(t, repo.AddActivationKeys(ctx, []string{"aaaa1111", "bbbb2222"}))
	// Duplicates are ignored, not an error.
	require.NoError(t, repo.AddActivationKeys(ctx, []string{"aaaa1111"}))

	keys, err := repo.AvailableKeys(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"aaaa1111", "bbbb2222"}, keys)

	k, err := repo.ActivationKeyByText(ctx, " aaaa1111 ")
	require.NoError(t, err)
	assert.False(t, k.Used)

	require.NoError(t, repo.MarkKeyUsed(ctx, k.ID))
	k, err = repo.ActivationKeyByText(ctx, "aaaa1111")
	require.NoError(t, err)
	assert.True(t, k.Used)

	keys, err = repo.AvailableKeys(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"bbbb2222"}, keys)

	_, err = repo.ActivationKeyByText(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	require.NoError(t, repo.AddActivationKeys(ctx, []string{"key1"}))
	k, err := repo.ActivationKeyByText(ctx, "key1")
	require.NoError(t, err)

	userID, err := repo.CreateUser(ctx, 42, k.ID, "+380001112233")
	require.NoError(t, err)

	u, err := repo.UserByTelegramID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, userID, u.ID)
	assert.Empty(t, u.Person)
	assert.Equal(t, "+380001112233", u.Phone)

	require.NoError(t, repo.SetUserPerson(ctx, userID, "John Smith"))
	u, err = repo.UserByTelegramID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "John Smith", u.Person)

	require.NoError(t, repo.ResetUserPerson(ctx, userID))
	u, err = repo.UserByTelegramID(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, u.Person)

	_, err = repo.UserByTelegramID(ctx, 77)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteUserCascades(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	require.NoError(t, repo.AddActivationKeys(ctx, []string{"key1"}))
	k, err := repo.ActivationKeyByText(ctx, "key1")
	require.NoError(t, err)
	userID, err := repo.CreateUser(ctx, 42, k.ID, "")
	require.NoError(t, err)
	require.NoError(t, repo.SetUserPerson(ctx, userID, "John Smith"))
	require.NoError(t, repo.SetNotificationSettings(ctx, domain.NotificationSettings{
		UserID: userID, Hour: 8, Minute: 0, Enabled: true,
	}))
	require.NoError(t, repo.MarkNotified(ctx, userID, "11-02-2025"))

	deleted, err := repo.DeleteUserByTelegramID(ctx, 42)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = repo.UserByTelegramID(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.NotificationSettings(ctx, userID)
	assert.ErrorIs(t, err, ErrNotFound)
	sent, err := repo.WasNotified(ctx, userID, "11-02-2025")
	require.NoError(t, err)
	assert.False(t, sent)

	deleted, err = repo.DeleteUserByTelegramID(ctx, 42)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestReplaceShifts_FullReplacement(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	stored, anomalous, err := repo.ReplaceShifts(ctx, []domain.RosterRow{
		{Date: "11-02", Person: "John Smith", ShiftType: "D", Location: "SK"},
		{Date: "2025-02-12", Person: "John Smith", ShiftType: "N", Location: "FD"},
	}, 2025)
	require.NoError(t, err)
	assert.Equal(t, 2, stored)
	assert.Zero(t, anomalous)

	shifts, err := repo.ShiftsForDate(ctx, "11-02-2025")
	require.NoError(t, err)
	require.Len(t, shifts, 1)
	assert.Equal(t, "D", shifts[0].ShiftType)

	// Second replace fully removes the first roster.
	stored, anomalous, err = repo.ReplaceShifts(ctx, []domain.RosterRow{
		{Date: "13.02.2025", Person: "Anna Brown", ShiftType: "M", Location: "MT"},
		{Date: "   ", Person: "Dropped Blank", ShiftType: "D", Location: "SK"},
		{Date: "when the moon is full", Person: "Anna Brown", ShiftType: "X", Location: "??"},
	}, 2025)
	require.NoError(t, err)
	assert.Equal(t, 2, stored)
	assert.Equal(t, 1, anomalous)

	shifts, err = repo.ShiftsForDate(ctx, "11-02-2025")
	require.NoError(t, err)
	assert.Empty(t, shifts)

	persons, err := repo.DistinctPersons(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Anna Brown"}, persons)

	// The unparseable date is kept verbatim and flagged as anomalous.
	shifts, err = repo.ShiftsForDate(ctx, "when the moon is full")
	require.NoError(t, err)
	require.Len(t, shifts, 1)
	assert.True(t, shifts[0].DateAnomalous())
}

func TestShiftsByPerson_ChronologicalOrder(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	_, _, err := repo.ReplaceShifts(ctx, []domain.RosterRow{
		{Date: "01-01-2026", Person: "John Smith", ShiftType: "D", Location: "SK"},
		{Date: "31-12-2025", Person: "John Smith", ShiftType: "N", Location: "FD"},
		{Date: "garbage", Person: "John Smith", ShiftType: "X", Location: "??"},
		{Date: "02-01-2025", Person: "John Smith", ShiftType: "M", Location: "MT"},
		{Date: "15-06-2025", Person: "Anna Brown", ShiftType: "D", Location: "SK"},
	}, 2025)
	require.NoError(t, err)

	shifts, err := repo.ShiftsByPerson(ctx, "John Smith")
	require.NoError(t, err)

	var dates []string
	for _, s := range shifts {
		dates = append(dates, s.Date)
	}
	// Lexical order of dd-mm-yyyy would put 01-01-2026 first; chronological
	// order must not. Anomalous dates go last.
	assert.Equal(t, []string{"02-01-2025", "31-12-2025", "01-01-2026", "garbage"}, dates)
}

func TestNotificationSettingsUpsert(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	require.NoError(t, repo.AddActivationKeys(ctx, []string{"key1"}))
	k, err := repo.ActivationKeyByText(ctx, "key1")
	require.NoError(t, err)
	userID, err := repo.CreateUser(ctx, 42, k.ID, "")
	require.NoError(t, err)

	_, err = repo.NotificationSettings(ctx, userID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.SetNotificationSettings(ctx, domain.NotificationSettings{
		UserID: userID, Hour: 8, Minute: 0, Enabled: true,
	}))
	s, err := repo.NotificationSettings(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 8, s.Hour)
	assert.True(t, s.Enabled)

	require.NoError(t, repo.SetNotificationSettings(ctx, domain.NotificationSettings{
		UserID: userID, Hour: 13, Minute: 30, Enabled: false,
	}))
	s, err = repo.NotificationSettings(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 13, s.Hour)
	assert.Equal(t, 30, s.Minute)
	assert.False(t, s.Enabled)
}

func TestUsersWithNotificationsEnabled_RequiresBinding(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	require.NoError(t, repo.AddActivationKeys(ctx, []string{"k1", "k2", "k3"}))
	mkUser := func(tgID int64, key string, person string, enabled bool) int64 {
		k, err := repo.ActivationKeyByText(ctx, key)
		require.NoError(t, err)
		id, err := repo.CreateUser(ctx, tgID, k.ID, "")
		require.NoError(t, err)
		if person != "" {
			require.NoError(t, repo.SetUserPerson(ctx, id, person))
		}
		require.NoError(t, repo.SetNotificationSettings(ctx, domain.NotificationSettings{
			UserID: id, Hour: 9, Minute: 0, Enabled: enabled,
		}))
		return id
	}

	// Only the bound, enabled user is a target: user 2 never picked a name
	// and user 3 turned notifications off.
	boundEnabled := mkUser(1, "k1", "John Smith", true)
	mkUser(2, "k2", "", true)
	mkUser(3, "k3", "Anna Brown", false)

	targets, err := repo.UsersWithNotificationsEnabled(ctx)
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, boundEnabled, targets[0].UserID)
	assert.Equal(t, "John Smith", targets[0].Person)
}

func TestDedupLedgerIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	require.NoError(t, repo.AddActivationKeys(ctx, []string{"k1", "k2"}))
	k1, err := repo.ActivationKeyByText(ctx, "k1")
	require.NoError(t, err)
	userA, err := repo.CreateUser(ctx, 42, k1.ID, "")
	require.NoError(t, err)
	k2, err := repo.ActivationKeyByText(ctx, "k2")
	require.NoError(t, err)
	userB, err := repo.CreateUser(ctx, 43, k2.ID, "")
	require.NoError(t, err)

	sent, err := repo.WasNotified(ctx, userA, "11-02-2025")
	require.NoError(t, err)
	assert.False(t, sent)

	require.NoError(t, repo.MarkNotified(ctx, userA, "11-02-2025"))
	require.NoError(t, repo.MarkNotified(ctx, userA, "11-02-2025")) // safe twice

	sent, err = repo.WasNotified(ctx, userA, "11-02-2025")
	require.NoError(t, err)
	assert.True(t, sent)

	// Other users and dates are unaffected.
	sent, err = repo.WasNotified(ctx, userB, "11-02-2025")
	require.NoError(t, err)
	assert.False(t, sent)
	sent, err = repo.WasNotified(ctx, userA, "12-02-2025")
	require.NoError(t, err)
	assert.False(t, sent)

	// Ledger rows belong to real users: an unknown user id is rejected by
	// the foreign key.
	assert.Error(t, repo.MarkNotified(ctx, 999, "11-02-2025"))
}

func TestReplaceShifts_AtomicUnderConcurrentReads(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	oldRoster := []domain.RosterRow{
		{Date: "11-02-2025", Person: "John Smith", ShiftType: "D", Location: "SK"},
		{Date: "11-02-2025", Person: "Anna Brown", ShiftType: "D", Location: "SK"},
	}
	newRoster := []domain.RosterRow{
		{Date: "11-02-2025", Person: "Yevhen Koval", ShiftType: "N", Location: "FD"},
	}
	_, _, err := repo.ReplaceShifts(ctx, oldRoster, 2025)
	require.NoError(t, err)

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(done)
		for i := 0; i < 25; i++ {
			if _, _, err := repo.ReplaceShifts(ctx, newRoster, 2025); err != nil {
				t.Error(err)
				return
			}
			if _, _, err := repo.ReplaceShifts(ctx, oldRoster, 2025); err != nil {
				t.Error(err)
				return
			}
		}
	}()

	// A reader must always see a complete roster: two old rows or one new
	// row, never a partial mix.
	for {
		select {
		case <-done:
			wg.Wait()
			return
		default:
		}
		shifts, err := repo.ShiftsForDate(ctx, "11-02-2025")
		require.NoError(t, err)
		switch len(shifts) {
		case 1:
			assert.Equal(t, "Yevhen Koval", shifts[0].Person)
		case 2:
			for _, s := range shifts {
				assert.Contains(t, []string{"John Smith", "Anna Brown"}, s.Person)
			}
		default:
			t.Fatalf("observed partially replaced roster: %d rows", len(shifts))
		}
	}
}
