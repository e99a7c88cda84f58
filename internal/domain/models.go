package domain

import "time"

// Shift is one roster entry: a person works a shift of some type at some
// location on a given day. Date holds the dd-mm-yyyy key, or the raw upstream
// text when normalization could not classify it.
type Shift struct {
	Date      string
	Person    string
	ShiftType string
	Location  string
	FetchedAt time.Time
}

// DateAnomalous reports whether the stored date is not a canonical key.
// Such rows are kept so operators can see bad upstream data.
func (s Shift) DateAnomalous() bool {
	return !DateKeyCanonical(s.Date)
}

// RosterRow is a raw fetched roster entry, before date normalization.
type RosterRow struct {
	Date      string
	Person    string
	ShiftType string
	Location  string
}

// User is an activated bot user. Person is empty until the user picks their
// name from the roster.
type User struct {
	ID         int64
	TelegramID int64
	KeyID      int64
	Person     string
	Phone      string
	CreatedAt  time.Time
}

// ActivationKey is a one-time onboarding key.
type ActivationKey struct {
	ID        int64
	Key       string
	Used      bool
	CreatedAt time.Time
}

// NotificationSettings holds a user's daily reminder time.
type NotificationSettings struct {
	UserID  int64
	Hour    int
	Minute  int
	Enabled bool
}

// NotifyTarget is the join of an enabled, person-bound user with their
// reminder time, as consumed by the notification tick.
type NotifyTarget struct {
	UserID     int64
	TelegramID int64
	Person     string
	Hour       int
	Minute     int
}
