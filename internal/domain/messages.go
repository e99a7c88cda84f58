package domain

import "fmt"

func dayLabel(tomorrow bool) string {
	if tomorrow {
		return "tomorrow"
	}
	return "today"
}

// ReminderMessage renders the daily shift reminder text.
func ReminderMessage(targetKey string, tomorrow bool, sh Shift) string {
	return fmt.Sprintf("Reminder: %s (%s) you have a shift.\nShift %s, location: %s.",
		dayLabel(tomorrow), targetKey, sh.ShiftType, sh.Location)
}

// TestReminderMessage renders the "test now" preview of a reminder.
func TestReminderMessage(targetKey string, tomorrow bool, sh *Shift) string {
	if sh == nil {
		return fmt.Sprintf("Reminder (test): %s (%s) is your day off (no shift in the roster).",
			dayLabel(tomorrow), targetKey)
	}
	return fmt.Sprintf("Reminder (test): %s (%s) you have a shift.\nShift %s, location: %s.",
		dayLabel(tomorrow), targetKey, sh.ShiftType, sh.Location)
}
