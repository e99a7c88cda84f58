package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Roster dates are stored as dd-mm-yyyy keys. The upstream API is sloppy
// about formats, so normalization accepts several grammars; the first one
// that matches wins.
var (
	reDayMonthYear = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})$`)
	reDayMonth     = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})$`)
	reISOPrefix    = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})`)
	reDotted       = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})(?:\.(\d{4}))?$`)
	reSlashed      = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})`)

	reCanonicalKey = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)
)

// NormalizeDate converts a raw roster date into the canonical dd-mm-yyyy key.
// Inputs without a year get defaultYear; defaultYear <= 0 means the year of
// "now". An empty input yields "". Input that matches no known grammar is
// returned unchanged so callers can keep it visible instead of dropping the
// row. Calendar validity is not checked. Idempotent for canonical keys.
func NormalizeDate(raw string, defaultYear int) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	year := defaultYear
	if year <= 0 {
		year = time.Now().Year()
	}
	if m := reDayMonthYear.FindStringSubmatch(raw); m != nil {
		return dateKey(m[1], m[2], m[3])
	}
	if m := reDayMonth.FindStringSubmatch(raw); m != nil {
		return dateKey(m[1], m[2], strconv.Itoa(year))
	}
	if m := reISOPrefix.FindStringSubmatch(raw); m != nil {
		return dateKey(m[3], m[2], m[1])
	}
	if m := reDotted.FindStringSubmatch(raw); m != nil {
		y := m[3]
		if y == "" {
			y = strconv.Itoa(year)
		}
		return dateKey(m[1], m[2], y)
	}
	if m := reSlashed.FindStringSubmatch(raw); m != nil {
		return dateKey(m[1], m[2], m[3])
	}
	return raw
}

func dateKey(day, month, year string) string {
	d, _ := strconv.Atoi(day)
	m, _ := strconv.Atoi(month)
	return fmt.Sprintf("%02d-%02d-%s", d, m, year)
}

// DateKeyCanonical reports whether key is a well-formed dd-mm-yyyy key.
// Keys that fail this check are roster anomalies kept verbatim on purpose.
func DateKeyCanonical(key string) bool {
	return reCanonicalKey.MatchString(key)
}

// DateSortKey maps a canonical key to yyyy-mm-dd so that plain string
// comparison yields chronological order. Lexical order of dd-mm-yyyy keys is
// not chronological across month or year boundaries. Anomalous keys map after
// every canonical one ("~" sorts above digits) so they stay visible at the
// end of listings.
func DateSortKey(key string) string {
	if !DateKeyCanonical(key) {
		return "~" + key
	}
	return key[6:10] + "-" + key[3:5] + "-" + key[0:2]
}

// FormatDateKey renders t as a dd-mm-yyyy key.
func FormatDateKey(t time.Time) string {
	return t.Format("02-01-2006")
}

// TargetDate applies the day-rollover rule: at or after cutoffHour the
// reminder concerns tomorrow's shift, before it today's. The second return
// value reports whether the target rolled over.
func TargetDate(now time.Time, cutoffHour int) (time.Time, bool) {
	if now.Hour() >= cutoffHour {
		return now.AddDate(0, 0, 1), true
	}
	return now, false
}

// ErrInvalidClock is returned by ParseClock for anything that is not a
// valid H:MM or HH:MM wall-clock time.
var ErrInvalidClock = errors.New("invalid time, expected HH:MM")

var reClock = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// ParseClock parses "H:MM" or "HH:MM" into an hour and minute.
func ParseClock(s string) (hour, minute int, err error) {
	m := reClock.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, 0, ErrInvalidClock
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return 0, 0, ErrInvalidClock
	}
	return hour, minute, nil
}
