package domain

import (
	"sort"
	"testing"
	"time"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		year int
		want string
	}{
		{"already canonical", "11-02-2025", 2024, "11-02-2025"},
		{"unpadded day-month-year", "1-2-2025", 2024, "01-02-2025"},
		{"day-month gets default year", "11-02", 2025, "11-02-2025"},
		{"unpadded day-month", "3-7", 2025, "03-07-2025"},
		{"iso", "2025-02-11", 0, "11-02-2025"},
		{"iso with trailing time", "2025-02-11T06:00:00Z", 0, "11-02-2025"},
		{"dotted with year", "11.2.2025", 0, "11-02-2025"},
		{"dotted without year", "11.02", 2025, "11-02-2025"},
		{"slashed", "12/02/2025", 0, "12-02-2025"},
		{"surrounding spaces", " 11-02-2025 ", 0, "11-02-2025"},
		{"empty", "", 2025, ""},
		{"blank", "   ", 2025, ""},
		{"unparseable passes through", "next tuesday", 2025, "next tuesday"},
		{"no calendar validation", "31-02-2025", 0, "31-02-2025"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeDate(tt.raw, tt.year)
			if got != tt.want {
				t.Fatalf("NormalizeDate(%q, %d) = %q, want %q", tt.raw, tt.year, got, tt.want)
			}
			// Normalization is idempotent.
			if again := NormalizeDate(got, tt.year); again != got {
				t.Fatalf("not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestNormalizeDate_DefaultYearFromClock(t *testing.T) {
	want := "11-02-" + time.Now().Format("2006")
	if got := NormalizeDate("11-02", 0); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDateKeyCanonical(t *testing.T) {
	if !DateKeyCanonical("11-02-2025") {
		t.Fatal("canonical key rejected")
	}
	for _, bad := range []string{"1-2-2025", "2025-02-11", "11.02.2025", "garbage", ""} {
		if DateKeyCanonical(bad) {
			t.Fatalf("%q accepted as canonical", bad)
		}
	}
}

func TestDateSortKey_Chronological(t *testing.T) {
	keys := []string{"01-01-2026", "31-12-2025", "02-01-2025", "15-06-2025", "someday"}
	sort.Slice(keys, func(i, j int) bool { return DateSortKey(keys[i]) < DateSortKey(keys[j]) })

	want := []string{"02-01-2025", "15-06-2025", "31-12-2025", "01-01-2026", "someday"}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("order %v, want %v", keys, want)
		}
	}
}

func TestTargetDate_CutoffRule(t *testing.T) {
	const cutoff = 18
	base := time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		hour     int
		minute   int
		wantKey  string
		tomorrow bool
	}{
		{"well before cutoff", 8, 0, "10-02-2025", false},
		{"minute before cutoff", 17, 59, "10-02-2025", false},
		{"exactly cutoff", 18, 0, "11-02-2025", true},
		{"after cutoff", 23, 30, "11-02-2025", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := base.Add(time.Duration(tt.hour)*time.Hour + time.Duration(tt.minute)*time.Minute)
			target, tomorrow := TargetDate(now, cutoff)
			if got := FormatDateKey(target); got != tt.wantKey {
				t.Fatalf("target = %q, want %q", got, tt.wantKey)
			}
			if tomorrow != tt.tomorrow {
				t.Fatalf("tomorrow = %v, want %v", tomorrow, tt.tomorrow)
			}
		})
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		hour    int
		minute  int
		wantErr bool
	}{
		{"13:30", 13, 30, false},
		{"9:00", 9, 0, false},
		{"00:00", 0, 0, false},
		{"23:59", 23, 59, false},
		{"24:00", 0, 0, true},
		{"12:60", 0, 0, true},
		{"12:5", 0, 0, true},
		{"noon", 0, 0, true},
		{"", 0, 0, true},
	}
	for _, tt := range tests {
		h, m, err := ParseClock(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("ParseClock(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseClock(%q): %v", tt.in, err)
		}
		if h != tt.hour || m != tt.minute {
			t.Fatalf("ParseClock(%q) = %d:%d, want %d:%d", tt.in, h, m, tt.hour, tt.minute)
		}
	}
}
