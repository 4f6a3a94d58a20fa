package dates

import (
	"testing"
	"time"
)

func TestSameDay(t *testing.T) {
	loc := time.FixedZone("test", 2*60*60)
	ref := time.Date(2025, 12, 15, 9, 0, 0, 0, loc)

	tests := []struct {
		name string
		a    time.Time
		want bool
	}{
		{"same instant", ref, true},
		{"start of day", time.Date(2025, 12, 15, 0, 0, 0, 0, loc), true},
		{"end of day", time.Date(2025, 12, 15, 23, 59, 59, 0, loc), true},
		{"previous day", time.Date(2025, 12, 14, 23, 59, 0, 0, loc), false},
		{"next day", time.Date(2025, 12, 16, 0, 0, 0, 0, loc), false},
		{"same month other year", time.Date(2024, 12, 15, 9, 0, 0, 0, loc), false},
		// 23:30 UTC on the 14th is 01:30 on the 15th in ref's zone.
		{"other zone read in ref zone", time.Date(2025, 12, 14, 23, 30, 0, 0, time.UTC), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SameDay(tt.a, ref); got != tt.want {
				t.Errorf("SameDay(%v, %v) = %v, want %v", tt.a, ref, got, tt.want)
			}
		})
	}
}

func TestDayKey(t *testing.T) {
	morning := time.Date(2025, 3, 9, 0, 0, 1, 0, time.UTC)
	evening := time.Date(2025, 3, 9, 23, 59, 59, 0, time.UTC)
	next := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	if DayKey(morning) != "2025-03-09" {
		t.Errorf("DayKey(morning) = %q, want 2025-03-09", DayKey(morning))
	}
	if DayKey(morning) != DayKey(evening) {
		t.Errorf("DayKey differs within a day: %q vs %q", DayKey(morning), DayKey(evening))
	}
	if DayKey(evening) == DayKey(next) {
		t.Errorf("DayKey equal across days: %q", DayKey(next))
	}
}

func TestShiftDayKey(t *testing.T) {
	tests := []struct {
		key  string
		days int
		want string
	}{
		{"2025-03-01", -1, "2025-02-28"},
		{"2024-03-01", -1, "2024-02-29"},
		{"2025-01-01", -1, "2024-12-31"},
		{"2025-12-31", 1, "2026-01-01"},
		{"2025-06-15", 0, "2025-06-15"},
	}
	for _, tt := range tests {
		got, err := ShiftDayKey(tt.key, tt.days)
		if err != nil {
			t.Fatalf("ShiftDayKey(%q, %d) error = %v", tt.key, tt.days, err)
		}
		if got != tt.want {
			t.Errorf("ShiftDayKey(%q, %d) = %q, want %q", tt.key, tt.days, got, tt.want)
		}
	}

	if _, err := ShiftDayKey("Mon Dec 15 2025", -1); err == nil {
		t.Error("ShiftDayKey() expected error for malformed key")
	}
}

func TestStartOfWeek(t *testing.T) {
	// 2025-12-15 is a Monday.
	monday := time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		day := monday.AddDate(0, 0, i).Add(13 * time.Hour)
		if got := StartOfWeek(day); !got.Equal(monday) {
			t.Errorf("StartOfWeek(%s) = %s, want %s", day.Weekday(), got, monday)
		}
	}
}

func TestClockRoundTrip(t *testing.T) {
	for h := 0; h < 24; h++ {
		for m := 0; m < 60; m++ {
			s := FormatClock(h, m)
			c, err := ParseClock(s)
			if err != nil {
				t.Fatalf("ParseClock(%q) error = %v", s, err)
			}
			if c.Hours != h || c.Minutes != m {
				t.Fatalf("ParseClock(%q) = %+v, want %02d:%02d", s, c, h, m)
			}
			if c.String() != s {
				t.Fatalf("Clock.String() = %q, want %q", c.String(), s)
			}
		}
	}
}

func TestParseClock_Malformed(t *testing.T) {
	for _, s := range []string{"", "8", "24:00", "12:60", "ab:cd", "12:3", "12-30", "noon"} {
		if _, err := ParseClock(s); err == nil {
			t.Errorf("ParseClock(%q) expected error", s)
		}
	}
}

func TestClockOn(t *testing.T) {
	day := time.Date(2025, 12, 15, 18, 45, 0, 0, time.UTC)
	got := Clock{Hours: 8, Minutes: 30}.On(day)
	want := time.Date(2025, 12, 15, 8, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("On() = %v, want %v", got, want)
	}
}
