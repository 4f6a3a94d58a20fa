// Package dates holds the calendar helpers shared by the habit engine and the
// reminder scheduler. Every helper works in local time: a day is the calendar
// day of the location carried by the time value.
package dates

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DayKeyLayout is the layout of progress log keys and heatmap buckets.
	DayKeyLayout = "2006-01-02"

	// ClockLayout is the layout of reminder times.
	ClockLayout = "15:04"
)

// StartOfDay returns midnight of t's calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Midday returns 12:00 of t's calendar day. Comparing mid-day instants keeps
// day arithmetic clear of DST transitions, which happen at night.
func Midday(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 12, 0, 0, 0, t.Location())
}

// StartOfWeek returns midnight of the Monday on or before t.
func StartOfWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// SameDay reports whether a falls on the same calendar day as ref, reading a
// in ref's location.
func SameDay(a, ref time.Time) bool {
	a = a.In(ref.Location())
	ay, am, ad := a.Date()
	ry, rm, rd := ref.Date()
	return ay == ry && am == rm && ad == rd
}

// DayKey returns the canonical key of t's calendar day.
func DayKey(t time.Time) string {
	return t.Format(DayKeyLayout)
}

// ParseDayKey parses a day key into midnight of that day in loc.
func ParseDayKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DayKeyLayout, strings.TrimSpace(key), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day key %q: expected YYYY-MM-DD", key)
	}
	return t, nil
}

// ShiftDayKey moves a day key by the given number of calendar days.
func ShiftDayKey(key string, days int) (string, error) {
	t, err := ParseDayKey(key, time.UTC)
	if err != nil {
		return "", err
	}
	return DayKey(t.AddDate(0, 0, days)), nil
}

// Clock is a local time of day with minute precision.
type Clock struct {
	Hours   int
	Minutes int
}

// ParseClock parses an "HH:MM" 24-hour time of day.
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse(ClockLayout, strings.TrimSpace(s))
	if err != nil {
		return Clock{}, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	return Clock{Hours: t.Hour(), Minutes: t.Minute()}, nil
}

// FormatClock formats hours and minutes as "HH:MM".
func FormatClock(hours, minutes int) string {
	return fmt.Sprintf("%02d:%02d", hours, minutes)
}

func (c Clock) String() string {
	return FormatClock(c.Hours, c.Minutes)
}

// On returns the instant at this clock time on day's calendar day.
func (c Clock) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, c.Hours, c.Minutes, 0, 0, day.Location())
}
