package habit

import (
	"sort"
	"time"

	"habits/internal/dates"
)

func dayKey(t time.Time) string {
	return dates.DayKey(t)
}

// IsCompletedToday reports whether h counts as done on now's calendar day.
// Quantitative habits are done once today's progress reaches the target;
// otherwise the most recent completion must fall on today.
func IsCompletedToday(h *Habit, now time.Time) bool {
	if h.IsQuantitative() && h.ProgressOn(now) >= h.TargetValue {
		return true
	}
	last, ok := h.LastCompletion()
	return ok && dates.SameDay(last, now)
}

// CompletedOn reports whether any completion falls on day's calendar day.
func CompletedOn(h *Habit, day time.Time) bool {
	for _, d := range h.CompletedDates {
		if dates.SameDay(d, day) {
			return true
		}
	}
	return false
}

// WithoutDay returns the completions that do not fall on day's calendar day.
func WithoutDay(completed []time.Time, day time.Time) []time.Time {
	out := make([]time.Time, 0, len(completed))
	for _, d := range completed {
		if !dates.SameDay(d, day) {
			out = append(out, d)
		}
	}
	return out
}

// CalculateStreak counts consecutive calendar days with a completion, ending
// at the latest completion. A streak survives one missed day (the latest
// completion may be yesterday) and resets to zero after that.
func CalculateStreak(completed []time.Time, now time.Time) int {
	if len(completed) == 0 {
		return 0
	}
	loc := now.Location()

	seen := make(map[string]struct{}, len(completed))
	days := make([]time.Time, 0, len(completed))
	for _, d := range completed {
		mid := dates.Midday(d.In(loc))
		key := dates.DayKey(mid)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		days = append(days, mid)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	yesterday := dates.Midday(now).AddDate(0, 0, -1)
	if days[0].Before(yesterday) {
		return 0
	}

	streak := 0
	for i, d := range days {
		expected := days[0].AddDate(0, 0, -i)
		if dates.DayKey(d) != dates.DayKey(expected) {
			break
		}
		streak++
	}
	return streak
}

// LastDays returns completion flags for the n days ending on now, oldest
// first.
func LastDays(h *Habit, now time.Time, n int) []bool {
	out := make([]bool, n)
	for i := 0; i < n; i++ {
		out[i] = CompletedOn(h, now.AddDate(0, 0, -(n-1-i)))
	}
	return out
}

// CompletionsThisWeek counts the distinct days completed in now's week
// (Monday through now).
func CompletionsThisWeek(h *Habit, now time.Time) int {
	start := dates.StartOfWeek(now)
	count := 0
	for d := start; !d.After(now); d = d.AddDate(0, 0, 1) {
		if CompletedOn(h, d) {
			count++
		}
	}
	return count
}
