package stats

import (
	"time"

	"habits/internal/dates"
	"habits/internal/habit"
)

// Generate builds a report for now from the active and archived habits.
// Archived habits only contribute to the archived count.
func Generate(active, archived []habit.Habit, now time.Time, heatmapDays int) *Report {
	if heatmapDays <= 0 {
		heatmapDays = DefaultHeatmapDays
	}

	statuses := make([]HabitStatus, 0, len(active))
	summary := Summary{
		ActiveCount:   len(active),
		ArchivedCount: len(archived),
	}

	for i := range active {
		h := &active[i]
		status := habitStatus(h, now)
		statuses = append(statuses, status)

		if status.Done {
			summary.CompletedToday++
		}
		if status.Streak > summary.BestStreak {
			summary.BestStreak = status.Streak
		}
		summary.TotalCompletions += status.Total
	}
	if len(active) > 0 {
		summary.OverallProgress = float64(summary.CompletedToday) / float64(len(active))
	}

	return &Report{
		Date:        dates.StartOfDay(now),
		Summary:     summary,
		Habits:      statuses,
		Heatmap:     BuildHeatmap(active, now, heatmapDays),
		GeneratedAt: now,
	}
}

func habitStatus(h *habit.Habit, now time.Time) HabitStatus {
	last7 := habit.LastDays(h, now, 7)
	done7 := 0
	for _, d := range last7 {
		if d {
			done7++
		}
	}

	goal := h.GoalDaysPerWeek
	if goal <= 0 {
		goal = habit.DefaultGoalDaysPerWeek
	}
	week := habit.CompletionsThisWeek(h, now)

	s := HabitStatus{
		ID:             h.ID,
		Title:          h.Title,
		Icon:           h.Icon,
		Done:           habit.IsCompletedToday(h, now),
		Streak:         habit.CalculateStreak(h.CompletedDates, now),
		Total:          len(h.CompletedDates),
		LastSevenDays:  last7,
		WeekCompleted:  week,
		WeekGoal:       goal,
		GoalMet:        week >= goal,
		ReminderTime:   h.ReminderTime,
		CompletionRate: float64(done7) / 7,
	}
	if h.IsQuantitative() {
		s.Progress = h.ProgressOn(now)
		s.Target = h.TargetValue
		s.Unit = h.Unit
	}
	return s
}

// BuildHeatmap returns the completion share of the active habits for each of
// the days ending today. A habit counts on a day when it has a completion on
// that calendar day.
func BuildHeatmap(active []habit.Habit, now time.Time, days int) Heatmap {
	if days <= 0 {
		days = DefaultHeatmapDays
	}

	counts := make(map[string]int)
	for i := range active {
		seen := make(map[string]bool)
		for _, d := range active[i].CompletedDates {
			key := dates.DayKey(d.In(now.Location()))
			if !seen[key] {
				seen[key] = true
				counts[key]++
			}
		}
	}

	out := Heatmap{Days: make([]HeatmapDay, days)}
	today := dates.StartOfDay(now)
	for i := 0; i < days; i++ {
		day := today.AddDate(0, 0, -(days - 1 - i))
		key := dates.DayKey(day)
		cell := HeatmapDay{Date: key, Completed: counts[key], Total: len(active)}
		if cell.Total > 0 {
			cell.Fraction = float64(cell.Completed) / float64(cell.Total)
		}
		cell.Level = Intensity(cell.Fraction)
		out.Days[i] = cell
	}
	return out
}

// Intensity buckets a completion fraction into heatmap levels 0..3.
func Intensity(fraction float64) int {
	switch {
	case fraction <= 0:
		return 0
	case fraction <= 0.33:
		return 1
	case fraction <= 0.66:
		return 2
	default:
		return 3
	}
}

// Weeks splits the heatmap into consecutive runs of seven days, oldest
// first. The last run may be shorter.
func (h Heatmap) Weeks() [][]HeatmapDay {
	var weeks [][]HeatmapDay
	for i := 0; i < len(h.Days); i += 7 {
		end := i + 7
		if end > len(h.Days) {
			end = len(h.Days)
		}
		weeks = append(weeks, h.Days[i:end])
	}
	return weeks
}

// ActiveDays counts heatmap days with at least one completion.
func (h Heatmap) ActiveDays() int {
	n := 0
	for _, d := range h.Days {
		if d.Completed > 0 {
			n++
		}
	}
	return n
}
