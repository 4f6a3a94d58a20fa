// Package habit defines the persisted habit entity and the pure rules that
// derive completion and streak state from it.
package habit

import (
	"time"
)

// DefaultGoalDaysPerWeek applies to records saved before weekly goals existed.
const DefaultGoalDaysPerWeek = 7

// Habit is a trackable recurring habit.
type Habit struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	Icon            string         `json:"icon"`
	CreatedAt       time.Time      `json:"created_at"`
	CompletedDates  []time.Time    `json:"completed_dates"`
	Streak          int            `json:"streak"` // cache only, see CalculateStreak
	GoalDaysPerWeek int            `json:"goal_days_per_week,omitempty"`
	TargetValue     int            `json:"target_value,omitempty"` // 0 means binary
	Unit            string         `json:"unit,omitempty"`
	ProgressLog     map[string]int `json:"progress_log,omitempty"` // day key -> count
	ReminderTime    string         `json:"reminder_time,omitempty"` // HH:MM
}

// Collection is the full persisted state: active habits in display order and
// archived habits, most recently archived first.
type Collection struct {
	Active   []Habit `json:"active"`
	Archived []Habit `json:"archived"`
}

// IsQuantitative reports whether completion is threshold based.
func (h *Habit) IsQuantitative() bool {
	return h.TargetValue > 0
}

// HasReminder reports whether a reminder time is set. The value may still be
// malformed; the scheduler decides that.
func (h *Habit) HasReminder() bool {
	return h.ReminderTime != ""
}

// ProgressOn returns the accumulated count for the day containing t.
func (h *Habit) ProgressOn(t time.Time) int {
	return h.ProgressLog[dayKey(t)]
}

// LastCompletion returns the most recent completion instant.
func (h *Habit) LastCompletion() (time.Time, bool) {
	if len(h.CompletedDates) == 0 {
		return time.Time{}, false
	}
	latest := h.CompletedDates[0]
	for _, d := range h.CompletedDates[1:] {
		if d.After(latest) {
			latest = d
		}
	}
	return latest, true
}

// Clone returns a deep copy so callers can mutate it without touching the
// original's slices or map.
func (h Habit) Clone() Habit {
	c := h
	if h.CompletedDates != nil {
		c.CompletedDates = make([]time.Time, len(h.CompletedDates))
		copy(c.CompletedDates, h.CompletedDates)
	}
	if h.ProgressLog != nil {
		c.ProgressLog = make(map[string]int, len(h.ProgressLog))
		for k, v := range h.ProgressLog {
			c.ProgressLog[k] = v
		}
	}
	return c
}

// Normalize fills defaults for older records and recomputes the cached streak.
func (h *Habit) Normalize(now time.Time) {
	if h.GoalDaysPerWeek < 1 || h.GoalDaysPerWeek > 7 {
		h.GoalDaysPerWeek = DefaultGoalDaysPerWeek
	}
	if h.CompletedDates == nil {
		h.CompletedDates = []time.Time{}
	}
	h.Streak = CalculateStreak(h.CompletedDates, now)
}

// CloneAll deep-copies a slice of habits.
func CloneAll(list []Habit) []Habit {
	out := make([]Habit, len(list))
	for i := range list {
		out[i] = list[i].Clone()
	}
	return out
}

// Clone deep-copies the collection.
func (c Collection) Clone() Collection {
	return Collection{Active: CloneAll(c.Active), Archived: CloneAll(c.Archived)}
}
