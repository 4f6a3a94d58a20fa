// Package stats aggregates habit history into the summary, per-habit and
// heatmap figures shown by the stats view and the stats command.
package stats

import "time"

// DefaultHeatmapDays is thirteen weeks.
const DefaultHeatmapDays = 91

// Report contains everything the stats screen shows.
type Report struct {
	Date        time.Time     `json:"date"`
	Summary     Summary       `json:"summary"`
	Habits      []HabitStatus `json:"habits"`
	Heatmap     Heatmap       `json:"heatmap"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// Summary contains aggregate figures over the active habits.
type Summary struct {
	ActiveCount      int     `json:"active_count"`
	ArchivedCount    int     `json:"archived_count"`
	CompletedToday   int     `json:"completed_today"`
	OverallProgress  float64 `json:"overall_progress"` // 0..1
	BestStreak       int     `json:"best_streak"`
	TotalCompletions int     `json:"total_completions"`
}

// HabitStatus is one active habit's current standing.
type HabitStatus struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Icon           string  `json:"icon"`
	Done           bool    `json:"done"`
	Streak         int     `json:"streak"`
	Total          int     `json:"total"`
	LastSevenDays  []bool  `json:"last_seven_days"` // oldest first, today last
	WeekCompleted  int     `json:"week_completed"`
	WeekGoal       int     `json:"week_goal"`
	GoalMet        bool    `json:"goal_met"`
	Progress       int     `json:"progress,omitempty"`
	Target         int     `json:"target,omitempty"`
	Unit           string  `json:"unit,omitempty"`
	ReminderTime   string  `json:"reminder_time,omitempty"`
	CompletionRate float64 `json:"completion_rate"` // last seven days, 0..1
}

// Heatmap holds one cell per day, oldest first.
type Heatmap struct {
	Days []HeatmapDay `json:"days"`
}

// HeatmapDay is the share of active habits completed on one day.
type HeatmapDay struct {
	Date      string  `json:"date"` // YYYY-MM-DD
	Completed int     `json:"completed"`
	Total     int     `json:"total"`
	Fraction  float64 `json:"fraction"`
	Level     int     `json:"level"` // 0..3
}
