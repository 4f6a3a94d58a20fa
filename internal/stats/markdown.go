package stats

import (
	"fmt"
	"strings"
)

var levelGlyphs = []string{"·", "░", "▒", "█"}

// FormatMarkdown renders a report as Markdown.
func FormatMarkdown(report *Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Habit stats for %s\n\n", report.Date.Format("Monday, January 2, 2006"))

	s := report.Summary
	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- **Today:** %d/%d done (%.0f%%)\n", s.CompletedToday, s.ActiveCount, s.OverallProgress*100)
	fmt.Fprintf(&b, "- **Best streak:** %s\n", pluralDays(s.BestStreak))
	fmt.Fprintf(&b, "- **Total completions:** %d\n", s.TotalCompletions)
	if s.ArchivedCount > 0 {
		fmt.Fprintf(&b, "- **Archived habits:** %d\n", s.ArchivedCount)
	}
	b.WriteString("\n")

	b.WriteString("## Habits\n\n")
	if len(report.Habits) == 0 {
		b.WriteString("_No active habits._\n\n")
	} else {
		b.WriteString("| Habit | Today | Last 7 days | This week | Streak | Total |\n")
		b.WriteString("|-------|-------|-------------|-----------|--------|-------|\n")
		for _, h := range report.Habits {
			today := "no"
			if h.Done {
				today = "yes"
			}
			if h.Target > 0 {
				today = fmt.Sprintf("%d/%d %s", h.Progress, h.Target, h.Unit)
				today = strings.TrimSpace(today)
			}
			week := fmt.Sprintf("%d/%d", h.WeekCompleted, h.WeekGoal)
			if h.GoalMet {
				week += " ✓"
			}
			fmt.Fprintf(&b, "| %s %s | %s | %s | %s | %d | %d |\n",
				h.Icon, escapeCell(h.Title), today, dots(h.LastSevenDays), week, h.Streak, h.Total)
		}
		b.WriteString("\n")
	}

	days := report.Heatmap.Days
	if len(days) > 0 {
		fmt.Fprintf(&b, "## Activity (%s to %s)\n\n", days[0].Date, days[len(days)-1].Date)
		b.WriteString("```\n")
		for _, week := range report.Heatmap.Weeks() {
			b.WriteString(week[0].Date)
			b.WriteString(" ")
			for _, d := range week {
				b.WriteString(levelGlyphs[d.Level])
			}
			b.WriteString("\n")
		}
		b.WriteString("```\n\n")
		fmt.Fprintf(&b, "%d of %d days with activity.\n", report.Heatmap.ActiveDays(), len(days))
	}

	return b.String()
}

func dots(days []bool) string {
	var b strings.Builder
	for _, d := range days {
		if d {
			b.WriteString("●")
		} else {
			b.WriteString("○")
		}
	}
	return b.String()
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
