package ui

import (
	"fmt"
	"strings"
	"time"

	"habits/internal/config"
	"habits/internal/engine"
	"habits/internal/habit"
	"habits/internal/stats"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// StatsPane shows the summary figures, the activity heatmap and each
// habit's last seven days.
type StatsPane struct {
	engine      *engine.Engine
	report      *stats.Report
	heatmapDays int
	focused     bool
	width       int
	height      int
	styles      *Styles

	keys StatsKeyMap
}

// NewStatsPane creates the stats pane with custom key bindings.
func NewStatsPane(eng *engine.Engine, styles *Styles, keyCfg *config.KeysConfig, heatmapDays int) *StatsPane {
	if heatmapDays <= 0 {
		heatmapDays = stats.DefaultHeatmapDays
	}
	return &StatsPane{
		engine:      eng,
		report:      stats.Generate(nil, nil, time.Now(), heatmapDays),
		heatmapDays: heatmapDays,
		styles:      styles,
		keys:        NewStatsKeyMap(keyCfg),
	}
}

func (p *StatsPane) setHabits(active, archived []habit.Habit, now time.Time) {
	p.report = stats.Generate(active, archived, now, p.heatmapDays)
}

// SetSize sets the pane dimensions.
func (p *StatsPane) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetFocused sets whether this pane is focused.
func (p *StatsPane) SetFocused(focused bool) {
	p.focused = focused
}

// Update handles messages for the stats pane.
func (p *StatsPane) Update(msg tea.Msg) tea.Cmd {
	if !p.focused {
		return nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, p.keys.ShiftDay) {
		// Moving history back a day looks like a day has passed.
		return shiftDatesCmd(p.engine, -1)
	}
	return nil
}

// View renders the stats pane.
func (p *StatsPane) View() string {
	var b strings.Builder

	b.WriteString(p.styles.PaneTitleStyle.Render("📊 STATS"))
	b.WriteString("\n")

	s := p.report.Summary
	b.WriteString(p.stat("Today", fmt.Sprintf("%d/%d", s.CompletedToday, s.ActiveCount)))
	b.WriteString(p.stat("Best streak", fmt.Sprintf("%d 🔥", s.BestStreak)))
	b.WriteString(p.stat("Completions", fmt.Sprintf("%d", s.TotalCompletions)))
	b.WriteString("\n")

	b.WriteString(p.styles.StatLabelStyle.Render("Activity"))
	b.WriteString("\n")
	b.WriteString(p.renderHeatmap())
	b.WriteString(p.styles.StatLabelStyle.Render("less ") + strings.Join(p.styles.HeatmapCells[:], " ") + p.styles.StatLabelStyle.Render(" more"))
	b.WriteString("\n\n")

	if len(p.report.Habits) > 0 {
		b.WriteString(p.styles.StatLabelStyle.Render("Last 7 days"))
		b.WriteString("\n")
		textWidth := max(p.width-4-14-6, 6)
		for _, h := range p.report.Habits {
			label := truncateText(h.Icon+" "+h.Title, textWidth)
			dots := make([]string, len(h.LastSevenDays))
			for i, done := range h.LastSevenDays {
				if done {
					dots[i] = p.styles.HabitDoneIcon
				} else {
					dots[i] = p.styles.HabitUndoneIcon
				}
			}
			b.WriteString(fmt.Sprintf("%s %s %s\n", strings.Join(dots, ""), label, p.styles.StatLabelStyle.Render(fmt.Sprintf("%d total", h.Total))))
		}
	}

	content := b.String()
	style := p.styles.PaneStyle
	if p.focused {
		style = p.styles.PaneFocusedStyle
	}
	return style.Width(p.width).Height(p.height).Render(content)
}

func (p *StatsPane) stat(label, value string) string {
	return p.styles.StatLabelStyle.Render(fmt.Sprintf("%-12s", label)) + p.styles.StatValueStyle.Render(value) + "\n"
}

// renderHeatmap draws one column per week and one row per day of that
// week, dropping the oldest weeks when the pane is too narrow.
func (p *StatsPane) renderHeatmap() string {
	weeks := p.report.Heatmap.Weeks()
	if cols := (p.width - 4) / 2; p.width > 0 && cols > 0 && len(weeks) > cols {
		weeks = weeks[len(weeks)-cols:]
	}

	var b strings.Builder
	for row := 0; row < 7; row++ {
		cells := make([]string, 0, len(weeks))
		for _, week := range weeks {
			if row < len(week) {
				cells = append(cells, p.styles.HeatmapCells[week[row].Level])
			} else {
				cells = append(cells, " ")
			}
		}
		b.WriteString(strings.TrimRight(strings.Join(cells, " "), " "))
		b.WriteString("\n")
	}
	return b.String()
}
