package ui

import (
	"fmt"
	"strings"
	"time"

	"habits/internal/config"
	"habits/internal/engine"
	"habits/internal/habit"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
)

// TodayPane lists the active habits with today's status and handles
// completion, progress, editing and ordering.
type TodayPane struct {
	engine  *engine.Engine
	habits  []habit.Habit
	now     time.Time
	cursor  int
	focused bool
	width   int
	height  int
	form    *habitForm
	bar     progress.Model
	styles  *Styles

	// Key bindings
	keys      TodayKeyMap
	inputKeys InputKeyMap
}

// NewTodayPane creates the today pane with custom key bindings.
func NewTodayPane(eng *engine.Engine, styles *Styles, keyCfg *config.KeysConfig) *TodayPane {
	if keyCfg == nil {
		keyCfg = &config.KeysConfig{}
	}
	bar := progress.New(
		progress.WithSolidFill(string(styles.ColorPrimary)),
		progress.WithoutPercentage(),
	)
	return &TodayPane{
		engine:    eng,
		now:       time.Now(),
		bar:       bar,
		styles:    styles,
		keys:      NewTodayKeyMap(keyCfg),
		inputKeys: NewInputKeyMap(keyCfg),
	}
}

// setHabits replaces the displayed habits and keeps the cursor in bounds.
func (p *TodayPane) setHabits(list []habit.Habit, now time.Time) {
	p.habits = list
	p.now = now
	if p.cursor >= len(p.habits) {
		p.cursor = max(0, len(p.habits)-1)
	}
}

// SetSize sets the pane dimensions.
func (p *TodayPane) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.bar.Width = max(10, width-16)
	if p.form != nil {
		p.form.SetWidth(width - 14)
	}
}

// SetFocused sets whether this pane is focused.
func (p *TodayPane) SetFocused(focused bool) {
	p.focused = focused
}

// IsFocused returns whether this pane is focused.
func (p *TodayPane) IsFocused() bool {
	return p.focused
}

// IsEditing returns whether the add/edit form is open.
func (p *TodayPane) IsEditing() bool {
	return p.form != nil
}

// Selected returns the habit under the cursor.
func (p *TodayPane) Selected() (habit.Habit, bool) {
	if p.cursor < 0 || p.cursor >= len(p.habits) {
		return habit.Habit{}, false
	}
	return p.habits[p.cursor], true
}

// Progress returns how many active habits are done today.
func (p *TodayPane) Progress() (done, total int) {
	for i := range p.habits {
		if habit.IsCompletedToday(&p.habits[i], p.now) {
			done++
		}
	}
	return done, len(p.habits)
}

// BestStreak returns the longest current streak among active habits.
func (p *TodayPane) BestStreak() int {
	best := 0
	for i := range p.habits {
		if s := habit.CalculateStreak(p.habits[i].CompletedDates, p.now); s > best {
			best = s
		}
	}
	return best
}

// Update handles messages for the today pane.
func (p *TodayPane) Update(msg tea.Msg) tea.Cmd {
	if p.form != nil {
		return p.updateForm(msg)
	}

	if !p.focused {
		return nil
	}

	switch msg := msg.(type) {
	case tea.MouseMsg:
		return p.handleMouse(msg)

	case tea.KeyMsg:
		if cursor, ok := p.keys.move(msg, p.cursor, len(p.habits)); ok {
			p.cursor = cursor
			return nil
		}

		switch {
		case key.Matches(msg, p.keys.Add):
			p.form = newHabitForm(p.width - 14)
			return textinput.Blink

		case key.Matches(msg, p.keys.Edit):
			if h, ok := p.Selected(); ok {
				p.form = newEditForm(h, p.width-14)
				return textinput.Blink
			}

		case key.Matches(msg, p.keys.Toggle):
			if h, ok := p.Selected(); ok {
				return toggleHabitCmd(p.engine, h.ID, h.Title)
			}

		case key.Matches(msg, p.keys.Increment):
			if h, ok := p.Selected(); ok && h.IsQuantitative() {
				return progressCmd(p.engine, h.ID, 1)
			}

		case key.Matches(msg, p.keys.Decrement):
			if h, ok := p.Selected(); ok && h.IsQuantitative() {
				return progressCmd(p.engine, h.ID, -1)
			}

		case key.Matches(msg, p.keys.Archive):
			if h, ok := p.Selected(); ok {
				return archiveHabitCmd(p.engine, h.ID, h.Title)
			}

		case key.Matches(msg, p.keys.MoveUp):
			return p.move(-1)

		case key.Matches(msg, p.keys.MoveDown):
			return p.move(1)
		}
	}

	return nil
}

func (p *TodayPane) updateForm(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, p.inputKeys.Confirm):
			if !p.form.submit() {
				return nil
			}
			f := p.form
			p.form = nil
			if f.editing() {
				return updateHabitCmd(p.engine, f.editID, f.draft)
			}
			return createHabitCmd(p.engine, f.draft)

		case key.Matches(msg, p.inputKeys.Cancel):
			p.form = nil
			return nil
		}
	}
	return p.form.Update(msg)
}

// move swaps the selected habit with its neighbour and persists the new
// order. The local list is updated right away so repeated presses chain.
func (p *TodayPane) move(delta int) tea.Cmd {
	to := p.cursor + delta
	if p.cursor < 0 || p.cursor >= len(p.habits) || to < 0 || to >= len(p.habits) {
		return nil
	}
	p.habits[p.cursor], p.habits[to] = p.habits[to], p.habits[p.cursor]
	p.cursor = to

	ids := make([]string, len(p.habits))
	for i, h := range p.habits {
		ids[i] = h.ID
	}
	return reorderHabitsCmd(p.engine, ids)
}

// headerRows is the number of lines above the first habit row, counting
// the pane border.
const headerRows = 5

// handleMouse processes mouse events for the today pane.
func (p *TodayPane) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if len(p.habits) == 0 {
		return nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		p.cursor = max(p.cursor-1, 0)
		return nil

	case tea.MouseButtonWheelDown:
		p.cursor = min(p.cursor+1, len(p.habits)-1)
		return nil

	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return nil
		}
		row := msg.Y - headerRows + p.scrollOffset()
		if row < 0 || row >= len(p.habits) {
			return nil
		}
		p.cursor = row

		// A click on the checkbox toggles.
		if msg.X < 8 {
			h := p.habits[row]
			return toggleHabitCmd(p.engine, h.ID, h.Title)
		}
	}

	return nil
}

// visibleRows is how many habit rows fit in the pane.
func (p *TodayPane) visibleRows() int {
	rows := p.height - headerRows - 5
	if p.form != nil {
		rows -= 3
	}
	return max(rows, 3)
}

func (p *TodayPane) scrollOffset() int {
	if rows := p.visibleRows(); p.cursor >= rows {
		return p.cursor - rows + 1
	}
	return 0
}

// View renders the today pane.
func (p *TodayPane) View() string {
	var b strings.Builder

	b.WriteString(p.styles.PaneTitleStyle.Render("☀ TODAY"))
	b.WriteString("\n")

	done, total := p.Progress()
	pct := 0.0
	if total > 0 {
		pct = float64(done) / float64(total)
	}
	b.WriteString(p.bar.ViewAs(pct))
	b.WriteString(" " + p.styles.StatValueStyle.Render(fmt.Sprintf("%d/%d", done, total)))
	b.WriteString("\n")

	sepWidth := p.width - 4
	if sepWidth < 10 {
		sepWidth = 30
	}
	b.WriteString(p.styles.StatLabelStyle.Render(strings.Repeat("─", sepWidth)))
	b.WriteString("\n")

	if len(p.habits) == 0 && p.form == nil {
		b.WriteString("\n")
		b.WriteString(p.styles.StatLabelStyle.Render("  No habits yet."))
		b.WriteString("\n")
		b.WriteString(p.styles.StatLabelStyle.Render("  Press '" + p.keys.Add.Help().Key + "' to add one."))
		b.WriteString("\n")
	} else if len(p.habits) > 0 {
		nameWidth := p.nameWidth()
		start := p.scrollOffset()
		end := min(len(p.habits), start+p.visibleRows())
		for i := start; i < end; i++ {
			b.WriteString(p.renderRow(i, nameWidth))
			b.WriteString("\n")
		}

		// Day labels under the week dots
		b.WriteString(strings.Repeat(" ", 2+3+1+nameWidth+2))
		b.WriteString(p.styles.StatLabelStyle.Render(dayLabels(p.now)))
		b.WriteString("\n")
	}

	if p.form != nil {
		b.WriteString("\n")
		heading := "New habit"
		if p.form.editing() {
			heading = "Edit habit"
		}
		b.WriteString("  " + p.styles.StatLabelStyle.Render(heading) + "\n")
		b.WriteString("  " + p.styles.InputPromptStyle.Render(p.form.Prompt()) + p.form.input.View())
		b.WriteString("\n")
		if p.form.err != "" {
			b.WriteString("  " + p.styles.ErrorStyle.Render(p.form.err))
			b.WriteString("\n")
		}
	}

	content := b.String()
	style := p.styles.PaneStyle
	if p.focused {
		style = p.styles.PaneFocusedStyle
	}

	return style.Width(p.width).Height(p.height).Render(content)
}

// nameWidth sizes the name column to the longest name that fits.
func (p *TodayPane) nameWidth() int {
	// prefix, checkbox, dots, week, streak and padding
	limit := max(p.width-4-2-4-2-13-2-12, 8)
	w := 0
	for i := range p.habits {
		w = max(w, runewidth.StringWidth(p.habitLabel(&p.habits[i])))
	}
	return min(w, limit)
}

// habitLabel is the icon, title and, for counted habits, today's progress.
func (p *TodayPane) habitLabel(h *habit.Habit) string {
	label := h.Icon + " " + h.Title
	if h.IsQuantitative() {
		unit := ""
		if h.Unit != "" {
			unit = " " + h.Unit
		}
		label += fmt.Sprintf(" (%d/%d%s)", h.ProgressOn(p.now), h.TargetValue, unit)
	}
	return label
}

func (p *TodayPane) renderRow(i, nameWidth int) string {
	h := &p.habits[i]
	selected := i == p.cursor && p.focused && p.form == nil
	done := habit.IsCompletedToday(h, p.now)

	prefix := "  "
	if selected {
		prefix = "▶ "
	}
	check := p.styles.HabitCheckPending
	if done {
		check = p.styles.HabitCheckDone
	}

	label := truncateText(p.habitLabel(h), nameWidth)
	label += strings.Repeat(" ", max(0, nameWidth-runewidth.StringWidth(label)))
	if !selected {
		if done {
			label = p.styles.HabitDoneStyle.Render(label)
		} else {
			label = p.styles.HabitPendingStyle.Render(label)
		}
	}

	goal := h.GoalDaysPerWeek
	if goal <= 0 {
		goal = habit.DefaultGoalDaysPerWeek
	}
	weekCount := habit.CompletionsThisWeek(h, p.now)
	week := fmt.Sprintf("%d/%d", weekCount, goal)
	if weekCount >= goal {
		week = p.styles.GoalMetStyle.Render(week + "✓")
	}

	line := prefix + check + " " + label + "  " + p.renderWeekView(habit.LastDays(h, p.now, 7)) + "  " + week

	if streak := habit.CalculateStreak(h.CompletedDates, p.now); streak > 0 {
		line += " " + p.styles.HabitStreakStyle.Render(fmt.Sprintf("🔥%d", streak))
	}
	if h.ReminderTime != "" {
		line += " " + p.styles.ReminderStyle.Render("⏰"+h.ReminderTime)
	}

	if selected {
		line = p.styles.HabitSelectedStyle.Render(line)
	}
	return line
}

// renderWeekView creates the visual week representation.
func (p *TodayPane) renderWeekView(week []bool) string {
	parts := make([]string, len(week))
	for i, done := range week {
		if done {
			parts[i] = p.styles.HabitDoneIcon
		} else {
			parts[i] = p.styles.HabitUndoneIcon
		}
	}
	return strings.Join(parts, " ")
}

// dayLabels returns the first letter of each of the seven days ending on
// now, spaced to line up with the week dots.
func dayLabels(now time.Time) string {
	days := make([]string, 7)
	for i := 0; i < 7; i++ {
		days[i] = now.AddDate(0, 0, -(6 - i)).Format("Mon")[:1]
	}
	return strings.Join(days, " ")
}

// truncateText shortens text to maxLen with ellipsis if needed.
func truncateText(text string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	return runewidth.Truncate(text, maxLen, "..")
}

// progressLabel formats done/total as a whole percentage.
func progressLabel(done, total int) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%d%%", done*100/total)
}
