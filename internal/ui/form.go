package ui

import (
	"fmt"
	"strconv"
	"strings"

	"habits/internal/dates"
	"habits/internal/engine"
	"habits/internal/habit"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type formStep int

const (
	stepTitle formStep = iota
	stepIcon
	stepGoal
	stepTarget
	stepUnit
	stepReminder
	stepDone
)

// habitForm walks through the fields of a habit one prompt at a time.
// Optional steps accept an empty answer.
type habitForm struct {
	editID string // empty when creating
	step   formStep
	draft  engine.Draft
	input  textinput.Model
	err    string
}

func newHabitForm(width int) *habitForm {
	ti := textinput.New()
	ti.Width = max(10, width)
	f := &habitForm{input: ti}
	f.enter(stepTitle)
	return f
}

// newEditForm prefills the form from h.
func newEditForm(h habit.Habit, width int) *habitForm {
	f := newHabitForm(width)
	f.editID = h.ID
	f.draft = engine.Draft{
		Title:           h.Title,
		Icon:            h.Icon,
		GoalDaysPerWeek: h.GoalDaysPerWeek,
		TargetValue:     h.TargetValue,
		Unit:            h.Unit,
		ReminderTime:    h.ReminderTime,
	}
	f.enter(stepTitle)
	return f
}

func (f *habitForm) editing() bool { return f.editID != "" }

// enter moves to step and loads its current value into the input.
func (f *habitForm) enter(step formStep) {
	f.step = step
	f.err = ""
	f.input.Reset()
	f.input.Placeholder = f.placeholder()
	f.input.CharLimit = f.charLimit()
	f.input.SetValue(f.currentValue())
	f.input.CursorEnd()
	f.input.Focus()
}

func (f *habitForm) currentValue() string {
	d := f.draft
	switch f.step {
	case stepTitle:
		return d.Title
	case stepIcon:
		return d.Icon
	case stepGoal:
		if d.GoalDaysPerWeek > 0 {
			return strconv.Itoa(d.GoalDaysPerWeek)
		}
	case stepTarget:
		if d.TargetValue > 0 {
			return strconv.Itoa(d.TargetValue)
		}
	case stepUnit:
		return d.Unit
	case stepReminder:
		return d.ReminderTime
	}
	return ""
}

func (f *habitForm) placeholder() string {
	switch f.step {
	case stepTitle:
		return "Habit name (e.g., Read 20 pages)"
	case stepIcon:
		return "Icon (emoji, default ✓)"
	case stepGoal:
		return "Days per week, 1-7 (default 7)"
	case stepTarget:
		return "Daily target, e.g. 8 (empty for yes/no)"
	case stepUnit:
		return "Unit (e.g., glasses)"
	case stepReminder:
		return "Reminder HH:MM (empty for none)"
	}
	return ""
}

func (f *habitForm) charLimit() int {
	switch f.step {
	case stepTitle:
		return 60
	case stepIcon:
		return 16
	case stepGoal:
		return 1
	case stepTarget:
		return 5
	case stepUnit:
		return 20
	case stepReminder:
		return 5
	}
	return 0
}

// Prompt is the label shown before the input.
func (f *habitForm) Prompt() string {
	switch f.step {
	case stepTitle:
		return "Name: "
	case stepIcon:
		return "Icon: "
	case stepGoal:
		return "Goal: "
	case stepTarget:
		return "Target: "
	case stepUnit:
		return "Unit: "
	case stepReminder:
		return "Remind: "
	}
	return ""
}

// submit validates the current answer. It advances and reports whether the
// form is complete; on a bad answer it stays put and sets err.
func (f *habitForm) submit() bool {
	value := strings.TrimSpace(f.input.Value())

	switch f.step {
	case stepTitle:
		if value == "" {
			f.err = "name is required"
			return false
		}
		f.draft.Title = value
		f.enter(stepIcon)

	case stepIcon:
		f.draft.Icon = value
		f.enter(stepGoal)

	case stepGoal:
		if value == "" {
			f.draft.GoalDaysPerWeek = 0
		} else {
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 || n > 7 {
				f.err = "goal must be a number from 1 to 7"
				return false
			}
			f.draft.GoalDaysPerWeek = n
		}
		f.enter(stepTarget)

	case stepTarget:
		if value == "" || value == "0" {
			f.draft.TargetValue = 0
			f.draft.Unit = ""
			f.enter(stepReminder)
			return false
		}
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			f.err = "target must be a positive number"
			return false
		}
		f.draft.TargetValue = n
		f.enter(stepUnit)

	case stepUnit:
		f.draft.Unit = value
		f.enter(stepReminder)

	case stepReminder:
		if value != "" {
			c, err := dates.ParseClock(value)
			if err != nil {
				f.err = fmt.Sprintf("%q is not a time like 07:30", value)
				return false
			}
			value = c.String()
		}
		f.draft.ReminderTime = value
		f.step = stepDone
		f.input.Blur()
		return true
	}
	return false
}

// Update forwards input events to the active text field.
func (f *habitForm) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return cmd
}

// SetWidth resizes the text field.
func (f *habitForm) SetWidth(width int) {
	f.input.Width = max(10, width)
}
