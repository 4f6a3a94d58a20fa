package ui

import (
	"fmt"
	"strings"

	"habits/internal/config"
	"habits/internal/engine"
	"habits/internal/habit"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// ArchivedPane lists archived habits, most recently archived first.
type ArchivedPane struct {
	engine  *engine.Engine
	habits  []habit.Habit
	cursor  int
	focused bool
	width   int
	height  int
	styles  *Styles

	keys ArchivedKeyMap
}

// NewArchivedPane creates the archived pane with custom key bindings.
func NewArchivedPane(eng *engine.Engine, styles *Styles, keyCfg *config.KeysConfig) *ArchivedPane {
	return &ArchivedPane{
		engine: eng,
		styles: styles,
		keys:   NewArchivedKeyMap(keyCfg),
	}
}

func (p *ArchivedPane) setHabits(list []habit.Habit) {
	p.habits = list
	if p.cursor >= len(p.habits) {
		p.cursor = max(0, len(p.habits)-1)
	}
}

// SetSize sets the pane dimensions.
func (p *ArchivedPane) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetFocused sets whether this pane is focused.
func (p *ArchivedPane) SetFocused(focused bool) {
	p.focused = focused
}

// Selected returns the habit under the cursor.
func (p *ArchivedPane) Selected() (habit.Habit, bool) {
	if p.cursor < 0 || p.cursor >= len(p.habits) {
		return habit.Habit{}, false
	}
	return p.habits[p.cursor], true
}

// Update handles messages for the archived pane. Delete is returned as a
// command directly; the App intercepts it first when deletions need
// confirming.
func (p *ArchivedPane) Update(msg tea.Msg) tea.Cmd {
	if !p.focused {
		return nil
	}

	switch msg := msg.(type) {
	case tea.MouseMsg:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			p.cursor = max(p.cursor-1, 0)
		case tea.MouseButtonWheelDown:
			p.cursor = max(0, min(p.cursor+1, len(p.habits)-1))
		case tea.MouseButtonLeft:
			// Title, margin and separator sit under the border.
			if row := msg.Y - 4; msg.Action == tea.MouseActionPress && row >= 0 && row < len(p.habits) {
				p.cursor = row
			}
		}
		return nil

	case tea.KeyMsg:
		if cursor, ok := p.keys.move(msg, p.cursor, len(p.habits)); ok {
			p.cursor = cursor
			return nil
		}

		switch {
		case key.Matches(msg, p.keys.Restore):
			if h, ok := p.Selected(); ok {
				return restoreHabitCmd(p.engine, h.ID, h.Title)
			}
		case key.Matches(msg, p.keys.Delete):
			if h, ok := p.Selected(); ok {
				return deleteHabitCmd(p.engine, h.ID, h.Title)
			}
		}
	}
	return nil
}

// View renders the archived pane.
func (p *ArchivedPane) View() string {
	var b strings.Builder

	b.WriteString(p.styles.PaneTitleStyle.Render("📦 ARCHIVED"))
	b.WriteString("\n")

	sepWidth := p.width - 4
	if sepWidth < 10 {
		sepWidth = 30
	}
	b.WriteString(p.styles.StatLabelStyle.Render(strings.Repeat("─", sepWidth)))
	b.WriteString("\n")

	if len(p.habits) == 0 {
		b.WriteString("\n")
		b.WriteString(p.styles.StatLabelStyle.Render("  Nothing archived."))
		b.WriteString("\n")
	} else {
		textWidth := max(p.width-4-2-14, 8)
		for i := range p.habits {
			h := &p.habits[i]
			label := truncateText(h.Icon+" "+h.Title, textWidth)
			total := fmt.Sprintf("%d done", len(h.CompletedDates))

			if i == p.cursor && p.focused {
				b.WriteString(p.styles.HabitSelectedStyle.Render("▶ " + label + "  " + total))
			} else {
				b.WriteString("  " + p.styles.HabitArchivedStyle.Render(label) + "  " + p.styles.StatLabelStyle.Render(total))
			}
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
