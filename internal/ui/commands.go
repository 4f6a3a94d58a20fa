// Package ui provides the terminal user interface for habits.
// This file contains tea.Cmd factories that wrap engine operations. The
// engine persists before returning, so these run off the event loop. Each
// command returns a message type defined in messages.go.
package ui

import (
	"context"
	"time"

	"habits/internal/engine"

	tea "github.com/charmbracelet/bubbletea"
)

// opTimeout bounds one engine mutation, which includes a store write.
const opTimeout = 10 * time.Second

func opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), opTimeout)
}

// loadHabitsCmd returns a command that snapshots the engine collections.
func loadHabitsCmd(eng *engine.Engine) tea.Cmd {
	return func() tea.Msg {
		return habitsLoadedMsg{
			active:   eng.Habits(),
			archived: eng.ArchivedHabits(),
			now:      eng.Now(),
		}
	}
}

// createHabitCmd returns a command that adds a new active habit.
func createHabitCmd(eng *engine.Engine, d engine.Draft) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := opContext()
		defer cancel()
		h, err := eng.Create(ctx, d)
		return habitSavedMsg{title: h.Title, created: true, err: err}
	}
}

// updateHabitCmd returns a command that replaces a habit's editable fields.
func updateHabitCmd(eng *engine.Engine, id string, d engine.Draft) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := opContext()
		defer cancel()
		err := eng.Update(ctx, id, d)
		return habitSavedMsg{title: d.Title, err: err}
	}
}

// toggleHabitCmd returns a command that toggles a habit for today.
func toggleHabitCmd(eng *engine.Engine, id, title string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := opContext()
		defer cancel()
		err := eng.Toggle(ctx, id)
		return habitToggledMsg{id: id, title: title, err: err}
	}
}

// progressCmd returns a command that adjusts today's count by delta.
func progressCmd(eng *engine.Engine, id string, delta int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := opContext()
		defer cancel()
		err := eng.UpdateProgress(ctx, id, delta)
		return progressUpdatedMsg{id: id, delta: delta, err: err}
	}
}

// archiveHabitCmd returns a command that archives an active habit.
func archiveHabitCmd(eng *engine.Engine, id, title string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := opContext()
		defer cancel()
		err := eng.Archive(ctx, id)
		return habitArchivedMsg{title: title, err: err}
	}
}

// restoreHabitCmd returns a command that restores an archived habit.
func restoreHabitCmd(eng *engine.Engine, id, title string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := opContext()
		defer cancel()
		err := eng.Restore(ctx, id)
		return habitRestoredMsg{title: title, err: err}
	}
}

// deleteHabitCmd returns a command that permanently removes an archived habit.
func deleteHabitCmd(eng *engine.Engine, id, title string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := opContext()
		defer cancel()
		err := eng.Delete(ctx, id)
		return habitDeletedMsg{title: title, err: err}
	}
}

// reorderHabitsCmd returns a command that stores a new active order.
func reorderHabitsCmd(eng *engine.Engine, ids []string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := opContext()
		defer cancel()
		return habitsReorderedMsg{err: eng.Reorder(ctx, ids)}
	}
}

// shiftDatesCmd returns a command that moves all history by days.
func shiftDatesCmd(eng *engine.Engine, days int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := opContext()
		defer cancel()
		return datesShiftedMsg{days: days, err: eng.DebugShiftAllDates(ctx, days)}
	}
}
