// Package ui provides the terminal user interface for habits.
// This file defines message types for async engine operations using the
// Bubble Tea command pattern. Every mutation returns one of these messages
// so the event loop never blocks on disk I/O.
package ui

import (
	"time"

	"habits/internal/habit"
)

// habitsLoadedMsg carries a snapshot of both collections.
type habitsLoadedMsg struct {
	active   []habit.Habit
	archived []habit.Habit
	now      time.Time
}

// habitSavedMsg is sent when a habit is created or edited.
type habitSavedMsg struct {
	title   string
	created bool
	err     error
}

// habitToggledMsg is sent when a habit's completion for today is toggled.
type habitToggledMsg struct {
	id    string
	title string
	err   error
}

// progressUpdatedMsg is sent after a quantitative habit's count changes.
type progressUpdatedMsg struct {
	id    string
	delta int
	err   error
}

// habitArchivedMsg is sent when a habit moves to the archive.
type habitArchivedMsg struct {
	title string
	err   error
}

// habitRestoredMsg is sent when an archived habit becomes active again.
type habitRestoredMsg struct {
	title string
	err   error
}

// habitDeletedMsg is sent when an archived habit is removed for good.
type habitDeletedMsg struct {
	title string
	err   error
}

// habitsReorderedMsg is sent after the active list order changes.
type habitsReorderedMsg struct {
	err error
}

// datesShiftedMsg is sent after every stored date moved by days.
type datesShiftedMsg struct {
	days int
	err  error
}
