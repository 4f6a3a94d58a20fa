package ui

import (
	"context"
	"testing"
	"time"

	"habits/internal/config"
	"habits/internal/engine"
	"habits/internal/habit"
	"habits/internal/storage"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// testNow is a Wednesday afternoon.
var testNow = time.Date(2025, 12, 17, 15, 0, 0, 0, time.UTC)

// setupTest prepares the test environment for deterministic rendering.
func setupTest(t *testing.T) {
	t.Helper()
	// Use ASCII profile to disable all color codes in output
	lipgloss.SetColorProfile(termenv.Ascii)
}

// createTestEngine returns a loaded engine over a JSON store in a temporary
// directory, with the clock pinned to testNow.
func createTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	store, err := storage.Open(storage.BackendJSON, t.TempDir(), nil)
	if err != nil {
		t.Fatalf("failed to create test storage: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	eng := engine.New(store, nil)
	eng.SetNowFunc(func() time.Time { return testNow })
	eng.Load(context.Background())
	return eng
}

// createTestHabit adds an active habit through the engine.
func createTestHabit(t *testing.T, eng *engine.Engine, d engine.Draft) habit.Habit {
	t.Helper()
	h, err := eng.Create(context.Background(), d)
	if err != nil {
		t.Fatalf("Create(%q) error = %v", d.Title, err)
	}
	return h
}

// createTestStyles creates a default Styles instance for testing.
func createTestStyles() *Styles {
	return NewStylesFromTheme(&config.ThemeConfig{})
}

// createTestApp builds an app over eng, sized to width, with habits loaded.
func createTestApp(t *testing.T, eng *engine.Engine, width int) *App {
	t.Helper()
	app := NewApp(eng, createTestStyles(), &AppConfig{
		Keys:                  &config.KeysConfig{},
		ConfirmDeletions:      true,
		NarrowLayoutThreshold: 100,
	})
	app.Update(tea.WindowSizeMsg{Width: width, Height: 40})
	drain(app, loadHabitsCmd(eng))
	return app
}

// send delivers msg to the app and runs the engine commands that follow.
func send(app *App, msg tea.Msg) {
	_, cmd := app.Update(msg)
	drain(app, cmd)
}

// drain executes cmd and feeds engine result messages back into the app.
// Other messages are dropped so timer-based commands such as cursor blinks
// are never started.
func drain(app *App, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			drain(app, c)
		}
	case habitsLoadedMsg, habitSavedMsg, habitToggledMsg, progressUpdatedMsg,
		habitArchivedMsg, habitRestoredMsg, habitDeletedMsg, habitsReorderedMsg,
		datesShiftedMsg:
		_, next := app.Update(msg)
		drain(app, next)
	}
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}
