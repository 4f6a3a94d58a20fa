package ui

import (
	"context"
	"testing"

	"habits/internal/config"
	"habits/internal/engine"

	tea "github.com/charmbracelet/bubbletea"
)

func click(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress}
}

func TestApp_MousePaneSwitching(t *testing.T) {
	app := createTestApp(t, createTestEngine(t), 160)

	send(app, click(app.paneStarts[PaneArchived]+5, 5))
	if app.activePane != PaneArchived {
		t.Errorf("pane = %v after clicking archived", app.activePane)
	}

	send(app, click(app.paneStarts[PaneStats]+5, 5))
	if app.activePane != PaneStats {
		t.Errorf("pane = %v after clicking stats", app.activePane)
	}

	send(app, click(5, 5))
	if app.activePane != PaneToday {
		t.Errorf("pane = %v after clicking today", app.activePane)
	}
}

func TestApp_MouseTabBar(t *testing.T) {
	app := createTestApp(t, createTestEngine(t), 90)
	if app.layoutMode != LayoutNarrow {
		t.Fatal("expected narrow layout")
	}

	send(app, click(45, app.contentTop-1))
	if app.activePane != PaneArchived {
		t.Errorf("pane = %v after clicking middle tab", app.activePane)
	}
	send(app, click(85, app.contentTop-1))
	if app.activePane != PaneStats {
		t.Errorf("pane = %v after clicking last tab", app.activePane)
	}
}

func TestApp_MouseClosesHelp(t *testing.T) {
	app := createTestApp(t, createTestEngine(t), 160)
	app.showHelp = true

	send(app, click(50, 15))
	if app.showHelp {
		t.Error("click did not close help")
	}
}

func TestApp_MouseCancelsConfirmation(t *testing.T) {
	app := createTestApp(t, createTestEngine(t), 160)
	app.confirmDel = &confirmDeleteState{title: "Delete habit forever?"}

	send(app, click(50, 15))
	if app.confirmDel != nil {
		t.Error("click did not cancel the confirmation")
	}
	if app.status != "Canceled" {
		t.Errorf("status = %q", app.status)
	}
}

func TestTodayPane_MouseSelectAndToggle(t *testing.T) {
	eng := createTestEngine(t)
	createTestHabit(t, eng, engine.Draft{Title: "A"})
	b := createTestHabit(t, eng, engine.Draft{Title: "B"})
	createTestHabit(t, eng, engine.Draft{Title: "C"})

	pane := NewTodayPane(eng, createTestStyles(), &config.KeysConfig{})
	pane.setHabits(eng.Habits(), testNow)
	pane.SetSize(70, 30)
	pane.SetFocused(true)

	// Clicking the name selects.
	if cmd := pane.Update(click(20, headerRows+2)); cmd != nil {
		t.Error("clicking a name should not toggle")
	}
	if pane.cursor != 2 {
		t.Errorf("cursor = %d, want 2", pane.cursor)
	}

	// Clicking the checkbox toggles.
	cmd := pane.Update(click(3, headerRows+1))
	if pane.cursor != 1 || cmd == nil {
		t.Fatalf("cursor = %d, cmd = %v", pane.cursor, cmd)
	}
	msg, ok := cmd().(habitToggledMsg)
	if !ok || msg.err != nil || msg.id != b.ID {
		t.Fatalf("toggle msg = %+v", msg)
	}
	got, _, _ := eng.Find(b.ID)
	if !eng.IsCompletedToday(&got) {
		t.Error("checkbox click did not complete the habit")
	}

	// Clicks below the list are ignored.
	pane.Update(click(20, headerRows+10))
	if pane.cursor != 1 {
		t.Errorf("cursor moved to %d on empty row", pane.cursor)
	}
}

func TestTodayPane_MouseScroll(t *testing.T) {
	eng := createTestEngine(t)
	for _, title := range []string{"A", "B", "C"} {
		createTestHabit(t, eng, engine.Draft{Title: title})
	}
	pane := NewTodayPane(eng, createTestStyles(), nil)
	pane.setHabits(eng.Habits(), testNow)
	pane.SetSize(70, 30)
	pane.SetFocused(true)

	down := tea.MouseMsg{Button: tea.MouseButtonWheelDown}
	up := tea.MouseMsg{Button: tea.MouseButtonWheelUp}

	pane.Update(down)
	pane.Update(down)
	pane.Update(down)
	if pane.cursor != 2 {
		t.Errorf("cursor = %d after scrolling past the end, want 2", pane.cursor)
	}
	pane.Update(up)
	if pane.cursor != 1 {
		t.Errorf("cursor = %d after scrolling up, want 1", pane.cursor)
	}
}

func TestArchivedPane_MouseSelection(t *testing.T) {
	eng := createTestEngine(t)
	for _, title := range []string{"A", "B"} {
		h := createTestHabit(t, eng, engine.Draft{Title: title})
		if err := eng.Archive(context.Background(), h.ID); err != nil {
			t.Fatal(err)
		}
	}
	pane := NewArchivedPane(eng, createTestStyles(), nil)
	pane.setHabits(eng.ArchivedHabits())
	pane.SetSize(40, 20)
	pane.SetFocused(true)

	pane.Update(click(5, 5))
	if pane.cursor != 1 {
		t.Errorf("cursor = %d, want 1", pane.cursor)
	}
	pane.Update(click(5, 9))
	if pane.cursor != 1 {
		t.Errorf("cursor moved to %d on empty row", pane.cursor)
	}
	pane.Update(tea.MouseMsg{Button: tea.MouseButtonWheelUp})
	if pane.cursor != 0 {
		t.Errorf("cursor = %d after wheel up", pane.cursor)
	}
}
