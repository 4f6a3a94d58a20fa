package ui

import (
	"strings"
	"testing"
	"time"

	"habits/internal/engine"

	tea "github.com/charmbracelet/bubbletea"
)

func TestApp_LayoutModeTransitions(t *testing.T) {
	app := createTestApp(t, createTestEngine(t), 160)

	tests := []struct {
		name         string
		width        int
		expectedMode LayoutMode
	}{
		{"Very narrow (40)", 40, LayoutNarrow},
		{"Below threshold (99)", 99, LayoutNarrow},
		{"At threshold (100)", 100, LayoutWide},
		{"Very wide (200)", 200, LayoutWide},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app.Update(tea.WindowSizeMsg{Width: tc.width, Height: 30})
			if app.layoutMode != tc.expectedMode {
				t.Errorf("width %d: layout mode = %v, want %v", tc.width, app.layoutMode, tc.expectedMode)
			}
		})
	}
}

func TestApp_NarrowLayoutShowsOnlyActivePane(t *testing.T) {
	setupTest(t)
	app := createTestApp(t, createTestEngine(t), 60)

	if app.activePane != PaneToday {
		t.Fatalf("default pane = %v, want PaneToday", app.activePane)
	}

	view := app.View()
	if !strings.Contains(view, "[Today]") {
		t.Error("expected [Today] tab highlighted in narrow mode")
	}
	if !strings.Contains(view, "Archived") || !strings.Contains(view, "Stats") {
		t.Error("expected the other tabs in narrow mode")
	}
	if !strings.Contains(view, "TODAY") {
		t.Error("expected the today pane")
	}
	if strings.Contains(view, "📦 ARCHIVED") {
		t.Error("archived pane should be hidden in narrow mode")
	}

	send(app, keyPress("3"))
	view = app.View()
	if !strings.Contains(view, "[Stats]") || !strings.Contains(view, "STATS") {
		t.Error("expected the stats pane after pressing 3")
	}
}

func TestApp_WideLayoutShowsAllPanes(t *testing.T) {
	setupTest(t)
	app := createTestApp(t, createTestEngine(t), 160)

	view := app.View()
	for _, want := range []string{"TODAY", "ARCHIVED", "STATS", " habits ", "Wed Dec 17"} {
		if !strings.Contains(view, want) {
			t.Errorf("wide view missing %q", want)
		}
	}
}

func TestApp_PaneSwitching(t *testing.T) {
	app := createTestApp(t, createTestEngine(t), 160)

	send(app, keyPress("tab"))
	if app.activePane != PaneArchived || !app.archivedPane.focused || app.todayPane.focused {
		t.Errorf("after tab: pane = %v", app.activePane)
	}
	send(app, keyPress("tab"))
	if app.activePane != PaneStats || !app.statsPane.focused {
		t.Errorf("after second tab: pane = %v", app.activePane)
	}
	send(app, keyPress("tab"))
	if app.activePane != PaneToday {
		t.Errorf("tab should wrap to today, got %v", app.activePane)
	}

	send(app, keyPress("2"))
	if app.activePane != PaneArchived {
		t.Errorf("after 2: pane = %v", app.activePane)
	}
	send(app, keyPress("1"))
	if app.activePane != PaneToday {
		t.Errorf("after 1: pane = %v", app.activePane)
	}
}

func TestApp_ToggleWithKey(t *testing.T) {
	eng := createTestEngine(t)
	h := createTestHabit(t, eng, engine.Draft{Title: "Read", Icon: "📚"})
	app := createTestApp(t, eng, 160)

	send(app, keyPress(" "))
	if got, _, _ := eng.Find(h.ID); !eng.IsCompletedToday(&got) {
		t.Fatal("space did not complete the habit")
	}
	if done, total := app.todayPane.Progress(); done != 1 || total != 1 {
		t.Errorf("Progress() = %d/%d, want 1/1", done, total)
	}

	send(app, keyPress("enter"))
	if got, _, _ := eng.Find(h.ID); eng.IsCompletedToday(&got) {
		t.Error("enter did not toggle the habit back")
	}
}

func TestApp_ProgressKeys(t *testing.T) {
	eng := createTestEngine(t)
	h := createTestHabit(t, eng, engine.Draft{Title: "Water", TargetValue: 2, Unit: "glasses"})
	app := createTestApp(t, eng, 160)

	send(app, keyPress("+"))
	got, _, _ := eng.Find(h.ID)
	if got.ProgressOn(testNow) != 1 || eng.IsCompletedToday(&got) {
		t.Fatalf("after +: progress = %d", got.ProgressOn(testNow))
	}
	send(app, keyPress("+"))
	got, _, _ = eng.Find(h.ID)
	if !eng.IsCompletedToday(&got) {
		t.Error("reaching the target should complete the habit")
	}
	send(app, keyPress("-"))
	got, _, _ = eng.Find(h.ID)
	if got.ProgressOn(testNow) != 1 {
		t.Errorf("after -: progress = %d, want 1", got.ProgressOn(testNow))
	}
}

func TestApp_AddHabitThroughForm(t *testing.T) {
	eng := createTestEngine(t)
	app := createTestApp(t, eng, 160)

	send(app, keyPress("a"))
	if !app.todayPane.IsEditing() {
		t.Fatal("a did not open the form")
	}

	// Global keys are typed into the form while it is open.
	app.Update(keyPress("q"))
	if app.quitting {
		t.Fatal("q quit while editing")
	}

	steps := []string{"Stretch", "🧘", "5", "", "07:30"}
	for _, value := range steps {
		app.todayPane.form.input.SetValue(value)
		send(app, keyPress("enter"))
	}

	if app.todayPane.IsEditing() {
		t.Fatalf("form still open, err = %q", app.todayPane.form.err)
	}
	list := eng.Habits()
	if len(list) != 1 {
		t.Fatalf("len(Habits()) = %d, want 1", len(list))
	}
	h := list[0]
	if h.Title != "Stretch" || h.Icon != "🧘" || h.GoalDaysPerWeek != 5 || h.ReminderTime != "07:30" || h.IsQuantitative() {
		t.Errorf("created habit = %+v", h)
	}
	if !strings.Contains(app.status, "Stretch") {
		t.Errorf("status = %q, want it to name the habit", app.status)
	}
	if len(app.todayPane.habits) != 1 {
		t.Error("today pane was not reloaded")
	}
}

func TestApp_FormCancel(t *testing.T) {
	eng := createTestEngine(t)
	app := createTestApp(t, eng, 160)

	send(app, keyPress("a"))
	app.todayPane.form.input.SetValue("Half typed")
	send(app, keyPress("esc"))

	if app.todayPane.IsEditing() {
		t.Error("esc did not close the form")
	}
	if len(eng.Habits()) != 0 {
		t.Error("cancelled form created a habit")
	}
}

func TestApp_EditHabit(t *testing.T) {
	eng := createTestEngine(t)
	h := createTestHabit(t, eng, engine.Draft{Title: "Read", Icon: "📚", GoalDaysPerWeek: 3})
	app := createTestApp(t, eng, 160)

	send(app, keyPress("e"))
	if !app.todayPane.IsEditing() || !app.todayPane.form.editing() {
		t.Fatal("e did not open the edit form")
	}
	if got := app.todayPane.form.input.Value(); got != "Read" {
		t.Errorf("title prefill = %q, want Read", got)
	}

	app.todayPane.form.input.SetValue("Read more")
	for i := 0; i < 6 && app.todayPane.IsEditing(); i++ {
		send(app, keyPress("enter"))
	}

	got, _, _ := eng.Find(h.ID)
	if got.Title != "Read more" || got.Icon != "📚" || got.GoalDaysPerWeek != 3 {
		t.Errorf("edited habit = %+v", got)
	}
}

func TestApp_ArchiveRestoreDelete(t *testing.T) {
	setupTest(t)
	eng := createTestEngine(t)
	h := createTestHabit(t, eng, engine.Draft{Title: "Read"})
	app := createTestApp(t, eng, 160)

	send(app, keyPress("x"))
	if _, archived, _ := eng.Find(h.ID); !archived {
		t.Fatal("x did not archive the habit")
	}
	if len(app.archivedPane.habits) != 1 {
		t.Fatal("archived pane was not reloaded")
	}

	send(app, keyPress("2"))
	send(app, keyPress("r"))
	if _, archived, ok := eng.Find(h.ID); !ok || archived {
		t.Fatal("r did not restore the habit")
	}

	send(app, keyPress("1"))
	send(app, keyPress("x"))
	send(app, keyPress("2"))

	// Delete asks first.
	send(app, keyPress("D"))
	if app.confirmDel == nil {
		t.Fatal("D did not ask for confirmation")
	}
	if view := app.View(); !strings.Contains(view, "Delete habit forever?") {
		t.Error("confirmation overlay not shown")
	}
	send(app, keyPress("n"))
	if app.confirmDel != nil {
		t.Fatal("n did not dismiss the confirmation")
	}
	if _, _, ok := eng.Find(h.ID); !ok {
		t.Fatal("declined delete removed the habit")
	}

	send(app, keyPress("D"))
	send(app, keyPress("y"))
	if _, _, ok := eng.Find(h.ID); ok {
		t.Error("confirmed delete left the habit")
	}
	if len(app.archivedPane.habits) != 0 {
		t.Error("archived pane still lists the deleted habit")
	}
}

func TestApp_DeleteWithoutConfirmation(t *testing.T) {
	eng := createTestEngine(t)
	h := createTestHabit(t, eng, engine.Draft{Title: "Read"})
	app := createTestApp(t, eng, 160)
	app.config.ConfirmDeletions = false

	send(app, keyPress("x"))
	send(app, keyPress("2"))
	send(app, keyPress("D"))
	if _, _, ok := eng.Find(h.ID); ok {
		t.Error("D did not delete straight away")
	}
}

func TestApp_ReorderWithKeys(t *testing.T) {
	eng := createTestEngine(t)
	a := createTestHabit(t, eng, engine.Draft{Title: "A"})
	b := createTestHabit(t, eng, engine.Draft{Title: "B"})
	app := createTestApp(t, eng, 160)

	send(app, keyPress("J"))
	list := eng.Habits()
	if list[0].ID != b.ID || list[1].ID != a.ID {
		t.Errorf("order = %s,%s, want B,A", list[0].Title, list[1].Title)
	}
	if app.todayPane.cursor != 1 {
		t.Errorf("cursor = %d, want to follow the moved habit", app.todayPane.cursor)
	}
}

func TestApp_ShiftDayFromStats(t *testing.T) {
	eng := createTestEngine(t)
	h := createTestHabit(t, eng, engine.Draft{Title: "Read"})
	app := createTestApp(t, eng, 160)

	send(app, keyPress(" "))
	send(app, keyPress("3"))
	send(app, keyPress("t"))

	got, _, _ := eng.Find(h.ID)
	if eng.IsCompletedToday(&got) {
		t.Error("after simulating the next day the habit should be pending")
	}
	if !strings.Contains(app.status, "-1") {
		t.Errorf("status = %q", app.status)
	}
}

func TestApp_ErrorStatus(t *testing.T) {
	app := createTestApp(t, createTestEngine(t), 160)

	send(app, habitToggledMsg{id: "x", err: engine.ErrInvalid})
	if !app.statusErr || !strings.HasPrefix(app.status, "Toggle habit:") {
		t.Errorf("status = %q (err %v)", app.status, app.statusErr)
	}
}

func TestApp_StatusExpires(t *testing.T) {
	app := createTestApp(t, createTestEngine(t), 160)

	app.SetStatus("hello", false)
	app.statusUntil = time.Now().Add(-time.Second)
	app.Update(tickMsg(time.Now()))
	if app.status != "" {
		t.Errorf("status = %q, want expired", app.status)
	}
}

func TestApp_DayChangeReloads(t *testing.T) {
	eng := createTestEngine(t)
	app := createTestApp(t, eng, 160)
	if app.loadedDay != "2025-12-17" {
		t.Fatalf("loadedDay = %q", app.loadedDay)
	}

	eng.SetNowFunc(func() time.Time { return testNow.AddDate(0, 0, 1) })
	_, cmd := app.Update(tickMsg(time.Now()))
	if cmd == nil {
		t.Fatal("tick returned no command")
	}
	// The batch holds the next tick and a reload; run only the reload.
	drain(app, loadHabitsCmd(eng))
	if app.loadedDay != "2025-12-18" {
		t.Errorf("loadedDay = %q after reload", app.loadedDay)
	}
}

func TestApp_HelpOverlay(t *testing.T) {
	setupTest(t)
	app := createTestApp(t, createTestEngine(t), 160)

	send(app, keyPress("?"))
	if !app.showHelp {
		t.Fatal("? did not open help")
	}
	if view := app.View(); !strings.Contains(view, "Keyboard Shortcuts") {
		t.Error("help overlay not rendered")
	}

	// Keys do not reach panes while help is open.
	send(app, keyPress("3"))
	if app.activePane != PaneToday {
		t.Error("key leaked through the help overlay")
	}

	send(app, keyPress("esc"))
	if app.showHelp {
		t.Error("esc did not close help")
	}
}

func TestApp_QuitShowsGoodbye(t *testing.T) {
	setupTest(t)
	eng := createTestEngine(t)
	createTestHabit(t, eng, engine.Draft{Title: "Read"})
	createTestHabit(t, eng, engine.Draft{Title: "Run"})
	app := createTestApp(t, eng, 160)
	send(app, keyPress(" "))

	_, cmd := app.Update(keyPress("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
	view := app.View()
	if !strings.Contains(view, "See you tomorrow") || !strings.Contains(view, "50%") {
		t.Errorf("goodbye = %q", view)
	}
}
