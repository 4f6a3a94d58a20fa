// Package ui provides the terminal user interface for habits.
// This file contains the main App model which coordinates all panes and
// routes messages using the Bubble Tea architecture.
package ui

import (
	"fmt"
	"strings"
	"time"

	"habits/internal/config"
	"habits/internal/dates"
	"habits/internal/engine"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// PaneID identifies each pane in the application.
type PaneID int

const (
	PaneToday PaneID = iota
	PaneArchived
	PaneStats
)

// LayoutMode determines how panes are arranged based on terminal width.
type LayoutMode int

const (
	// LayoutWide shows all three panes side-by-side.
	LayoutWide LayoutMode = iota
	// LayoutNarrow shows only the focused pane with a tab bar.
	LayoutNarrow
)

const defaultNarrowThreshold = 100

// AppConfig holds user configuration for the app behavior.
type AppConfig struct {
	Keys                  *config.KeysConfig
	ConfirmDeletions      bool
	NarrowLayoutThreshold int
	HeatmapDays           int
}

// App is the main application model that coordinates all panes.
type App struct {
	engine       *engine.Engine
	styles       *Styles
	config       *AppConfig
	todayPane    *TodayPane
	archivedPane *ArchivedPane
	statsPane    *StatsPane
	helpOverlay  *HelpOverlay
	confirmDel   *confirmDeleteState
	activePane   PaneID
	layoutMode   LayoutMode
	showHelp     bool
	width        int
	height       int
	status       string
	statusErr    bool
	statusUntil  time.Time
	quitting     bool

	// Day the panes were last loaded for; a change triggers a reload.
	loadedDay string

	// Key bindings
	keys     GlobalKeyMap
	helpKeys HelpKeyMap

	// Pane positions for mouse click detection (x coordinates)
	paneStarts [3]int
	paneEnds   [3]int
	contentTop int // Y coordinate where content starts
}

type confirmDeleteState struct {
	title string
	body  string
	cmd   tea.Cmd
}

// NewApp creates a new application. Data loading is deferred to Init()
// to keep the constructor non-blocking.
func NewApp(eng *engine.Engine, styles *Styles, cfg *AppConfig) *App {
	if cfg == nil {
		cfg = &AppConfig{
			Keys:             &config.KeysConfig{},
			ConfirmDeletions: true,
		}
	}
	if cfg.Keys == nil {
		cfg.Keys = &config.KeysConfig{}
	}

	app := &App{
		engine:       eng,
		styles:       styles,
		config:       cfg,
		todayPane:    NewTodayPane(eng, styles, cfg.Keys),
		archivedPane: NewArchivedPane(eng, styles, cfg.Keys),
		statsPane:    NewStatsPane(eng, styles, cfg.Keys, cfg.HeatmapDays),
		activePane:   PaneToday,
		keys:         NewGlobalKeyMap(cfg.Keys),
		helpKeys:     DefaultHelpKeyMap(),
	}
	app.helpOverlay = NewHelpOverlay(styles, app.keys,
		app.todayPane.keys, app.archivedPane.keys, app.statsPane.keys, app.todayPane.inputKeys)
	app.setActivePane(PaneToday)
	return app
}

// tickMsg is sent periodically for time updates.
type tickMsg time.Time

// tickCmd returns a command that sends a tick every second.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init initializes the app and loads the habits asynchronously.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		loadHabitsCmd(a.engine),
	)
}

// Update handles all messages and routes them appropriately.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Engine results are handled regardless of which pane is active.
	// Every successful mutation is followed by a reload so all panes
	// render the same snapshot.
	switch msg := msg.(type) {
	case habitsLoadedMsg:
		a.loadedDay = dates.DayKey(msg.now)
		a.todayPane.setHabits(msg.active, msg.now)
		a.archivedPane.setHabits(msg.archived)
		a.statsPane.setHabits(msg.active, msg.archived, msg.now)
		return a, nil

	case habitSavedMsg:
		if msg.err != nil {
			return a, a.failed("Save habit", msg.err)
		}
		if msg.created {
			a.SetStatus("Added: "+msg.title, false)
		} else {
			a.SetStatus("Saved: "+msg.title, false)
		}
		return a, loadHabitsCmd(a.engine)

	case habitToggledMsg:
		if msg.err != nil {
			return a, a.failed("Toggle habit", msg.err)
		}
		return a, loadHabitsCmd(a.engine)

	case progressUpdatedMsg:
		if msg.err != nil {
			return a, a.failed("Progress", msg.err)
		}
		return a, loadHabitsCmd(a.engine)

	case habitArchivedMsg:
		if msg.err != nil {
			return a, a.failed("Archive habit", msg.err)
		}
		a.SetStatus("Archived: "+msg.title, false)
		return a, loadHabitsCmd(a.engine)

	case habitRestoredMsg:
		if msg.err != nil {
			return a, a.failed("Restore habit", msg.err)
		}
		a.SetStatus("Restored: "+msg.title, false)
		return a, loadHabitsCmd(a.engine)

	case habitDeletedMsg:
		if msg.err != nil {
			return a, a.failed("Delete habit", msg.err)
		}
		a.SetStatus("Deleted: "+msg.title, false)
		return a, loadHabitsCmd(a.engine)

	case habitsReorderedMsg:
		if msg.err != nil {
			return a, a.failed("Reorder", msg.err)
		}
		return a, loadHabitsCmd(a.engine)

	case datesShiftedMsg:
		if msg.err != nil {
			return a, a.failed("Shift dates", msg.err)
		}
		a.SetStatus(fmt.Sprintf("History shifted %+d day(s)", msg.days), false)
		return a, loadHabitsCmd(a.engine)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if a.confirmDel != nil {
			switch msg.String() {
			case "y", "Y", "enter":
				cmd := a.confirmDel.cmd
				a.confirmDel = nil
				return a, cmd
			case "n", "N", "esc":
				a.confirmDel = nil
				a.SetStatus("Canceled", false)
				return a, nil
			default:
				return a, nil
			}
		}

		// Help overlay takes priority
		if a.showHelp {
			if key.Matches(msg, a.helpKeys.Close) {
				a.showHelp = false
			}
			return a, nil
		}

		if !a.todayPane.IsEditing() {
			if a.config.ConfirmDeletions && a.activePane == PaneArchived &&
				key.Matches(msg, a.archivedPane.keys.Delete) {
				h, ok := a.archivedPane.Selected()
				if !ok {
					a.SetStatus("No habit selected", true)
					return a, nil
				}
				a.confirmDel = &confirmDeleteState{
					title: "Delete habit forever?",
					body:  truncateText(h.Icon+" "+h.Title, 60),
					cmd:   deleteHabitCmd(a.engine, h.ID, h.Title),
				}
				return a, nil
			}

			// Global keys only when not in input mode
			switch {
			case key.Matches(msg, a.keys.Quit):
				a.quitting = true
				return a, tea.Quit

			case key.Matches(msg, a.keys.Help):
				a.showHelp = true
				return a, nil

			case key.Matches(msg, a.keys.NextView):
				a.switchPane()
				return a, nil

			case key.Matches(msg, a.keys.Today):
				a.setActivePane(PaneToday)
				return a, nil

			case key.Matches(msg, a.keys.Archived):
				a.setActivePane(PaneArchived)
				return a, nil

			case key.Matches(msg, a.keys.Stats):
				a.setActivePane(PaneStats)
				return a, nil
			}
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.updateLayout()
		return a, nil

	case tea.MouseMsg:
		return a, a.handleMouse(msg)

	case tickMsg:
		if a.status != "" && !a.statusUntil.IsZero() && time.Now().After(a.statusUntil) {
			a.status = ""
			a.statusErr = false
			a.statusUntil = time.Time{}
		}
		// Reload after midnight so "today" moves on.
		if a.loadedDay != "" && dates.DayKey(a.engine.Now()) != a.loadedDay {
			return a, tea.Batch(tickCmd(), loadHabitsCmd(a.engine))
		}
		return a, tickCmd()
	}

	if a.showHelp {
		return a, nil
	}

	// The form keeps receiving input (including cursor blinks) even when
	// another pane has focus in wide mode.
	if a.todayPane.IsEditing() {
		return a, a.todayPane.Update(msg)
	}
	return a, a.activeUpdate(msg)
}

// failed reports an engine error and reloads, since the engine may have
// rolled back an optimistic change the pane already shows.
func (a *App) failed(action string, err error) tea.Cmd {
	a.SetStatus(action+": "+err.Error(), true)
	return loadHabitsCmd(a.engine)
}

func (a *App) activeUpdate(msg tea.Msg) tea.Cmd {
	switch a.activePane {
	case PaneToday:
		return a.todayPane.Update(msg)
	case PaneArchived:
		return a.archivedPane.Update(msg)
	case PaneStats:
		return a.statsPane.Update(msg)
	}
	return nil
}

func (a *App) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if a.confirmDel != nil {
		if msg.Action == tea.MouseActionPress {
			a.confirmDel = nil
			a.SetStatus("Canceled", false)
		}
		return nil
	}

	// Any click closes help
	if a.showHelp {
		if msg.Action == tea.MouseActionPress {
			a.showHelp = false
		}
		return nil
	}

	if a.todayPane.IsEditing() {
		return nil
	}

	// Scroll wheel goes to the active pane.
	if msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown {
		localMsg := msg
		localMsg.Y = msg.Y - a.contentTop
		return a.activeUpdate(localMsg)
	}

	if msg.Action != tea.MouseActionPress {
		return nil
	}

	// In narrow mode, check for tab bar clicks
	if a.layoutMode == LayoutNarrow && msg.Y == a.contentTop-1 {
		tabWidth := max(a.width/3, 1)
		switch {
		case msg.X < tabWidth:
			a.setActivePane(PaneToday)
		case msg.X < tabWidth*2:
			a.setActivePane(PaneArchived)
		default:
			a.setActivePane(PaneStats)
		}
		return nil
	}

	if clicked := a.paneAtPosition(msg.X); clicked >= 0 && clicked != a.activePane {
		a.setActivePane(clicked)
	}

	if msg.Y < a.contentTop {
		return nil
	}
	localMsg := msg
	localMsg.Y = msg.Y - a.contentTop
	if a.layoutMode == LayoutWide {
		localMsg.X = msg.X - a.paneStarts[a.activePane]
	}
	return a.activeUpdate(localMsg)
}

// switchPane cycles through panes.
func (a *App) switchPane() {
	a.setActivePane((a.activePane + 1) % 3)
}

// setActivePane sets the active pane and updates focus states.
func (a *App) setActivePane(pane PaneID) {
	a.activePane = pane
	a.todayPane.SetFocused(pane == PaneToday)
	a.archivedPane.SetFocused(pane == PaneArchived)
	a.statsPane.SetFocused(pane == PaneStats)
}

// paneAtPosition returns which pane is at the given X coordinate.
// Returns -1 if no pane is at that position.
func (a *App) paneAtPosition(x int) PaneID {
	if a.layoutMode == LayoutNarrow {
		return a.activePane
	}
	for i := range a.paneStarts {
		if x >= a.paneStarts[i] && x < a.paneEnds[i] {
			return PaneID(i)
		}
	}
	return -1
}

// updateLayout recalculates pane sizes based on terminal dimensions.
func (a *App) updateLayout() {
	// Leave room for title bar and help bar
	contentHeight := max(a.height-4, 10)

	a.contentTop = 1
	a.helpOverlay.SetSize(a.width, a.height)

	totalWidth := a.width - 4

	threshold := a.config.NarrowLayoutThreshold
	if threshold <= 0 {
		threshold = defaultNarrowThreshold
	}

	if a.width < threshold {
		a.layoutMode = LayoutNarrow

		// Room for the tab bar
		narrowHeight := max(contentHeight-1, 8)
		paneWidth := max(totalWidth, 20)

		a.todayPane.SetSize(paneWidth, narrowHeight)
		a.archivedPane.SetSize(paneWidth, narrowHeight)
		a.statsPane.SetSize(paneWidth, narrowHeight)

		for i := range a.paneStarts {
			a.paneStarts[i] = 0
			a.paneEnds[i] = a.width
		}
		a.contentTop = 2
		return
	}

	a.layoutMode = LayoutWide

	var todayWidth, archivedWidth, statsWidth int
	if totalWidth < 150 {
		todayWidth = (totalWidth * 45) / 100
		archivedWidth = (totalWidth * 22) / 100
		statsWidth = totalWidth - todayWidth - archivedWidth - 2
	} else {
		todayWidth = min((totalWidth*45)/100, 80)
		archivedWidth = min((totalWidth*22)/100, 40)
		statsWidth = min(totalWidth-todayWidth-archivedWidth-2, 50)
	}

	a.todayPane.SetSize(todayWidth, contentHeight)
	a.archivedPane.SetSize(archivedWidth, contentHeight)
	a.statsPane.SetSize(statsWidth, contentHeight)

	// One space gap between panes
	widths := [3]int{todayWidth, archivedWidth, statsWidth}
	x := 0
	for i, w := range widths {
		a.paneStarts[i] = x
		a.paneEnds[i] = x + w
		x += w + 1
	}
}

// View renders the entire app.
func (a *App) View() string {
	if a.quitting {
		return a.renderGoodbye()
	}

	if a.confirmDel != nil {
		return a.renderConfirmDelete()
	}

	if a.showHelp {
		return a.helpOverlay.View()
	}

	var b strings.Builder

	b.WriteString(a.renderTitleBar())
	b.WriteString("\n")

	switch a.layoutMode {
	case LayoutNarrow:
		b.WriteString(a.renderNarrowContent())
	default:
		b.WriteString(a.renderWideContent())
	}
	b.WriteString("\n")

	b.WriteString(a.renderHelpBar())

	return b.String()
}

func (a *App) renderConfirmDelete() string {
	overlayWidth := 60
	if a.width > 0 {
		overlayWidth = min(60, max(20, a.width-4))
	}

	overlayStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(a.styles.ColorDanger).
		Padding(1, 2).
		Width(overlayWidth)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(a.styles.ColorDanger).
		MarginBottom(1)

	bodyStyle := lipgloss.NewStyle().
		Foreground(a.styles.ColorText)

	hintStyle := lipgloss.NewStyle().
		Foreground(a.styles.ColorTextMuted)

	var b strings.Builder
	b.WriteString(titleStyle.Render(a.confirmDel.title))
	b.WriteString("\n\n")
	b.WriteString(bodyStyle.Render(a.confirmDel.body))
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("Its history cannot be recovered."))
	b.WriteString("\n\n")
	b.WriteString(hintStyle.Render("[y/enter] delete    [n/esc] cancel"))

	content := overlayStyle.Render(b.String())
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, content)
}

// renderWideContent renders all three panes side by side.
func (a *App) renderWideContent() string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		a.todayPane.View(), " ", a.archivedPane.View(), " ", a.statsPane.View())
}

// renderNarrowContent renders the focused pane with a tab bar.
func (a *App) renderNarrowContent() string {
	var b strings.Builder

	b.WriteString(a.renderPaneTabs())
	b.WriteString("\n")

	switch a.activePane {
	case PaneToday:
		b.WriteString(a.todayPane.View())
	case PaneArchived:
		b.WriteString(a.archivedPane.View())
	case PaneStats:
		b.WriteString(a.statsPane.View())
	}

	return b.String()
}

// renderPaneTabs renders a tab bar showing available panes.
func (a *App) renderPaneTabs() string {
	tabs := []struct {
		id    PaneID
		label string
	}{
		{PaneToday, "Today"},
		{PaneArchived, "Archived"},
		{PaneStats, "Stats"},
	}

	activeTabStyle := lipgloss.NewStyle().
		Foreground(a.styles.ColorPrimary).
		Bold(true)
	inactiveTabStyle := lipgloss.NewStyle().
		Foreground(a.styles.ColorTextMuted)

	var parts []string
	for _, tab := range tabs {
		if tab.id == a.activePane {
			parts = append(parts, activeTabStyle.Render("["+tab.label+"]"))
		} else {
			parts = append(parts, inactiveTabStyle.Render(" "+tab.label+" "))
		}
	}

	tabBar := strings.Join(parts, "  ")
	if padding := (a.width - lipgloss.Width(tabBar)) / 2; padding > 0 {
		tabBar = strings.Repeat(" ", padding) + tabBar
	}
	return tabBar
}

// renderGoodbye shows an exit message with today's progress.
func (a *App) renderGoodbye() string {
	done, total := a.todayPane.Progress()

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  See you tomorrow!\n")
	b.WriteString("\n")

	if total > 0 {
		b.WriteString(fmt.Sprintf("  Today: %s\n", progressLabel(done, total)))
		if streak := a.todayPane.BestStreak(); streak > 0 {
			b.WriteString(fmt.Sprintf("  Best streak: %d 🔥\n", streak))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// renderTitleBar creates the top title bar with today's progress and date.
func (a *App) renderTitleBar() string {
	title := a.styles.TitleStyle.Render(" habits ")

	var stats string
	if done, total := a.todayPane.Progress(); total > 0 {
		stats = a.styles.StatLabelStyle.Render(fmt.Sprintf("Today: %d/%d", done, total))
	}

	date := a.styles.DateStyle.Render(a.engine.Now().Format("Mon Jan 2 · 15:04"))

	used := lipgloss.Width(title) + lipgloss.Width(stats) + lipgloss.Width(date)
	spacer := max(a.width-used-4, 2)

	var parts []string
	parts = append(parts, title)
	if stats != "" {
		parts = append(parts, "  "+stats)
	}
	parts = append(parts, strings.Repeat(" ", spacer), date)
	return strings.Join(parts, "")
}

// renderHelpBar creates the bottom help bar with context-sensitive hints.
func (a *App) renderHelpBar() string {
	if a.status != "" {
		if a.statusErr {
			return a.styles.ErrorStyle.Render(a.status)
		}
		return a.styles.StatusStyle.Render(a.status)
	}

	if a.todayPane.IsEditing() {
		in := a.todayPane.inputKeys
		return a.styles.RenderBindings(in.Confirm, in.Cancel)
	}

	g := a.keys
	switch a.activePane {
	case PaneToday:
		k := a.todayPane.keys
		return a.styles.RenderBindings(k.Add, k.Toggle, k.Increment, k.Edit, k.Archive, g.NextView, g.Help)
	case PaneArchived:
		k := a.archivedPane.keys
		return a.styles.RenderBindings(k.Restore, k.Delete, k.Down, g.NextView, g.Help)
	case PaneStats:
		return a.styles.RenderBindings(a.statsPane.keys.ShiftDay, g.NextView, g.Help)
	}

	return ""
}

// SetStatus sets a status message to display to the user.
func (a *App) SetStatus(msg string, isErr bool) {
	a.status = msg
	a.statusErr = isErr
	ttl := 5 * time.Second
	if isErr {
		ttl = 8 * time.Second
	}
	a.statusUntil = time.Now().Add(ttl)
}

// Run starts the Bubble Tea program over the given engine.
func Run(eng *engine.Engine, styles *Styles, cfg *AppConfig) error {
	app := NewApp(eng, styles, cfg)
	p := tea.NewProgram(app,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}
