// Package ui provides the terminal user interface for habits.
// This file defines key bindings using the Bubble Tea key package for
// type-safe key matching, help text generation, and user overrides.
package ui

import (
	"strings"

	"habits/internal/config"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// Helpers
// =============================================================================

// parseKeys splits a comma-separated string into individual keys.
// If the input is empty, returns the default keys. "space" is accepted as
// a readable name for the space bar.
func parseKeys(customKeys string, defaultKeys ...string) []string {
	if customKeys == "" {
		return defaultKeys
	}
	keys := strings.Split(customKeys, ",")
	result := make([]string, 0, len(keys))
	for _, k := range keys {
		trimmed := strings.TrimSpace(k)
		if trimmed == "space" {
			trimmed = " "
		}
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultKeys
	}
	return result
}

// helpLabel is the first key of a binding list as shown in help text.
func helpLabel(keys []string) string {
	if len(keys) == 0 {
		return ""
	}
	if keys[0] == " " {
		return "space"
	}
	return keys[0]
}

func binding(custom string, desc string, defaults ...string) key.Binding {
	keys := parseKeys(custom, defaults...)
	return key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(helpLabel(keys), desc),
	)
}

// =============================================================================
// Global Keys (available in all contexts)
// =============================================================================

// GlobalKeyMap defines keys available throughout the application.
type GlobalKeyMap struct {
	Quit     key.Binding
	Help     key.Binding
	NextView key.Binding
	Today    key.Binding
	Archived key.Binding
	Stats    key.Binding
}

// NewGlobalKeyMap creates global key bindings from config.
func NewGlobalKeyMap(cfg *config.KeysConfig) GlobalKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return GlobalKeyMap{
		Quit:     binding(cfg.Quit, "quit", "q", "ctrl+c"),
		Help:     binding(cfg.Help, "help", "?"),
		NextView: binding(cfg.NextView, "next view", "tab"),
		Today:    binding(cfg.Today, "today", "1"),
		Archived: binding(cfg.Archived, "archived", "2"),
		Stats:    binding(cfg.Stats, "stats", "3"),
	}
}

// =============================================================================
// Navigation Keys (shared by list-based panes)
// =============================================================================

// NavigationKeyMap defines keys for list navigation.
type NavigationKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
}

// NewNavigationKeyMap creates navigation key bindings from config.
func NewNavigationKeyMap(cfg *config.KeysConfig) NavigationKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return NavigationKeyMap{
		Up:     binding(cfg.Up, "up", "k", "up"),
		Down:   binding(cfg.Down, "down", "j", "down"),
		Top:    binding(cfg.Top, "top", "g", "home"),
		Bottom: binding(cfg.Bottom, "bottom", "G", "end"),
	}
}

// move applies a navigation key to cursor over n rows. It reports whether
// msg was a navigation key.
func (k NavigationKeyMap) move(msg tea.KeyMsg, cursor, n int) (int, bool) {
	if n == 0 {
		return 0, false
	}
	switch {
	case key.Matches(msg, k.Down):
		return min(cursor+1, n-1), true
	case key.Matches(msg, k.Up):
		return max(cursor-1, 0), true
	case key.Matches(msg, k.Top):
		return 0, true
	case key.Matches(msg, k.Bottom):
		return n - 1, true
	}
	return cursor, false
}

// =============================================================================
// Input Keys (shared by text input fields)
// =============================================================================

// InputKeyMap defines keys for text input mode.
type InputKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// NewInputKeyMap creates input key bindings from config.
func NewInputKeyMap(cfg *config.KeysConfig) InputKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return InputKeyMap{
		Confirm: binding(cfg.Confirm, "confirm", "enter"),
		Cancel:  binding(cfg.Cancel, "cancel", "esc"),
	}
}

// =============================================================================
// Today Pane Keys
// =============================================================================

// TodayKeyMap defines keys for the today pane.
type TodayKeyMap struct {
	Add       key.Binding
	Edit      key.Binding
	Toggle    key.Binding
	Increment key.Binding
	Decrement key.Binding
	Archive   key.Binding
	MoveUp    key.Binding
	MoveDown  key.Binding
	NavigationKeyMap
}

// NewTodayKeyMap creates today pane key bindings from config.
func NewTodayKeyMap(cfg *config.KeysConfig) TodayKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return TodayKeyMap{
		Add:              binding(cfg.Add, "add habit", "a"),
		Edit:             binding(cfg.Edit, "edit", "e"),
		Toggle:           binding(cfg.Toggle, "toggle today", "enter", " "),
		Increment:        binding(cfg.Increment, "progress +1", "+", "="),
		Decrement:        binding(cfg.Decrement, "progress -1", "-", "_"),
		Archive:          binding(cfg.Archive, "archive", "x"),
		MoveUp:           binding(cfg.MoveUp, "move up", "K", "shift+up"),
		MoveDown:         binding(cfg.MoveDown, "move down", "J", "shift+down"),
		NavigationKeyMap: NewNavigationKeyMap(cfg),
	}
}

// ShortHelp returns the short help for the today pane (implements help.KeyMap).
func (k TodayKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Toggle, k.Increment, k.Archive}
}

// FullHelp returns the full help for the today pane (implements help.KeyMap).
func (k TodayKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Add, k.Edit, k.Toggle, k.Increment, k.Decrement, k.Archive},
		{k.Up, k.Down, k.Top, k.Bottom, k.MoveUp, k.MoveDown},
	}
}

// =============================================================================
// Archived Pane Keys
// =============================================================================

// ArchivedKeyMap defines keys for the archived pane.
type ArchivedKeyMap struct {
	Restore key.Binding
	Delete  key.Binding
	NavigationKeyMap
}

// NewArchivedKeyMap creates archived pane key bindings from config.
func NewArchivedKeyMap(cfg *config.KeysConfig) ArchivedKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return ArchivedKeyMap{
		Restore:          binding(cfg.Restore, "restore", "r"),
		Delete:           binding(cfg.Delete, "delete forever", "D"),
		NavigationKeyMap: NewNavigationKeyMap(cfg),
	}
}

// ShortHelp returns the short help for the archived pane (implements help.KeyMap).
func (k ArchivedKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Restore, k.Delete, k.Down}
}

// FullHelp returns the full help for the archived pane (implements help.KeyMap).
func (k ArchivedKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Restore, k.Delete},
		{k.Up, k.Down, k.Top, k.Bottom},
	}
}

// =============================================================================
// Stats Pane Keys
// =============================================================================

// StatsKeyMap defines keys for the stats pane.
type StatsKeyMap struct {
	ShiftDay key.Binding
}

// NewStatsKeyMap creates stats pane key bindings from config.
func NewStatsKeyMap(cfg *config.KeysConfig) StatsKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return StatsKeyMap{
		ShiftDay: binding(cfg.ShiftDay, "simulate next day", "t"),
	}
}

// ShortHelp returns the short help for the stats pane (implements help.KeyMap).
func (k StatsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ShiftDay}
}

// FullHelp returns the full help for the stats pane (implements help.KeyMap).
func (k StatsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.ShiftDay}}
}

// =============================================================================
// Help Overlay Keys
// =============================================================================

// HelpKeyMap defines keys for the help overlay.
type HelpKeyMap struct {
	Close key.Binding
}

// DefaultHelpKeyMap returns the default help overlay key bindings.
func DefaultHelpKeyMap() HelpKeyMap {
	return HelpKeyMap{
		Close: key.NewBinding(
			key.WithKeys("?", "esc", "q", "enter", " "),
			key.WithHelp("any key", "close"),
		),
	}
}
