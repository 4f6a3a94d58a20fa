package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// helpSection is one titled group of bindings in the help overlay.
type helpSection struct {
	title    string
	bindings []key.Binding
}

// HelpOverlay renders a help screen built from the active key maps, so
// custom bindings from the config show up as configured.
type HelpOverlay struct {
	width    int
	height   int
	styles   *Styles
	sections []helpSection
}

// NewHelpOverlay creates a new help overlay
func NewHelpOverlay(styles *Styles, global GlobalKeyMap, today TodayKeyMap, archived ArchivedKeyMap, stats StatsKeyMap, input InputKeyMap) *HelpOverlay {
	return &HelpOverlay{
		styles: styles,
		sections: []helpSection{
			{"Global", []key.Binding{global.NextView, global.Today, global.Archived, global.Stats, global.Help, global.Quit}},
			{"Today", flatten(today.FullHelp())},
			{"Archived", flatten(archived.FullHelp())},
			{"Stats", flatten(stats.FullHelp())},
			{"Input Mode", []key.Binding{input.Confirm, input.Cancel}},
		},
	}
}

func flatten(groups [][]key.Binding) []key.Binding {
	var out []key.Binding
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// SetSize sets the overlay dimensions
func (h *HelpOverlay) SetSize(width, height int) {
	h.width = width
	h.height = height
}

// View renders the help overlay
func (h *HelpOverlay) View() string {
	overlayWidth := 60
	if h.width > 0 {
		overlayWidth = min(60, max(20, h.width-4))
	}

	overlayStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(h.styles.ColorPrimary).
		Padding(1, 2).
		Width(overlayWidth)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(h.styles.ColorPrimary).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(h.styles.ColorAccent)

	keyStyle := lipgloss.NewStyle().
		Foreground(h.styles.ColorWarning).
		Width(14)

	descStyle := lipgloss.NewStyle().
		Foreground(h.styles.ColorText)

	mutedStyle := lipgloss.NewStyle().
		Foreground(h.styles.ColorTextMuted).
		Italic(true)

	var b strings.Builder

	b.WriteString(titleStyle.Render("📖 habits - Keyboard Shortcuts"))
	b.WriteString("\n")

	for _, s := range h.sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(s.title))
		b.WriteString("\n")
		for _, kb := range s.bindings {
			if !kb.Enabled() {
				continue
			}
			b.WriteString(keyStyle.Render(keyNames(kb)) + descStyle.Render(kb.Help().Desc) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Press ? or Esc to close"))

	content := overlayStyle.Render(b.String())

	return lipgloss.Place(
		h.width,
		h.height,
		lipgloss.Center,
		lipgloss.Center,
		content,
	)
}

// keyNames lists every key of a binding, e.g. "k / up".
func keyNames(kb key.Binding) string {
	keys := kb.Keys()
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == " " {
			k = "space"
		}
		names = append(names, k)
	}
	return strings.Join(names, " / ")
}

// RenderBindings renders the short help of each binding in the help bar
// style.
func (s *Styles) RenderBindings(bindings ...key.Binding) string {
	pairs := make([]string, 0, len(bindings)*2)
	for _, kb := range bindings {
		if !kb.Enabled() {
			continue
		}
		pairs = append(pairs, kb.Help().Key, kb.Help().Desc)
	}
	return s.RenderHelp(pairs...)
}
