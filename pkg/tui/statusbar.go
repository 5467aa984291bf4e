// SPDX-License-Identifier: GPL-3.0-only
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// StatusBarStyles defines the styles for the status bar
type StatusBarStyles struct {
	Container lipgloss.Style
	Label     lipgloss.Style
	Value     lipgloss.Style
	Separator lipgloss.Style
	Message   lipgloss.Style
	Loading   lipgloss.Style
}

// DefaultStatusBarStyles returns the default styles for the status bar
func DefaultStatusBarStyles() StatusBarStyles {
	return StatusBarStyles{
		Container: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(ColorBorder).
			Padding(0, 1),
		Label: lipgloss.NewStyle().
			Foreground(ColorMuted),
		Value: lipgloss.NewStyle().
			Foreground(ColorText),
		Separator: lipgloss.NewStyle().
			Foreground(ColorMuted),
		Message: lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true),
		Loading: lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true),
	}
}

// StatusBar shows the matched/total counts and the parsed filter.
type StatusBar struct {
	Width  int
	Styles StatusBarStyles

	Document string
	Kind     string
	Matched  int
	Total    int
	Cursor   int
	Parsed   string
	Loading  bool
	Message  string
}

func NewStatusBar() StatusBar {
	return StatusBar{
		Width:  80,
		Styles: DefaultStatusBarStyles(),
	}
}

func (s *StatusBar) SetMessage(msg string) {
	s.Message = msg
}

// View renders the status bar
func (s StatusBar) View() string {
	if s.Width < 20 {
		return ""
	}

	var parts []string
	if s.Loading {
		parts = append(parts, s.Styles.Loading.Render("Loading..."))
	}
	if s.Document != "" {
		parts = append(parts, s.Styles.Label.Render("Document: ")+s.Styles.Value.Render(s.Document))
	}
	parts = append(parts,
		s.Styles.Label.Render(s.Kind+": ")+s.Styles.Value.Render(fmt.Sprintf("%d/%d", s.Matched, s.Total)))
	if s.Matched > 0 {
		parts = append(parts, s.Styles.Value.Render(fmt.Sprintf("Row %d", s.Cursor+1)))
	}
	if s.Parsed != "" {
		parts = append(parts, s.Styles.Label.Render("Filter: ")+s.Styles.Value.Render(s.Parsed))
	}
	if s.Message != "" {
		parts = append(parts, s.Styles.Message.Render(s.Message))
	}

	content := strings.Join(parts, s.Styles.Separator.Render(" | "))
	return s.Styles.Container.Width(s.Width).Render(content)
}

// Height returns the rendered height of the status bar, border included.
func (s StatusBar) Height() int {
	return 2
}
