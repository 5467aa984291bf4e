// SPDX-License-Identifier: GPL-3.0-only
package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	ColorPrimary   = lipgloss.Color("#7C3AED") // Purple
	ColorSecondary = lipgloss.Color("#3B82F6") // Blue
	ColorSuccess   = lipgloss.Color("#22C55E") // Green
	ColorWarning   = lipgloss.Color("#F59E0B") // Amber
	ColorError     = lipgloss.Color("#EF4444") // Red
	ColorMuted     = lipgloss.Color("#6B7280") // Gray
	ColorBorder    = lipgloss.Color("#374151") // Dark gray
	ColorBg        = lipgloss.Color("#1F2937") // Dark background
	ColorBgActive  = lipgloss.Color("#374151") // Active background
	ColorText      = lipgloss.Color("#F9FAFB") // Light text
	ColorTextMuted = lipgloss.Color("#9CA3AF") // Muted text
)

// Styles contains all UI styles
type Styles struct {
	Header lipgloss.Style
	Title  lipgloss.Style
	Error  lipgloss.Style
	Help   lipgloss.Style

	TabActive   lipgloss.Style
	TabInactive lipgloss.Style
	TabBar      lipgloss.Style

	Row         lipgloss.Style
	RowSelected lipgloss.Style
	RowDetail   lipgloss.Style
	Empty       lipgloss.Style

	SearchInput       lipgloss.Style
	SearchInputActive lipgloss.Style
	SearchPrompt      lipgloss.Style
}

// DefaultStyles creates the default style set
func DefaultStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Background(ColorBg).
			Foreground(ColorText).
			Padding(0, 1),

		Title: lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true),

		Help: lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(0, 1),

		TabActive: lipgloss.NewStyle().
			Background(ColorPrimary).
			Foreground(ColorText).
			Bold(true).
			Padding(0, 2).
			MarginRight(1),

		TabInactive: lipgloss.NewStyle().
			Background(ColorBorder).
			Foreground(ColorTextMuted).
			Padding(0, 2).
			MarginRight(1),

		TabBar: lipgloss.NewStyle().
			Padding(0, 1),

		Row: lipgloss.NewStyle().
			Foreground(ColorText).
			PaddingLeft(2),

		RowSelected: lipgloss.NewStyle().
			Background(ColorBgActive).
			Foreground(ColorText).
			Bold(true).
			PaddingLeft(2),

		RowDetail: lipgloss.NewStyle().
			Foreground(ColorTextMuted),

		Empty: lipgloss.NewStyle().
			Foreground(ColorMuted).
			Italic(true).
			PaddingLeft(2),

		SearchInput: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1),

		SearchInputActive: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1),

		SearchPrompt: lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true),
	}
}
