// SPDX-License-Identifier: GPL-3.0-only
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// SearchBar is the filter expression input. It suggests field names for
// the word under the cursor.
type SearchBar struct {
	Input  textinput.Model
	Width  int
	Fields []string
	Styles Styles
}

func NewSearchBar(styles Styles) SearchBar {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.PromptStyle = styles.SearchPrompt
	ti.Placeholder = "entity:hospital AND year:>=2023 AND NOT commercial"
	ti.CharLimit = 512

	return SearchBar{Input: ti, Width: 80, Styles: styles}
}

func (s *SearchBar) Focus() tea.Cmd {
	return s.Input.Focus()
}

func (s *SearchBar) Blur() {
	s.Input.Blur()
}

func (s SearchBar) Focused() bool {
	return s.Input.Focused()
}

func (s SearchBar) Value() string {
	return s.Input.Value()
}

func (s *SearchBar) SetValue(v string) {
	s.Input.SetValue(v)
	s.Input.CursorEnd()
}

// Update forwards msg to the input and reports whether the text changed.
func (s *SearchBar) Update(msg tea.Msg) (bool, tea.Cmd) {
	before := s.Input.Value()
	var cmd tea.Cmd
	s.Input, cmd = s.Input.Update(msg)
	return s.Input.Value() != before, cmd
}

// Suggestion returns the field name completing the last word, if any.
func (s SearchBar) Suggestion() string {
	value := s.Input.Value()
	if value == "" || strings.HasSuffix(value, " ") || strings.HasSuffix(value, "(") {
		return ""
	}

	word := value[strings.LastIndexAny(value, " (")+1:]
	if word == "" || strings.Contains(word, ":") {
		return ""
	}
	word = strings.ToLower(word)

	for _, f := range s.Fields {
		if strings.HasPrefix(f, word) && f != word {
			return f + ":"
		}
	}
	return ""
}

// Complete replaces the last word with its suggestion.
func (s *SearchBar) Complete() bool {
	suggestion := s.Suggestion()
	if suggestion == "" {
		return false
	}
	value := s.Input.Value()
	s.SetValue(value[:strings.LastIndexAny(value, " (")+1] + suggestion)
	return true
}

func (s SearchBar) View() string {
	view := s.Input.View()
	if hint := s.Suggestion(); hint != "" && s.Focused() {
		view += s.Styles.RowDetail.Render("  ↹ " + hint)
	}

	style := s.Styles.SearchInput
	if s.Focused() {
		style = s.Styles.SearchInputActive
	}
	width := s.Width - 4
	if width < 10 {
		width = 10
	}
	return style.Width(width).Render(view)
}
