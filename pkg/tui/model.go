// SPDX-License-Identifier: GPL-3.0-only
package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bascanada/proposalviewer/pkg/filter"
	"github.com/bascanada/proposalviewer/pkg/proposal"
)

// FocusMode represents which component has focus
type FocusMode int

const (
	FocusSearch FocusMode = iota
	FocusList
)

// Loader fetches the document shown by the model.
type Loader func(ctx context.Context) (*proposal.Document, error)

// DocumentMsg is sent when the document has been (re)loaded
type DocumentMsg struct {
	Document *proposal.Document
}

// ErrorMsg is sent when loading the document fails
type ErrorMsg struct {
	Err error
}

// ClearStatusMsg is sent to clear status messages
type ClearStatusMsg struct{}

// Model is the main TUI state
type Model struct {
	Width  int
	Height int

	Document *proposal.Document
	Kind     proposal.RecordKind
	Cursor   int
	Offset   int
	Focus    FocusMode
	ShowHelp bool
	Loading  bool
	Err      error

	SearchBar SearchBar
	StatusBar StatusBar
	Help      help.Model
	Styles    Styles
	Keys      KeyMap

	FilterOpts []filter.Option
	Loader     Loader
	// Clipboard receives copied records; clipboard.WriteAll by default.
	Clipboard func(string) error

	projects []proposal.Project
	team     []proposal.TeamMember
}

// New creates a model over doc. When doc is nil the loader provides it.
func New(doc *proposal.Document, loader Loader, opts ...filter.Option) Model {
	styles := DefaultStyles()
	m := Model{
		Width:      80,
		Height:     24,
		Document:   doc,
		Kind:       proposal.KindProjects,
		SearchBar:  NewSearchBar(styles),
		StatusBar:  NewStatusBar(),
		Help:       help.New(),
		Styles:     styles,
		Keys:       DefaultKeyMap(),
		FilterOpts: opts,
		Loader:     loader,
		Clipboard:  clipboard.WriteAll,
	}
	m.SearchBar.Focus()
	m.refilter()
	return m
}

func (m Model) Init() tea.Cmd {
	if m.Document == nil && m.Loader != nil {
		return tea.Batch(textinput.Blink, m.loadCmd())
	}
	return textinput.Blink
}

func (m Model) loadCmd() tea.Cmd {
	loader := m.Loader
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		doc, err := loader(ctx)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		return DocumentMsg{Document: doc}
	}
}

// Matched returns the number of records passing the current filter.
func (m Model) Matched() int {
	if m.Kind == proposal.KindTeam {
		return len(m.team)
	}
	return len(m.projects)
}

func (m Model) total() int {
	if m.Document == nil {
		return 0
	}
	if m.Kind == proposal.KindTeam {
		return len(m.Document.Team)
	}
	return len(m.Document.Projects)
}

// refilter re-runs the collection filter of the active kind with the
// current search text.
func (m *Model) refilter() {
	text := m.SearchBar.Value()
	m.SearchBar.Fields = proposal.FieldNames(m.Kind)

	m.projects, m.team = nil, nil
	if m.Document != nil {
		if m.Kind == proposal.KindTeam {
			m.team = proposal.FilterTeamMembers(m.Document.Team, text, m.FilterOpts...)
		} else {
			m.projects = proposal.FilterProjects(m.Document.Projects, text, m.FilterOpts...)
		}
	}

	if m.Cursor >= m.Matched() {
		m.Cursor = max(m.Matched()-1, 0)
	}
	m.clampOffset()

	m.StatusBar.Kind = kindTitle(m.Kind)
	m.StatusBar.Matched = m.Matched()
	m.StatusBar.Total = m.total()
	m.StatusBar.Cursor = m.Cursor
	m.StatusBar.Parsed = proposal.Explain(m.Kind, text, m.FilterOpts...).String()
	if m.Document != nil {
		m.StatusBar.Document = m.Document.Name
	}
}

func (m *Model) switchKind() {
	if m.Kind == proposal.KindTeam {
		m.Kind = proposal.KindProjects
	} else {
		m.Kind = proposal.KindTeam
	}
	m.Cursor, m.Offset = 0, 0
	m.refilter()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.SearchBar.Width = msg.Width
		m.StatusBar.Width = msg.Width
		m.Help.Width = msg.Width
		m.clampOffset()
		return m, nil

	case DocumentMsg:
		m.Document = msg.Document
		m.Loading = false
		m.StatusBar.Loading = false
		m.Err = nil
		m.refilter()
		return m, nil

	case ErrorMsg:
		m.Loading = false
		m.StatusBar.Loading = false
		m.Err = msg.Err
		return m, nil

	case ClearStatusMsg:
		m.StatusBar.SetMessage("")
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	if m.Focus == FocusSearch {
		changed, cmd := m.SearchBar.Update(msg)
		if changed {
			m.refilter()
		}
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.Keys.Quit) {
		return m, tea.Quit
	}

	if m.Focus == FocusSearch {
		return m.handleSearchInput(msg)
	}

	switch {
	case key.Matches(msg, m.Keys.Search):
		m.Focus = FocusSearch
		return m, m.SearchBar.Focus()
	case key.Matches(msg, m.Keys.ClearSearch):
		m.SearchBar.SetValue("")
		m.refilter()
	case key.Matches(msg, m.Keys.NextTab), key.Matches(msg, m.Keys.PrevTab):
		m.switchKind()
	case key.Matches(msg, m.Keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.Keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.Keys.PageUp):
		m.moveCursor(-m.listHeight())
	case key.Matches(msg, m.Keys.PageDown):
		m.moveCursor(m.listHeight())
	case key.Matches(msg, m.Keys.Home):
		m.moveCursor(-m.Matched())
	case key.Matches(msg, m.Keys.End):
		m.moveCursor(m.Matched())
	case key.Matches(msg, m.Keys.Copy):
		return m, m.copySelected()
	case key.Matches(msg, m.Keys.Refresh):
		if m.Loader != nil {
			m.Loading = true
			m.StatusBar.Loading = true
			return m, m.loadCmd()
		}
	case key.Matches(msg, m.Keys.Help):
		m.ShowHelp = !m.ShowHelp
		m.Help.ShowAll = m.ShowHelp
	}
	return m, nil
}

// handleSearchInput handles keys while the filter box has focus. Arrow keys
// still move through the results so typing and browsing can be mixed; letter
// bindings are typed into the filter instead.
func (m Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	typed := msg.Type == tea.KeyRunes

	switch {
	case key.Matches(msg, m.Keys.Submit):
		m.Focus = FocusList
		m.SearchBar.Blur()
		return m, nil
	case key.Matches(msg, m.Keys.ClearSearch):
		if m.SearchBar.Value() == "" {
			m.Focus = FocusList
			m.SearchBar.Blur()
			return m, nil
		}
		m.SearchBar.SetValue("")
		m.refilter()
		return m, nil
	case key.Matches(msg, m.Keys.NextTab):
		if !m.SearchBar.Complete() {
			m.switchKind()
			return m, nil
		}
		m.refilter()
		return m, nil
	case key.Matches(msg, m.Keys.PrevTab):
		m.switchKind()
		return m, nil
	case !typed && key.Matches(msg, m.Keys.Up):
		m.moveCursor(-1)
		return m, nil
	case !typed && key.Matches(msg, m.Keys.Down):
		m.moveCursor(1)
		return m, nil
	}

	changed, cmd := m.SearchBar.Update(msg)
	if changed {
		m.refilter()
	}
	return m, cmd
}

func (m *Model) moveCursor(delta int) {
	m.Cursor += delta
	if m.Cursor >= m.Matched() {
		m.Cursor = m.Matched() - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	m.StatusBar.Cursor = m.Cursor
	m.clampOffset()
}

func (m *Model) clampOffset() {
	height := m.listHeight()
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+height {
		m.Offset = m.Cursor - height + 1
	}
	if m.Offset < 0 {
		m.Offset = 0
	}
}

// listHeight is the number of result rows that fit under the header, the
// search box, the status bar and the help line.
func (m Model) listHeight() int {
	return max(m.Height-1-3-m.StatusBar.Height()-1, 1)
}

// selected returns the record under the cursor.
func (m Model) selected() (interface{}, bool) {
	if m.Cursor >= m.Matched() {
		return nil, false
	}
	if m.Kind == proposal.KindTeam {
		return m.team[m.Cursor], true
	}
	return m.projects[m.Cursor], true
}

func (m *Model) copySelected() tea.Cmd {
	record, ok := m.selected()
	if !ok {
		return m.showStatusMessage("No record selected")
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return m.showStatusMessage(fmt.Sprintf("Failed to format record: %v", err))
	}
	if err := m.Clipboard(string(data)); err != nil {
		return m.showStatusMessage(fmt.Sprintf("Clipboard error: %v", err))
	}
	return m.showStatusMessage("Record copied to clipboard")
}

// showStatusMessage temporarily shows a message in the status bar
func (m *Model) showStatusMessage(message string) tea.Cmd {
	m.StatusBar.SetMessage(message)
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}

func (m Model) View() string {
	sections := []string{m.renderHeader(), m.SearchBar.View(), m.renderList(), m.StatusBar.View()}
	sections = append(sections, m.Styles.Help.Render(m.Help.View(m.Keys)))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	title := "proposalviewer"
	if m.Document != nil {
		title = m.Document.Name
		if m.Document.Title != "" {
			title = m.Document.Title
		}
	}

	var tabs []string
	for _, kind := range []proposal.RecordKind{proposal.KindProjects, proposal.KindTeam} {
		style := m.Styles.TabInactive
		if kind == m.Kind {
			style = m.Styles.TabActive
		}
		tabs = append(tabs, style.Render(kindTitle(kind)))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		m.Styles.Title.Render(title), m.Styles.TabBar.Render(strings.Join(tabs, "")))
}

func (m Model) renderList() string {
	height := m.listHeight()

	var lines []string
	switch {
	case m.Err != nil:
		lines = append(lines, m.Styles.Error.Render("Error: "+m.Err.Error()))
	case m.Document == nil:
		lines = append(lines, m.Styles.Empty.Render("Loading document..."))
	case m.Matched() == 0:
		lines = append(lines, m.Styles.Empty.Render("No "+strings.ToLower(kindTitle(m.Kind))+" match this filter"))
	default:
		end := min(m.Offset+height, m.Matched())
		for i := m.Offset; i < end; i++ {
			lines = append(lines, m.renderRow(i))
		}
	}

	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderRow(i int) string {
	var name string
	var details []string
	if m.Kind == proposal.KindTeam {
		member := m.team[i]
		name = member.Name
		details = []string{member.Title, strconv.FormatFloat(member.YearsExperience, 'f', -1, 64) + " yrs", member.KeySkills}
	} else {
		p := m.projects[i]
		name = p.Name
		details = []string{p.Entity, p.Country, p.Year, p.Value}
	}

	var present []string
	for _, d := range details {
		if d != "" {
			present = append(present, d)
		}
	}

	row := name
	if len(present) > 0 {
		row += m.Styles.RowDetail.Render(" · " + strings.Join(present, " · "))
	}

	style := m.Styles.Row
	if i == m.Cursor {
		style = m.Styles.RowSelected
	}
	return style.MaxWidth(m.Width).Render(row)
}

func kindTitle(kind proposal.RecordKind) string {
	if kind == proposal.KindTeam {
		return "Team"
	}
	return "Projects"
}
