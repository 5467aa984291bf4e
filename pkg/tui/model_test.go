// SPDX-License-Identifier: GPL-3.0-only
package tui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bascanada/proposalviewer/pkg/proposal"
)

func testDocument() *proposal.Document {
	return &proposal.Document{
		Name:  "acme-2024",
		Title: "Acme Framework",
		Projects: []proposal.Project{
			{Name: "Hospital Tower", Entity: "IPP", Country: "UK", Year: "2024", Value: "1500000"},
			{Name: "Office Block", Entity: "Commercial Ltd", Country: "USA", Year: "2021"},
			{Name: "Riverside Clinic", Country: "UK", Year: "2023"},
		},
		Team: []proposal.TeamMember{
			{Name: "Jane Doe", Title: "Senior Architect", YearsExperience: 12, KeySkills: "Revit, BIM"},
			{Name: "John Roe", Title: "Junior Engineer", YearsExperience: 3},
		},
	}
}

func typeText(m Model, text string) Model {
	for _, r := range text {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(Model)
	}
	return m
}

func press(m Model, keyType tea.KeyType) Model {
	next, _ := m.Update(tea.KeyMsg{Type: keyType})
	return next.(Model)
}

func TestModel_FiltersOnEveryKeystroke(t *testing.T) {
	m := New(testDocument(), nil)
	assert.Equal(t, 3, m.Matched())

	m = typeText(m, "uk")
	assert.Equal(t, 2, m.Matched())
	assert.Equal(t, 2, m.StatusBar.Matched)
	assert.Equal(t, 3, m.StatusBar.Total)

	m = typeText(m, " AND year:2024")
	assert.Equal(t, 1, m.Matched())
	assert.Equal(t, "uk AND year:2024", m.StatusBar.Parsed)

	m = press(m, tea.KeyEsc)
	assert.Equal(t, "", m.SearchBar.Value())
	assert.Equal(t, 3, m.Matched())
}

func TestModel_SearchKeysComeFromKeyMap(t *testing.T) {
	m := New(testDocument(), nil)
	m.Keys.Submit = key.NewBinding(key.WithKeys("ctrl+s"))
	m.Keys.ClearSearch = key.NewBinding(key.WithKeys("ctrl+l"))

	m = typeText(m, "uk")
	m = press(m, tea.KeyEsc)
	assert.Equal(t, "uk", m.SearchBar.Value())

	m = press(m, tea.KeyCtrlL)
	assert.Equal(t, "", m.SearchBar.Value())
	assert.Equal(t, 3, m.Matched())

	m = press(m, tea.KeyEnter)
	assert.Equal(t, FocusSearch, m.Focus)

	m = press(m, tea.KeyCtrlS)
	assert.Equal(t, FocusList, m.Focus)
}

func TestModel_LetterBindingsAreTypedInSearch(t *testing.T) {
	m := New(testDocument(), nil)
	m = typeText(m, "york")
	assert.Equal(t, "york", m.SearchBar.Value())
	assert.Equal(t, FocusSearch, m.Focus)
	assert.Equal(t, 0, m.Cursor)
}

func TestModel_SwitchKind(t *testing.T) {
	m := New(testDocument(), nil)
	m = typeText(m, "experience:10-15")

	// Projects have no experience field
	assert.Equal(t, 0, m.Matched())

	m = press(m, tea.KeyShiftTab)
	assert.Equal(t, proposal.KindTeam, m.Kind)
	assert.Equal(t, 1, m.Matched())
	assert.Equal(t, "Team", m.StatusBar.Kind)
}

func TestModel_TabCompletesFieldNames(t *testing.T) {
	m := New(testDocument(), nil)
	m = typeText(m, "coun")
	assert.Equal(t, "country:", m.SearchBar.Suggestion())

	m = press(m, tea.KeyTab)
	assert.Equal(t, "country:", m.SearchBar.Value())
	assert.Equal(t, proposal.KindProjects, m.Kind)

	m = typeText(m, "usa")
	assert.Equal(t, 1, m.Matched())

	// Nothing to complete switches kind
	m = press(m, tea.KeyTab)
	assert.Equal(t, proposal.KindTeam, m.Kind)
}

func TestModel_CursorAndCopy(t *testing.T) {
	var copied string
	m := New(testDocument(), nil)
	m.Clipboard = func(s string) error {
		copied = s
		return nil
	}

	m = press(m, tea.KeyEnter)
	require.Equal(t, FocusList, m.Focus)

	m = press(m, tea.KeyDown)
	m = press(m, tea.KeyDown)
	m = press(m, tea.KeyDown)
	assert.Equal(t, 2, m.Cursor)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.Contains(t, copied, `"name": "Riverside Clinic"`)
	assert.Equal(t, "Record copied to clipboard", m.StatusBar.Message)

	m.Clipboard = func(string) error { return errors.New("no display") }
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	assert.Contains(t, next.(Model).StatusBar.Message, "no display")
}

func TestModel_CursorIsClampedByFilter(t *testing.T) {
	m := New(testDocument(), nil)
	m = press(m, tea.KeyDown)
	m = press(m, tea.KeyDown)
	require.Equal(t, 2, m.Cursor)

	m = typeText(m, "hospital")
	assert.Equal(t, 0, m.Cursor)
}

func TestModel_LoaderAndErrors(t *testing.T) {
	calls := 0
	loader := func(context.Context) (*proposal.Document, error) {
		calls++
		return testDocument(), nil
	}

	m := New(nil, loader)
	assert.Contains(t, m.View(), "Loading document...")

	cmd := m.loadCmd()
	next, _ := m.Update(cmd())
	m = next.(Model)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 3, m.Matched())

	next, _ = m.Update(ErrorMsg{Err: errors.New("source unreachable")})
	assert.Contains(t, next.(Model).View(), "source unreachable")
}

func waitForCondition(t *testing.T, tm *teatest.TestModel, condition func([]byte) bool, msg string) {
	t.Helper()
	var out []byte
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		chunk, err := io.ReadAll(tm.Output())
		if err != nil {
			t.Logf("Error reading output: %v", err)
		}
		out = append(out, chunk...)
		if condition(out) {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Errorf("%s. Last output:\n%s", msg, string(out))
}

type TestStep struct {
	Name          string
	Action        func(tm *teatest.TestModel)
	ExpectPresent []string
}

func RunScenario(t *testing.T, tm *teatest.TestModel, steps []TestStep) {
	for i, step := range steps {
		t.Logf(">> Running Step %d: %s", i+1, step.Name)

		if step.Action != nil {
			step.Action(tm)
		}

		condition := func(bts []byte) bool {
			for _, s := range step.ExpectPresent {
				if !bytes.Contains(bts, []byte(s)) {
					return false
				}
			}
			return true
		}
		waitForCondition(t, tm, condition, fmt.Sprintf("Step %d (%s) validation failed", i+1, step.Name))
	}
}

func TestTUI_Workflow(t *testing.T) {
	model := New(testDocument(), nil)
	tm := teatest.NewTestModel(t, model, teatest.WithInitialTermSize(100, 24))

	steps := []TestStep{
		{
			Name:          "1. Initial render lists every project",
			ExpectPresent: []string{"Acme Framework", "Hospital Tower", "Office Block", "Projects: 3/3"},
		},
		{
			Name: "2. Filter by country",
			Action: func(tm *teatest.TestModel) {
				tm.Type("country:usa")
			},
			ExpectPresent: []string{"Projects: 1/3", "Filter: country:usa"},
		},
		{
			Name: "3. Switch to team members",
			Action: func(tm *teatest.TestModel) {
				tm.Send(tea.KeyMsg{Type: tea.KeyShiftTab})
			},
			ExpectPresent: []string{"Team: 0/2", "No team match this filter"},
		},
		{
			Name: "4. Clear the filter",
			Action: func(tm *teatest.TestModel) {
				tm.Send(tea.KeyMsg{Type: tea.KeyEsc})
			},
			ExpectPresent: []string{"Team: 2/2", "Jane Doe", "John Roe"},
		},
	}

	RunScenario(t, tm, steps)

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
	tm.WaitFinished(t, teatest.WithFinalTimeout(5*time.Second))

	final := tm.FinalModel(t).(Model)
	assert.Equal(t, proposal.KindTeam, final.Kind)
	assert.Equal(t, "", final.SearchBar.Value())
	assert.Equal(t, 2, final.Matched())
}
