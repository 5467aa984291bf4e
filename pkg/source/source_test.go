package source

import (
	"context"
	"sync"

	"github.com/bascanada/proposalviewer/pkg/proposal"
)

func sampleDocument(name string) *proposal.Document {
	lat, lng := 51.5072, -0.1276
	return &proposal.Document{
		Name:  name,
		Title: "Acme Healthcare Framework",
		Theme: proposal.Theme{PrimaryColor: "#003366", Font: "Inter"},
		Tabs: []proposal.Tab{
			{ID: "intro", Title: "Introduction", Kind: proposal.TabMarkdown, Content: "# Hello"},
			{ID: "team", Title: "Team", Kind: proposal.TabTeam},
			{ID: "projects", Title: "Projects", Kind: proposal.TabProjects},
		},
		Projects: []proposal.Project{
			{ID: "p1", Name: "Hospital Tower", Entity: "IPP", Country: "UK", Year: "2024", Value: "1500000",
				Services: "Design; BIM", Latitude: &lat, Longitude: &lng},
			{ID: "p2", Name: "Office Block", Entity: "Commercial Ltd", Country: "USA", Year: "2021", Value: "900000"},
		},
		Team: []proposal.TeamMember{
			{ID: "m1", Name: "Jane Doe", Title: "Senior Architect", YearsExperience: 12, KeySkills: "Revit, BIM", Order: 1},
			{ID: "m2", Name: "John Roe", Title: "Engineer", YearsExperience: 4.5, Order: 2},
		},
	}
}

// memorySource is an in-memory Source counting its calls.
type memorySource struct {
	mu    sync.Mutex
	docs  map[string]*proposal.Document
	calls int
	err   error
}

func newMemorySource(docs ...*proposal.Document) *memorySource {
	m := &memorySource{docs: map[string]*proposal.Document{}}
	for _, d := range docs {
		m.docs[d.Name] = d
	}
	return m
}

func (m *memorySource) ListDocuments(_ context.Context) ([]proposal.DocumentSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := []proposal.DocumentSummary{}
	for _, d := range m.docs {
		out = append(out, d.Summary())
	}
	return out, nil
}

func (m *memorySource) GetDocument(_ context.Context, name string) (*proposal.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	d, ok := m.docs[name]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	return d, nil
}
