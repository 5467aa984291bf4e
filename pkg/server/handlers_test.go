package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bascanada/proposalviewer/pkg/api"
	"github.com/bascanada/proposalviewer/pkg/filter"
	"github.com/bascanada/proposalviewer/pkg/proposal"
	"github.com/bascanada/proposalviewer/pkg/source"
)

type fakeCatalog struct {
	docs        map[string]*proposal.Document
	err         error
	invalidated int
}

func (c *fakeCatalog) ListDocuments(_ context.Context) ([]proposal.DocumentSummary, error) {
	if c.err != nil {
		return nil, c.err
	}
	out := []proposal.DocumentSummary{}
	for _, name := range []string{"acme-2024"} {
		if d, ok := c.docs[name]; ok {
			out = append(out, d.Summary())
		}
	}
	return out, nil
}

func (c *fakeCatalog) GetDocument(_ context.Context, name string) (*proposal.Document, error) {
	if c.err != nil {
		return nil, c.err
	}
	d, ok := c.docs[name]
	if !ok {
		return nil, source.ErrDocumentNotFound
	}
	return d, nil
}

func (c *fakeCatalog) Invalidate() { c.invalidated++ }

func testDocument() *proposal.Document {
	return &proposal.Document{
		Name:  "acme-2024",
		Title: "Acme",
		Projects: []proposal.Project{
			{Name: "Hospital Tower", Entity: "IPP", Country: "UK", Year: "2024", Value: "1500000"},
			{Name: "Office Block", Entity: "Commercial Ltd", Country: "USA", Year: "2021", Value: "900000"},
			{Name: "Clinic", Client: "Acme-Corp", Country: "UK", Year: "2023"},
		},
		Team: []proposal.TeamMember{
			{Name: "Jane Doe", Title: "Senior Architect", YearsExperience: 12, KeySkills: "Revit, BIM"},
			{Name: "John Roe", Title: "Junior Engineer", YearsExperience: 3},
		},
	}
}

func newTestServer(t *testing.T, opts ...Option) (*Server, *fakeCatalog) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	catalog := &fakeCatalog{docs: map[string]*proposal.Document{"acme-2024": testDocument()}}
	return NewServer("localhost", "0", catalog, logger, opts...), catalog
}

func serve(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestHealthHandler(t *testing.T) {
	s, _ := newTestServer(t)

	rr := serve(s, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestDocumentsHandlers(t *testing.T) {
	s, catalog := newTestServer(t)

	rr := serve(s, http.MethodGet, "/documents", "")
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[DocumentsResponse](t, rr)
	require.Len(t, list.Documents, 1)
	assert.Equal(t, 3, list.Documents[0].Projects)

	rr = serve(s, http.MethodGet, "/documents/acme-2024", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Acme", decode[proposal.Document](t, rr).Title)

	rr = serve(s, http.MethodGet, "/documents/missing", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	apiErr := decode[APIError](t, rr)
	assert.Equal(t, ErrCodeDocumentNotFound, apiErr.Code)
	assert.Equal(t, "missing", apiErr.Details["document"])

	catalog.err = errors.New("connection refused")
	rr = serve(s, http.MethodGet, "/documents", "")
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Equal(t, ErrCodeSourceError, decode[APIError](t, rr).Code)
}

func TestFilterProjectsHandler(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name     string
		body     string
		expected []string
		parsed   string
	}{
		{
			name:     "document records",
			body:     `{"document":"acme-2024","filter":"Entity:hospital AND year:2024"}`,
			expected: []string{"Hospital Tower"},
			parsed:   "entity:hospital AND year:2024",
		},
		{
			name:     "empty filter matches all",
			body:     `{"document":"acme-2024","filter":"  "}`,
			expected: []string{"Hospital Tower", "Office Block", "Clinic"},
		},
		{
			name:     "inline records win",
			body:     `{"document":"acme-2024","filter":"uk","projects":[{"name":"Inline","country":"UK"},{"name":"Other"}]}`,
			expected: []string{"Inline"},
			parsed:   "uk",
		},
		{
			name:     "hyphenated text is not a range",
			body:     `{"document":"acme-2024","filter":"client:acme-corp"}`,
			expected: []string{"Clinic"},
			parsed:   "client:acme-corp",
		},
		{
			name:     "malformed filter degrades",
			body:     `{"document":"acme-2024","filter":"(uk OR AND"}`,
			expected: []string{"Hospital Tower", "Clinic"},
			parsed:   "uk",
		},
		{
			name:     "no match",
			body:     `{"document":"acme-2024","filter":"value:>2000000"}`,
			expected: []string{},
			parsed:   "value:>2000000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(s, http.MethodPost, "/filter/projects", tt.body)
			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

			resp := decode[ProjectsResponse](t, rr)
			names := []string{}
			for _, p := range resp.Projects {
				names = append(names, p.Name)
			}
			assert.Equal(t, tt.expected, names)
			assert.Equal(t, len(tt.expected), resp.Meta.Matched)
			assert.Equal(t, tt.parsed, resp.Meta.Parsed)
		})
	}
}

func TestFilterTeamHandler(t *testing.T) {
	s, _ := newTestServer(t)

	rr := serve(s, http.MethodPost, "/filter/team", `{"document":"acme-2024","filter":"title:architect AND experience:>10 AND skills:revit"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decode[TeamResponse](t, rr)
	require.Len(t, resp.Team, 1)
	assert.Equal(t, "Jane Doe", resp.Team[0].Name)
	assert.Equal(t, 2, resp.Meta.Total)
	assert.Equal(t, "acme-2024", resp.Meta.Document)

	rr = serve(s, http.MethodPost, "/filter/team", `{"document":"acme-2024","filter":"experience:5-10"}`)
	assert.Empty(t, decode[TeamResponse](t, rr).Team)
}

func TestFilterLegacyRangeOption(t *testing.T) {
	s, _ := newTestServer(t, WithFilterOptions(filter.WithLegacyRange()))

	rr := serve(s, http.MethodPost, "/filter/projects", `{"document":"acme-2024","filter":"client:acme-corp"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	// Every project misfires as the range 0-0
	assert.Len(t, decode[ProjectsResponse](t, rr).Projects, 3)
}

func TestFilterRequestErrors(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name         string
		method       string
		path         string
		body         string
		expectedCode int
		expectedErr  string
	}{
		{"invalid json", http.MethodPost, "/filter/projects", `{`, http.StatusBadRequest, ErrCodeInvalidRequest},
		{"missing document", http.MethodPost, "/filter/projects", `{"filter":"uk"}`, http.StatusBadRequest, ErrCodeValidationError},
		{"wrong records", http.MethodPost, "/filter/projects", `{"filter":"uk","team":[]}`, http.StatusBadRequest, ErrCodeValidationError},
		{"unknown document", http.MethodPost, "/filter/team", `{"document":"nope","filter":"x"}`, http.StatusNotFound, ErrCodeDocumentNotFound},
		{"wrong method", http.MethodGet, "/filter/projects", "", http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed},
		{"unknown kind", http.MethodGet, "/fields?kind=invoices", "", http.StatusBadRequest, ErrCodeValidationError},
		{"unknown route", http.MethodGet, "/nowhere", "", http.StatusNotFound, ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(s, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.expectedCode, rr.Code)
			assert.Equal(t, tt.expectedErr, decode[APIError](t, rr).Code)
		})
	}
}

func TestExplainHandler(t *testing.T) {
	s, _ := newTestServer(t)

	rr := serve(s, http.MethodPost, "/filter/explain", `{"filter":"experience:5-10 OR NOT junior","kind":"team"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decode[ExplainResponse](t, rr)
	assert.Equal(t, proposal.KindTeam, resp.Kind)
	assert.Equal(t, "experience:5-10 OR NOT junior", resp.Parsed)
	require.NotNil(t, resp.Filter)
	assert.Equal(t, filter.LogicOr, resp.Filter.Logic)
	assert.Equal(t, "range", resp.Filter.Filters[0].Op)
}

func TestFieldsHandler(t *testing.T) {
	s, _ := newTestServer(t)

	rr := serve(s, http.MethodGet, "/fields?kind=team", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Kind   string `json:"kind"`
		Fields []struct {
			Name string `json:"name"`
			Kind string `json:"kind"`
		} `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "team", resp.Kind)
	require.Len(t, resp.Fields, 5)
	assert.Equal(t, "experience", resp.Fields[4].Name)
	assert.Equal(t, "numeric-range", resp.Fields[4].Kind)
}

func TestMetricsHandler(t *testing.T) {
	s, _ := newTestServer(t)

	serve(s, http.MethodPost, "/filter/projects", `{"document":"acme-2024","filter":"uk"}`)
	serve(s, http.MethodPost, "/filter/projects", `{"document":"acme-2024","filter":"usa"}`)

	rr := serve(s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.Contains(t, body, `proposalviewer_filter_requests_total{kind="projects"} 2`)
	assert.Contains(t, body, `proposalviewer_filter_requests_total{kind="team"} 0`)
	assert.Contains(t, body, `proposalviewer_filter_matched_records_sum{kind="projects"} 3`)
	assert.Contains(t, body, "proposalviewer_filter_duration_seconds_bucket")
}

func TestRecoveryMiddleware(t *testing.T) {
	s, _ := newTestServer(t)

	handler := s.recoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, ErrCodeInternal, decode[APIError](t, rr).Code)
}

func TestRequestIDIsKept(t *testing.T) {
	s, _ := newTestServer(t)
	id := "5f0c6f2e-8a0b-4b8e-9d61-3f1f0d1f1c11"

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", id)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	assert.Equal(t, id, rr.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/health", bytes.NewReader(nil))
	req.Header.Set("X-Request-ID", "not a uuid")
	rr = httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	assert.NotEqual(t, "not a uuid", rr.Header().Get("X-Request-ID"))
}

func TestOpenAPIHandler(t *testing.T) {
	s, _ := newTestServer(t)
	rr := serve(s, http.MethodGet, "/openapi.yaml", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	s, _ = newTestServer(t, WithOpenAPISpec(api.OpenAPISpec))
	rr = serve(s, http.MethodGet, "/openapi.yaml", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/yaml", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "/filter/projects:")
}
