package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bascanada/proposalviewer/pkg/filter"
	"github.com/bascanada/proposalviewer/pkg/proposal"
)

// FilterRequest is the body of the filter endpoints. Inline records, when
// present, are filtered instead of the records of Document.
type FilterRequest struct {
	Document string                `json:"document,omitempty"`
	Filter   string                `json:"filter"`
	Projects []proposal.Project    `json:"projects,omitempty"`
	Team     []proposal.TeamMember `json:"team,omitempty"`
}

type ExplainRequest struct {
	Filter string `json:"filter"`
	Kind   string `json:"kind,omitempty"`
}

// FilterMetadata describes how a filter request was served.
type FilterMetadata struct {
	QueryTime string `json:"queryTime"`
	Total     int    `json:"total"`
	Matched   int    `json:"matched"`
	Document  string `json:"document,omitempty"`
	Parsed    string `json:"parsed"`
}

type ProjectsResponse struct {
	Projects []proposal.Project `json:"projects"`
	Meta     FilterMetadata     `json:"meta"`
}

type TeamResponse struct {
	Team []proposal.TeamMember `json:"team"`
	Meta FilterMetadata        `json:"meta"`
}

type ExplainResponse struct {
	Kind   proposal.RecordKind `json:"kind"`
	Parsed string              `json:"parsed"`
	Filter *filter.Filter      `json:"filter"`
}

type FieldsResponse struct {
	Kind   proposal.RecordKind  `json:"kind"`
	Fields []proposal.FieldInfo `json:"fields"`
}

type DocumentsResponse struct {
	Documents []proposal.DocumentSummary `json:"documents"`
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) openapiHandler(w http.ResponseWriter, r *http.Request) {
	if len(s.openapiSpec) == 0 {
		s.writeError(w, http.StatusNotFound, ErrCodeNotFound, "No API description is available")
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(s.openapiSpec)
}

func (s *Server) listDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	catalog, _ := s.currentCatalog()

	docs, err := catalog.ListDocuments(r.Context())
	if err != nil {
		s.writeSourceError(w, r, "", err)
		return
	}
	s.writeJSON(w, http.StatusOK, DocumentsResponse{Documents: docs})
}

func (s *Server) getDocumentHandler(w http.ResponseWriter, r *http.Request) {
	catalog, _ := s.currentCatalog()
	name := chi.URLParam(r, "name")

	doc, err := catalog.GetDocument(r.Context(), name)
	if err != nil {
		s.writeSourceError(w, r, name, err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

// decodeFilterRequest reads and validates a filter body, writing the error
// response itself when it fails.
func (s *Server) decodeFilterRequest(w http.ResponseWriter, r *http.Request, kind proposal.RecordKind) (*FilterRequest, bool) {
	var req FilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid request body")
		return nil, false
	}
	if err := validateFilterRequest(&req, kind); err != nil {
		s.writeError(w, http.StatusBadRequest, ErrCodeValidationError, err.Error())
		return nil, false
	}
	return &req, true
}

// loadDocument fetches req.Document unless the request carries inline records.
func (s *Server) loadDocument(w http.ResponseWriter, r *http.Request, req *FilterRequest, inline bool) (*proposal.Document, bool) {
	if inline {
		return &proposal.Document{Projects: req.Projects, Team: req.Team}, true
	}

	catalog, _ := s.currentCatalog()
	doc, err := catalog.GetDocument(r.Context(), req.Document)
	if err != nil {
		s.writeSourceError(w, r, req.Document, err)
		return nil, false
	}
	return doc, true
}

func (s *Server) filterProjectsHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeFilterRequest(w, r, proposal.KindProjects)
	if !ok {
		return
	}
	doc, ok := s.loadDocument(w, r, req, req.Projects != nil)
	if !ok {
		return
	}

	_, opts := s.currentCatalog()
	start := time.Now()
	matched := proposal.FilterProjects(doc.Projects, req.Filter, opts...)
	took := time.Since(start)
	s.metrics.observe(proposal.KindProjects, took, len(matched))

	if matched == nil {
		matched = []proposal.Project{}
	}
	meta := s.filterMetadata(req, proposal.KindProjects, took, len(doc.Projects), len(matched))
	noteFilter(r, proposal.KindProjects, meta)
	s.writeJSON(w, http.StatusOK, ProjectsResponse{Projects: matched, Meta: meta})
}

func (s *Server) filterTeamHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeFilterRequest(w, r, proposal.KindTeam)
	if !ok {
		return
	}
	doc, ok := s.loadDocument(w, r, req, req.Team != nil)
	if !ok {
		return
	}

	_, opts := s.currentCatalog()
	start := time.Now()
	matched := proposal.FilterTeamMembers(doc.Team, req.Filter, opts...)
	took := time.Since(start)
	s.metrics.observe(proposal.KindTeam, took, len(matched))

	if matched == nil {
		matched = []proposal.TeamMember{}
	}
	meta := s.filterMetadata(req, proposal.KindTeam, took, len(doc.Team), len(matched))
	noteFilter(r, proposal.KindTeam, meta)
	s.writeJSON(w, http.StatusOK, TeamResponse{Team: matched, Meta: meta})
}

func (s *Server) filterMetadata(req *FilterRequest, kind proposal.RecordKind, took time.Duration, total, matched int) FilterMetadata {
	_, opts := s.currentCatalog()
	meta := FilterMetadata{
		QueryTime: took.String(),
		Total:     total,
		Matched:   matched,
		Parsed:    proposal.Explain(kind, req.Filter, opts...).String(),
	}
	if (kind == proposal.KindProjects && req.Projects == nil) || (kind == proposal.KindTeam && req.Team == nil) {
		meta.Document = req.Document
	}
	return meta
}

func (s *Server) explainHandler(w http.ResponseWriter, r *http.Request) {
	var req ExplainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid request body")
		return
	}

	kind, err := proposal.ParseKind(req.Kind)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, ErrCodeValidationError, err.Error())
		return
	}

	_, opts := s.currentCatalog()
	parsed := proposal.Explain(kind, req.Filter, opts...)
	s.writeJSON(w, http.StatusOK, ExplainResponse{Kind: kind, Parsed: parsed.String(), Filter: parsed})
}

func (s *Server) fieldsHandler(w http.ResponseWriter, r *http.Request) {
	kind, err := proposal.ParseKind(r.URL.Query().Get("kind"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, ErrCodeValidationError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, FieldsResponse{Kind: kind, Fields: proposal.FieldsOf(kind)})
}
