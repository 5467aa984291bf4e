package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bascanada/proposalviewer/pkg/source"
)

// APIError is a standardized error response structure.
type APIError struct {
	Message string                 `json:"error"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

const (
	ErrCodeDocumentNotFound = "DOCUMENT_NOT_FOUND"
	ErrCodeInvalidRequest   = "INVALID_REQUEST"
	ErrCodeValidationError  = "VALIDATION_ERROR"
	ErrCodeSourceError      = "SOURCE_ERROR"
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeInternal         = "INTERNAL_SERVER_ERROR"
)

// writeJSON writes a JSON response with a given status code.
func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to write json response", "err", err)
	}
}

// writeError writes a standardized APIError response.
func (s *Server) writeError(w http.ResponseWriter, statusCode int, code, message string) {
	s.writeJSON(w, statusCode, APIError{
		Code:    code,
		Message: message,
	})
}

// writeSourceError maps a source failure to its API error.
func (s *Server) writeSourceError(w http.ResponseWriter, r *http.Request, document string, err error) {
	if errors.Is(err, source.ErrDocumentNotFound) {
		s.writeJSON(w, http.StatusNotFound, APIError{
			Code:    ErrCodeDocumentNotFound,
			Message: "Document not found",
			Details: map[string]interface{}{"document": document},
		})
		return
	}

	s.logger.Error("source failure", "err", err, "document", document, "requestID", requestIDFrom(r))
	s.writeError(w, http.StatusBadGateway, ErrCodeSourceError, "Failed to read documents from source")
}
