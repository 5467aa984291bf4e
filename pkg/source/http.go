package source

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	httpPkg "github.com/bascanada/proposalviewer/pkg/http"
	"github.com/bascanada/proposalviewer/pkg/proposal"
)

// HTTPSource reads documents from the document endpoints of a remote
// proposalviewer server.
type HTTPSource struct {
	client httpPkg.HttpClient
}

func NewHTTPSource(baseURL string, auth httpPkg.Auth) *HTTPSource {
	return &HTTPSource{client: httpPkg.GetClient(baseURL, auth)}
}

func (s *HTTPSource) ListDocuments(ctx context.Context) ([]proposal.DocumentSummary, error) {
	var summaries []proposal.DocumentSummary
	if err := s.client.Get(ctx, "/documents", nil, &summaries); err != nil {
		return nil, fmt.Errorf("listing remote documents: %w", err)
	}
	if summaries == nil {
		summaries = []proposal.DocumentSummary{}
	}
	return summaries, nil
}

func (s *HTTPSource) GetDocument(ctx context.Context, name string) (*proposal.Document, error) {
	var doc proposal.Document
	err := s.client.Get(ctx, "/documents/"+url.PathEscape(name), nil, &doc)
	if errors.Is(err, httpPkg.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("fetching remote document %s: %w", name, err)
	}
	return &doc, nil
}
