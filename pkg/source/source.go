// Package source reads proposal documents from the backing stores named in
// the configuration: document files, SQL databases and remote proposalviewer
// servers.
package source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bascanada/proposalviewer/pkg/config"
	httpPkg "github.com/bascanada/proposalviewer/pkg/http"
	"github.com/bascanada/proposalviewer/pkg/proposal"
)

// ErrDocumentNotFound is returned by GetDocument for unknown names.
var ErrDocumentNotFound = errors.New("document not found")

// Source is a read-only store of proposal documents.
type Source interface {
	ListDocuments(ctx context.Context) ([]proposal.DocumentSummary, error)
	GetDocument(ctx context.Context, name string) (*proposal.Document, error)
}

// Invalidator is implemented by sources that keep cached data.
type Invalidator interface {
	Invalidate()
}

// New builds the source described by cfg.
func New(ctx context.Context, cfg config.Source) (Source, error) {
	switch strings.ToLower(cfg.Type) {
	case config.SourceFile:
		return NewFileSource(cfg.Path), nil
	case config.SourceSQLite:
		return OpenSQL(ctx, DialectSQLite, cfg.DSN, cfg.Migrate)
	case config.SourcePostgres:
		return OpenSQL(ctx, DialectPostgres, cfg.DSN, cfg.Migrate)
	case config.SourceHTTP:
		var auth httpPkg.Auth
		if len(cfg.Headers) > 0 {
			auth = httpPkg.HeaderAuth{Headers: cfg.Headers}
		}
		return NewHTTPSource(cfg.URL, auth), nil
	}
	return nil, fmt.Errorf("%w: unsupported type '%s'", config.ErrInvalidSource, cfg.Type)
}
