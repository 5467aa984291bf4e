package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/bascanada/proposalviewer/pkg/config"
	"github.com/bascanada/proposalviewer/pkg/log"
	"github.com/bascanada/proposalviewer/pkg/proposal"
)

// Catalog routes document lookups across the configured sources. A document
// listed under documents in the config is read only from its source; any
// other name is looked up in every source in name order.
type Catalog struct {
	sources map[string]Source
	order   []string
	docs    config.Documents
}

// NewCatalog opens every source of cfg, wrapped in a cache unless caching
// is disabled.
func NewCatalog(ctx context.Context, cfg *config.Config) (*Catalog, error) {
	ttl, err := cfg.CacheTTL()
	if err != nil {
		return nil, err
	}

	c := &Catalog{sources: map[string]Source{}, docs: cfg.Documents}
	for _, name := range cfg.SourceNames() {
		src, err := New(ctx, cfg.Sources[name])
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("source '%s': %w", name, err)
		}
		if !cfg.Cache.Disabled {
			src = NewCached(src, ttl)
		}
		c.sources[name] = src
		c.order = append(c.order, name)
		log.Debug("opened source %s (%s)", name, cfg.Sources[name].Type)
	}
	return c, nil
}

// NewCatalogFromSources builds a catalog over already opened sources.
func NewCatalogFromSources(sources map[string]Source, docs config.Documents) *Catalog {
	c := &Catalog{sources: sources, docs: docs}
	for name := range sources {
		c.order = append(c.order, name)
	}
	sort.Strings(c.order)
	return c
}

// Source returns the named source.
func (c *Catalog) Source(name string) (Source, bool) {
	src, ok := c.sources[name]
	return src, ok
}

// Names returns the source names in lookup order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.order...)
}

func (c *Catalog) ListDocuments(ctx context.Context) ([]proposal.DocumentSummary, error) {
	summaries := []proposal.DocumentSummary{}
	seen := map[string]bool{}

	for _, name := range c.order {
		listing, err := c.sources[name].ListDocuments(ctx)
		if err != nil {
			return nil, fmt.Errorf("source '%s': %w", name, err)
		}
		for _, sum := range listing {
			if ref, ok := c.docs[sum.Name]; ok && ref.Source != name {
				continue
			}
			if seen[sum.Name] {
				continue
			}
			seen[sum.Name] = true
			summaries = append(summaries, sum)
		}
	}

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })
	return summaries, nil
}

func (c *Catalog) GetDocument(ctx context.Context, name string) (*proposal.Document, error) {
	if ref, ok := c.docs[name]; ok {
		src, ok := c.sources[ref.Source]
		if !ok {
			return nil, fmt.Errorf("%w: %s", config.ErrUnknownSource, ref.Source)
		}
		return src.GetDocument(ctx, name)
	}

	for _, srcName := range c.order {
		doc, err := c.sources[srcName].GetDocument(ctx, name)
		if err == nil {
			return doc, nil
		}
		if !errors.Is(err, ErrDocumentNotFound) {
			return nil, fmt.Errorf("source '%s': %w", srcName, err)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, name)
}

// Invalidate drops the cached data of every source.
func (c *Catalog) Invalidate() {
	for _, src := range c.sources {
		if inv, ok := src.(Invalidator); ok {
			inv.Invalidate()
		}
	}
}

// WatchDirs returns the directories of file sources.
func (c *Catalog) WatchDirs() []string {
	var dirs []string
	for _, name := range c.order {
		src := c.sources[name]
		if cached, ok := src.(*Cached); ok {
			src = cached.Unwrap()
		}
		if fs, ok := src.(*FileSource); ok {
			dirs = append(dirs, fs.Dir())
		}
	}
	return dirs
}

// SQLSources returns the SQL sources by name.
func (c *Catalog) SQLSources() map[string]*SQLSource {
	out := map[string]*SQLSource{}
	for name, src := range c.sources {
		if cached, ok := src.(*Cached); ok {
			src = cached.Unwrap()
		}
		if s, ok := src.(*SQLSource); ok {
			out[name] = s
		}
	}
	return out
}

// Close releases the sources holding connections.
func (c *Catalog) Close() error {
	var errs []error
	for _, src := range c.sources {
		if cached, ok := src.(*Cached); ok {
			src = cached.Unwrap()
		}
		if closer, ok := src.(io.Closer); ok {
			errs = append(errs, closer.Close())
		}
	}
	return errors.Join(errs...)
}
