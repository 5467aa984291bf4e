package source

import (
	"context"
	"sync"
	"time"

	"github.com/bascanada/proposalviewer/pkg/proposal"
)

type cacheEntry[T any] struct {
	value    T
	cachedAt time.Time
}

// Cached keeps documents and listings of another source in memory.
// A zero TTL keeps entries until Invalidate is called.
// Thread-safe for concurrent access.
type Cached struct {
	inner Source
	ttl   time.Duration
	now   func() time.Time

	mu      sync.RWMutex
	listing *cacheEntry[[]proposal.DocumentSummary]
	docs    map[string]cacheEntry[*proposal.Document]
}

func NewCached(inner Source, ttl time.Duration) *Cached {
	return &Cached{
		inner: inner,
		ttl:   ttl,
		now:   time.Now,
		docs:  map[string]cacheEntry[*proposal.Document]{},
	}
}

// Unwrap returns the cached source.
func (c *Cached) Unwrap() Source {
	return c.inner
}

func (c *Cached) fresh(cachedAt time.Time) bool {
	return c.ttl <= 0 || c.now().Sub(cachedAt) <= c.ttl
}

func (c *Cached) ListDocuments(ctx context.Context) ([]proposal.DocumentSummary, error) {
	c.mu.RLock()
	if c.listing != nil && c.fresh(c.listing.cachedAt) {
		listing := append([]proposal.DocumentSummary(nil), c.listing.value...)
		c.mu.RUnlock()
		return listing, nil
	}
	c.mu.RUnlock()

	listing, err := c.inner.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.listing = &cacheEntry[[]proposal.DocumentSummary]{value: append([]proposal.DocumentSummary(nil), listing...), cachedAt: c.now()}
	c.mu.Unlock()
	return listing, nil
}

// GetDocument returns the cached document. Callers must not modify it.
func (c *Cached) GetDocument(ctx context.Context, name string) (*proposal.Document, error) {
	c.mu.RLock()
	entry, ok := c.docs[name]
	c.mu.RUnlock()
	if ok && c.fresh(entry.cachedAt) {
		return entry.value, nil
	}

	doc, err := c.inner.GetDocument(ctx, name)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.docs[name] = cacheEntry[*proposal.Document]{value: doc, cachedAt: c.now()}
	c.mu.Unlock()
	return doc, nil
}

// Invalidate clears the cache
func (c *Cached) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.listing = nil
	c.docs = map[string]cacheEntry[*proposal.Document]{}
}
