package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestCached(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		ttl           time.Duration
		advance       time.Duration
		invalidate    bool
		expectedCalls int
	}{
		{name: "served from cache within ttl", ttl: time.Minute, advance: 30 * time.Second, expectedCalls: 1},
		{name: "reloaded after ttl", ttl: time.Minute, advance: 2 * time.Minute, expectedCalls: 2},
		{name: "zero ttl never expires", ttl: 0, advance: 24 * time.Hour, expectedCalls: 1},
		{name: "invalidate drops entries", ttl: 0, invalidate: true, expectedCalls: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := newMemorySource(sampleDocument("acme-2024"))
			clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
			cached := NewCached(inner, tt.ttl)
			cached.now = clock.now

			_, err := cached.GetDocument(ctx, "acme-2024")
			require.NoError(t, err)

			clock.t = clock.t.Add(tt.advance)
			if tt.invalidate {
				cached.Invalidate()
			}

			doc, err := cached.GetDocument(ctx, "acme-2024")
			require.NoError(t, err)
			assert.Equal(t, "acme-2024", doc.Name)
			assert.Equal(t, tt.expectedCalls, inner.calls)
		})
	}
}

func TestCached_ListingIsCopied(t *testing.T) {
	inner := newMemorySource(sampleDocument("acme-2024"))
	cached := NewCached(inner, 0)

	first, err := cached.ListDocuments(context.Background())
	require.NoError(t, err)
	first[0].Name = "changed"

	second, err := cached.ListDocuments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "acme-2024", second[0].Name)
	assert.Equal(t, 1, inner.calls)
}

func TestCached_ErrorsAreNotCached(t *testing.T) {
	inner := newMemorySource(sampleDocument("acme-2024"))
	inner.err = errors.New("connection refused")
	cached := NewCached(inner, time.Hour)

	_, err := cached.GetDocument(context.Background(), "acme-2024")
	require.Error(t, err)

	inner.err = nil
	_, err = cached.GetDocument(context.Background(), "acme-2024")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)

	_, err = cached.GetDocument(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}
