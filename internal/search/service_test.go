package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarthakagrawal927/reader-backend/internal/store"
)

func newIndexedService(t *testing.T) *Service {
	t.Helper()
	idx, err := OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	svc := NewService(idx, store.NewMemory())
	svc.Index(Record{
		ID:        "a1",
		OwnerID:   "alice",
		ProjectID: "alice_default",
		Title:     "Understanding Goroutines",
		Byline:    "Dave Cheney",
		Text:      "Goroutines are lightweight threads managed by the Go runtime.",
		Tags:      []string{"golang", "concurrency"},
	})
	svc.Index(Record{
		ID:        "a2",
		OwnerID:   "alice",
		ProjectID: "proj-research",
		Title:     "A Field Guide to Sourdough",
		Text:      "Goroutines never appear in bread baking, but wild yeast does.",
		Tags:      []string{"baking"},
	})
	svc.Index(Record{
		ID:        "b1",
		OwnerID:   "bob",
		ProjectID: "bob_default",
		Title:     "Goroutines for Beginners",
		Text:      "An introduction to concurrency in Go.",
	})
	return svc
}

func TestSearchIndexed(t *testing.T) {
	svc := newIndexedService(t)
	ctx := context.Background()

	t.Run("scoped to owner", func(t *testing.T) {
		results, err := svc.Search(ctx, "alice", "goroutines", "")
		require.NoError(t, err)
		require.Len(t, results, 2)
		for _, r := range results {
			assert.NotEqual(t, "b1", r.ID)
		}
	})

	t.Run("title match outranks body match", func(t *testing.T) {
		results, err := svc.Search(ctx, "alice", "goroutines", "")
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "a1", results[0].ID)
		assert.Equal(t, "Understanding Goroutines", results[0].Title)
	})

	t.Run("project filter", func(t *testing.T) {
		results, err := svc.Search(ctx, "alice", "goroutines", "proj-research")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "a2", results[0].ID)
	})

	t.Run("tag match", func(t *testing.T) {
		results, err := svc.Search(ctx, "alice", "baking", "")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "a2", results[0].ID)
	})

	t.Run("short query returns nothing", func(t *testing.T) {
		results, err := svc.Search(ctx, "alice", "g", "")
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("removed article stops matching", func(t *testing.T) {
		svc.Remove("a2")
		results, err := svc.Search(ctx, "alice", "sourdough", "")
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestSearchFallbackScan(t *testing.T) {
	ctx := context.Background()
	db := store.NewMemory()

	require.NoError(t, db.Set(ctx, store.Articles, "a1", map[string]any{
		"ownerId":     "alice",
		"projectId":   "alice_default",
		"title":       "Understanding Goroutines",
		"byline":      "Dave Cheney",
		"excerpt":     "Lightweight threads.",
		"textContent": "Goroutines are lightweight threads managed by the Go runtime.",
		"tags":        []string{"golang"},
	}))
	require.NoError(t, db.Set(ctx, store.Articles, "a2", map[string]any{
		"ownerId":     "alice",
		"projectId":   "proj-research",
		"title":       "A Field Guide to Sourdough",
		"textContent": "Wild yeast and patience.",
		"tags":        []string{"baking"},
	}))
	require.NoError(t, db.Set(ctx, store.Articles, "b1", map[string]any{
		"ownerId":     "bob",
		"title":       "Goroutines for Beginners",
		"textContent": "An introduction.",
	}))

	svc := NewService(nil, db)

	t.Run("case-insensitive substring over owner articles", func(t *testing.T) {
		results, err := svc.Search(ctx, "alice", "GOROUTINES", "")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "a1", results[0].ID)
		assert.Equal(t, "Understanding Goroutines", results[0].Title)
		assert.Equal(t, "Lightweight threads.", results[0].Excerpt)
	})

	t.Run("tag substring", func(t *testing.T) {
		results, err := svc.Search(ctx, "alice", "baking", "")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "a2", results[0].ID)
	})

	t.Run("project filter", func(t *testing.T) {
		results, err := svc.Search(ctx, "alice", "yeast", "alice_default")
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("short query returns nothing", func(t *testing.T) {
		results, err := svc.Search(ctx, "alice", "a", "")
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}
