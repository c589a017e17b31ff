package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCRUD(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	id, err := m.Add(ctx, "things", map[string]any{"name": "first", "n": 1})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	doc, err := m.Get(ctx, "things", id)
	require.NoError(t, err)
	assert.Equal(t, "first", doc.Data["name"])

	require.NoError(t, m.Update(ctx, "things", id, map[string]any{"name": "second"}))
	doc, err = m.Get(ctx, "things", id)
	require.NoError(t, err)
	assert.Equal(t, "second", doc.Data["name"])
	assert.EqualValues(t, 1, doc.Data["n"], "untouched fields survive a merge")

	require.NoError(t, m.Delete(ctx, "things", id))
	_, err = m.Get(ctx, "things", id)
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting again is a no-op
	require.NoError(t, m.Delete(ctx, "things", id))
}

func TestMemoryGetMissing(t *testing.T) {
	m := NewMemory()
	_, err := m.Get(context.Background(), "none", "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryNestedMerge(t *testing.T) {
	// a merge-set touching one key of a nested map must keep its siblings,
	// matching what MergeAll does on Firestore
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "things", "a", map[string]any{
		"meta": map[string]any{"lang": "en", "words": 120},
		"tags": []any{"go"},
	}))

	require.NoError(t, m.Update(ctx, "things", "a", map[string]any{
		"meta": map[string]any{"words": 240},
		"tags": []any{"reading"},
	}))

	doc, err := m.Get(ctx, "things", "a")
	require.NoError(t, err)

	meta, ok := doc.Data["meta"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "en", meta["lang"], "sibling keys of a merged map survive")
	assert.EqualValues(t, 240, meta["words"])
	assert.Equal(t, []any{"reading"}, doc.Data["tags"], "arrays replace wholesale")

	t.Run("non-map value replaces a stored map", func(t *testing.T) {
		require.NoError(t, m.Update(ctx, "things", "a", map[string]any{"meta": "gone"}))
		doc, err := m.Get(ctx, "things", "a")
		require.NoError(t, err)
		assert.Equal(t, "gone", doc.Data["meta"])
	})
}

func TestMemoryServerTimestamp(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	before := time.Now().Add(-time.Second)

	require.NoError(t, m.Set(ctx, "things", "a", map[string]any{
		"createdAt": ServerTimestamp,
		"name":      "x",
	}))

	doc, err := m.Get(ctx, "things", "a")
	require.NoError(t, err)
	ts, ok := doc.Data["createdAt"].(time.Time)
	require.True(t, ok, "sentinel should resolve to a time, got %T", doc.Data["createdAt"])
	assert.True(t, ts.After(before))
}

func TestMemoryQuery(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "articles", "a1", map[string]any{
		"ownerId": "u1", "status": "read", "listIds": []any{"l1", "l2"},
	}))
	require.NoError(t, m.Set(ctx, "articles", "a2", map[string]any{
		"ownerId": "u1", "status": "in_progress", "listIds": []any{"l2"},
	}))
	require.NoError(t, m.Set(ctx, "articles", "a3", map[string]any{
		"ownerId": "u2", "status": "read", "listIds": []any{},
	}))

	t.Run("equality", func(t *testing.T) {
		docs, err := m.Query(ctx, "articles", Filter{Path: "ownerId", Op: "==", Value: "u1"})
		require.NoError(t, err)
		assert.Len(t, docs, 2)
	})

	t.Run("combined filters narrow", func(t *testing.T) {
		docs, err := m.Query(ctx, "articles",
			Filter{Path: "ownerId", Op: "==", Value: "u1"},
			Filter{Path: "status", Op: "==", Value: "read"},
		)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "a1", docs[0].ID)
	})

	t.Run("array-contains", func(t *testing.T) {
		docs, err := m.Query(ctx, "articles", Filter{Path: "listIds", Op: "array-contains", Value: "l2"})
		require.NoError(t, err)
		assert.Len(t, docs, 2)
	})

	t.Run("array-contains on string slice", func(t *testing.T) {
		require.NoError(t, m.Set(ctx, "articles", "a4", map[string]any{
			"ownerId": "u3", "listIds": []string{"l9"},
		}))
		docs, err := m.Query(ctx, "articles", Filter{Path: "listIds", Op: "array-contains", Value: "l9"})
		require.NoError(t, err)
		assert.Len(t, docs, 1)
	})

	t.Run("in", func(t *testing.T) {
		docs, err := m.Query(ctx, "articles", Filter{Path: "status", Op: "in", Value: []any{"read"}})
		require.NoError(t, err)
		assert.Len(t, docs, 2)
	})

	t.Run("no filters returns everything", func(t *testing.T) {
		docs, err := m.Query(ctx, "articles")
		require.NoError(t, err)
		assert.Len(t, docs, 4)
	})

	t.Run("missing field never matches", func(t *testing.T) {
		docs, err := m.Query(ctx, "articles", Filter{Path: "ghost", Op: "==", Value: "x"})
		require.NoError(t, err)
		assert.Empty(t, docs)
	})
}

func TestMemoryNumericEquality(t *testing.T) {
	// ints written directly must match the float64s the JSON codec produces
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Set(ctx, "things", "a", map[string]any{"n": 5}))

	docs, err := m.Query(ctx, "things", Filter{Path: "n", Op: "==", Value: float64(5)})
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestMemoryBatchWrite(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "articles", "keep", map[string]any{"projectId": "p1"}))
	require.NoError(t, m.Set(ctx, "articles", "gone", map[string]any{"projectId": "p1"}))

	err := m.BatchWrite(ctx, []WriteOp{
		{Collection: "articles", ID: "keep", Fields: map[string]any{"projectId": "p2", "updatedAt": ServerTimestamp}},
		{Collection: "articles", ID: "gone", Delete: true},
		{Collection: "articles", ID: "fresh", Fields: map[string]any{"projectId": "p2"}},
	})
	require.NoError(t, err)

	doc, err := m.Get(ctx, "articles", "keep")
	require.NoError(t, err)
	assert.Equal(t, "p2", doc.Data["projectId"])
	assert.IsType(t, time.Time{}, doc.Data["updatedAt"])

	_, err = m.Get(ctx, "articles", "gone")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = m.Get(ctx, "articles", "fresh")
	assert.NoError(t, err)
}

func TestMemoryIsolation(t *testing.T) {
	// mutations of returned or stored-from maps must not leak inside
	ctx := context.Background()
	m := NewMemory()

	in := map[string]any{"tags": []any{"go"}}
	require.NoError(t, m.Set(ctx, "things", "a", in))
	in["tags"].([]any)[0] = "mutated"

	doc, err := m.Get(ctx, "things", "a")
	require.NoError(t, err)
	assert.Equal(t, "go", doc.Data["tags"].([]any)[0])

	doc.Data["tags"].([]any)[0] = "mutated again"
	doc2, err := m.Get(ctx, "things", "a")
	require.NoError(t, err)
	assert.Equal(t, "go", doc2.Data["tags"].([]any)[0])
}

func TestCodecRoundTrip(t *testing.T) {
	type entity struct {
		Name    string    `json:"name"`
		ListIDs []string  `json:"listIds"`
		Created time.Time `json:"createdAt"`
	}

	in := entity{Name: "x", ListIDs: []string{"a", "b"}, Created: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	data, err := DataFrom(in)
	require.NoError(t, err)
	assert.Equal(t, "x", data["name"])

	var out entity
	require.NoError(t, DataTo(data, &out))
	assert.Equal(t, in.Name, out.Name)
	assert.Equal(t, in.ListIDs, out.ListIDs)
	assert.True(t, in.Created.Equal(out.Created))
}

func TestCodecReadsStoredTime(t *testing.T) {
	// documents read back from a backend carry real time.Time values,
	// which must decode into struct time fields
	type entity struct {
		Created time.Time `json:"createdAt"`
	}
	when := time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)

	var out entity
	require.NoError(t, DataTo(map[string]any{"createdAt": when}, &out))
	assert.True(t, when.Equal(out.Created))
}
