package maintenance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarthakagrawal927/reader-backend/internal/store"
)

func seed(t *testing.T) store.Store {
	t.Helper()
	ctx := context.Background()
	db := store.NewMemory()

	require.NoError(t, db.Set(ctx, store.Lists, "l1", map[string]any{
		"name": "Favourites", "ownerId": "u1",
	}))
	require.NoError(t, db.Set(ctx, store.Projects, "p1", map[string]any{
		"name": "Research", "ownerId": "u1", "isDefault": false,
	}))

	// a1 holds one dangling list id; its project is fine.
	require.NoError(t, db.Set(ctx, store.Articles, "a1", map[string]any{
		"ownerId": "u1", "projectId": "p1", "listIds": []string{"l1", "ghost"},
	}))
	// a2 points at a removed project.
	require.NoError(t, db.Set(ctx, store.Articles, "a2", map[string]any{
		"ownerId": "u1", "projectId": "gone", "listIds": []string{},
	}))
	// a3 is a legacy ownerless record and must not be touched.
	require.NoError(t, db.Set(ctx, store.Articles, "a3", map[string]any{
		"ownerId": "", "projectId": "gone-too", "listIds": []string{},
	}))
	// a4 belongs to another user whose default project doesn't exist yet.
	require.NoError(t, db.Set(ctx, store.Articles, "a4", map[string]any{
		"ownerId": "u2", "projectId": "vanished", "listIds": []string{"ghost2"},
	}))
	return db
}

func TestSweep(t *testing.T) {
	ctx := context.Background()
	db := seed(t)
	sw := NewSweeper(db, "0 3 * * *")

	rep, err := sw.Sweep(ctx)
	require.NoError(t, err)

	assert.Equal(t, 4, rep.Articles)
	assert.Equal(t, 2, rep.DanglingListIDs)
	assert.Equal(t, 2, rep.ReassignedArticles)
	assert.Equal(t, 2, rep.DefaultsCreated)

	t.Run("dangling list ids dropped, known ids kept", func(t *testing.T) {
		doc, err := db.Get(ctx, store.Articles, "a1")
		require.NoError(t, err)
		assert.Equal(t, []string{"l1"}, stringSlice(doc.Data["listIds"]))
		assert.Equal(t, "p1", doc.Data["projectId"])
	})

	t.Run("articles of removed projects land in the owner default", func(t *testing.T) {
		doc, err := db.Get(ctx, store.Articles, "a2")
		require.NoError(t, err)
		assert.Equal(t, "u1_default", doc.Data["projectId"])

		def, err := db.Get(ctx, store.Projects, "u1_default")
		require.NoError(t, err)
		assert.Equal(t, "Default", def.Data["name"])
		assert.Equal(t, true, def.Data["isDefault"])
		assert.Equal(t, "u1", def.Data["ownerId"])
	})

	t.Run("legacy ownerless articles untouched", func(t *testing.T) {
		doc, err := db.Get(ctx, store.Articles, "a3")
		require.NoError(t, err)
		assert.Equal(t, "gone-too", doc.Data["projectId"])
	})

	t.Run("defaults created per owner", func(t *testing.T) {
		doc, err := db.Get(ctx, store.Articles, "a4")
		require.NoError(t, err)
		assert.Equal(t, "u2_default", doc.Data["projectId"])
		assert.Empty(t, stringSlice(doc.Data["listIds"]))

		_, err = db.Get(ctx, store.Projects, "u2_default")
		require.NoError(t, err)
	})

	t.Run("second sweep is a no-op", func(t *testing.T) {
		rep, err := sw.Sweep(ctx)
		require.NoError(t, err)
		assert.Equal(t, 4, rep.Articles)
		assert.Zero(t, rep.DanglingListIDs)
		assert.Zero(t, rep.ReassignedArticles)
		assert.Zero(t, rep.DefaultsCreated)
	})
}
