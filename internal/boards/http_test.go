package boards

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarthakagrawal927/reader-backend/internal/auth"
	"github.com/sarthakagrawal927/reader-backend/internal/store"
)

func newRouter(uid string) (*gin.Engine, *Repo) {
	gin.SetMode(gin.TestMode)
	repo := NewRepo(store.NewMemory())

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(auth.CtxUserUID, uid) })
	Register(r.Group("/api/boards"), repo)
	return r, repo
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBoardEndpoints(t *testing.T) {
	r, _ := newRouter("u1")

	w := doJSON(t, r, http.MethodPost, "/api/boards", `{
		"name": "Research",
		"nodes": [
			{"id": "n1", "type": "bogus", "position": {"x": 0, "y": 0}, "data": {}},
			{"id": "n2", "type": "note", "position": {"x": 10, "y": 20}, "data": {"text": "<b>keep</b> me", "color": "yellow"}}
		],
		"edges": [
			{"id": "e1", "source": "n2", "target": "n2", "style": "wavy"}
		]
	}`)
	require.Equal(t, http.StatusOK, w.Code)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	t.Run("get returns the sanitized board", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/boards/"+created.ID, "")
		require.Equal(t, http.StatusOK, w.Code)

		var b Board
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
		require.Len(t, b.Nodes, 1)
		assert.Equal(t, "n2", b.Nodes[0].ID)
		assert.Equal(t, "keep me", b.Nodes[0].Data["text"])
		require.Len(t, b.Edges, 1)
		assert.Equal(t, "solid", b.Edges[0].Style)
	})

	t.Run("list returns summaries without payloads", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/boards", "")
		require.Equal(t, http.StatusOK, w.Code)

		var items []map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
		require.Len(t, items, 1)
		assert.Equal(t, float64(1), items[0]["nodeCount"])
		assert.NotContains(t, items[0], "nodes")
	})

	t.Run("update replaces nodes wholesale", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPut, "/api/boards/"+created.ID, `{"nodes": []}`)
		require.Equal(t, http.StatusOK, w.Code)

		var b Board
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
		assert.Empty(t, b.Nodes)
		assert.Len(t, b.Edges, 1)
	})

	t.Run("delete then 404", func(t *testing.T) {
		w := doJSON(t, r, http.MethodDelete, "/api/boards/"+created.ID, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success": true}`, w.Body.String())

		w = doJSON(t, r, http.MethodGet, "/api/boards/"+created.ID, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error": "Board not found"}`, w.Body.String())
	})
}

func TestBoardForeignAccess(t *testing.T) {
	r, repo := newRouter("u1")

	b, err := repo.Create(context.Background(), "u2", "Theirs", nil, nil)
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodGet, "/api/boards/"+b.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error": "Board not found"}`, w.Body.String())
}
