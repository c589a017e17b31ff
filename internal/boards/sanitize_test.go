package boards

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(id, typ string, data map[string]any) map[string]any {
	return map[string]any{
		"id":       id,
		"type":     typ,
		"position": map[string]any{"x": 10.0, "y": 20.0},
		"data":     data,
	}
}

func TestSanitizeNodes(t *testing.T) {
	t.Run("website payload", func(t *testing.T) {
		got := SanitizeNodes([]any{node("n1", "website", map[string]any{
			"url":       "https://example.com",
			"title":     "<b>Example</b>",
			"excerpt":   "a summary",
			"favicon":   "javascript:alert(1)",
			"articleId": " art-7 ",
			"stray":     "dropped",
		})})
		require.Len(t, got, 1)

		n := got[0]
		assert.Equal(t, "n1", n.ID)
		assert.Equal(t, "website", n.Type)
		assert.Equal(t, Position{X: 10, Y: 20}, n.Position)
		assert.Equal(t, map[string]any{
			"url":       "https://example.com",
			"title":     "Example",
			"excerpt":   "a summary",
			"favicon":   "",
			"articleId": "art-7",
		}, n.Data)
	})

	t.Run("note text is stripped", func(t *testing.T) {
		got := SanitizeNodes([]any{node("n1", "note", map[string]any{
			"text":  "<script>x()</script>remember this",
			"color": "#fde047",
		})})
		require.Len(t, got, 1)
		assert.Equal(t, "remember this", got[0].Data["text"])
		assert.Equal(t, "#fde047", got[0].Data["color"])
	})

	t.Run("iframe", func(t *testing.T) {
		got := SanitizeNodes([]any{node("n1", "iframe", map[string]any{
			"url": "ftp://files.example.com", "title": "Files",
		})})
		require.Len(t, got, 1)
		assert.Equal(t, "", got[0].Data["url"])
	})

	t.Run("aiChat filters messages", func(t *testing.T) {
		got := SanitizeNodes([]any{node("n1", "aiChat", map[string]any{
			"messages": []any{
				map[string]any{"role": "user", "content": "hello"},
				map[string]any{"role": "wizard", "content": "nope"},
			},
			"contextLabel": "Article: Goroutines",
		})})
		require.Len(t, got, 1)

		msgs, ok := got[0].Data["messages"].([]any)
		require.True(t, ok)
		require.Len(t, msgs, 1)
		assert.Equal(t, "Article: Goroutines", got[0].Data["contextLabel"])
	})

	t.Run("rejections", func(t *testing.T) {
		missingID := node("", "note", map[string]any{"text": "x"})
		unknownType := node("n1", "widget", nil)
		noPosition := map[string]any{"id": "n2", "type": "note", "data": map[string]any{}}
		nanPosition := map[string]any{
			"id": "n3", "type": "note",
			"position": map[string]any{"x": math.NaN(), "y": 0.0},
			"data":     map[string]any{},
		}

		got := SanitizeNodes([]any{missingID, unknownType, noPosition, nanPosition, "not an object", nil})
		assert.Empty(t, got)
	})

	t.Run("junk dimensions collapse to zero", func(t *testing.T) {
		n := node("n1", "note", map[string]any{"text": "x"})
		n["width"] = "wide"
		n["height"] = -5.0
		got := SanitizeNodes([]any{n})
		require.Len(t, got, 1)
		assert.Zero(t, got[0].Width)
		assert.Zero(t, got[0].Height)
	})

	t.Run("keeps the first valid nodes up to the cap", func(t *testing.T) {
		raw := make([]any, 0, MaxNodes+10)
		raw = append(raw, node("", "note", nil)) // invalid, does not count
		for i := 0; i < MaxNodes+9; i++ {
			raw = append(raw, node(fmt.Sprintf("n%d", i), "note", map[string]any{"text": "x"}))
		}

		got := SanitizeNodes(raw)
		require.Len(t, got, MaxNodes)
		assert.Equal(t, "n0", got[0].ID)
		assert.Equal(t, fmt.Sprintf("n%d", MaxNodes-1), got[MaxNodes-1].ID)
	})
}

func TestSanitizeEdges(t *testing.T) {
	t.Run("endpoints are required", func(t *testing.T) {
		got := SanitizeEdges([]any{
			map[string]any{"id": "e1", "source": "a", "target": "b"},
			map[string]any{"id": "", "source": "a", "target": "b"},
			map[string]any{"id": "e2", "source": "", "target": "b"},
			map[string]any{"id": "e3", "source": "a"},
			"junk",
		})
		require.Len(t, got, 1)
		assert.Equal(t, "e1", got[0].ID)
	})

	t.Run("style collapses to solid unless dashed", func(t *testing.T) {
		got := SanitizeEdges([]any{
			map[string]any{"id": "e1", "source": "a", "target": "b", "style": "dashed"},
			map[string]any{"id": "e2", "source": "a", "target": "b", "style": "wavy"},
			map[string]any{"id": "e3", "source": "a", "target": "b"},
		})
		require.Len(t, got, 3)
		assert.Equal(t, "dashed", got[0].Style)
		assert.Equal(t, "solid", got[1].Style)
		assert.Equal(t, "solid", got[2].Style)
	})

	t.Run("labels are clamped", func(t *testing.T) {
		got := SanitizeEdges([]any{map[string]any{
			"id": "e1", "source": "a", "target": "b",
			"label": strings.Repeat("x", MaxEdgeLabelRunes+50),
		}})
		require.Len(t, got, 1)
		assert.Len(t, got[0].Label, MaxEdgeLabelRunes)
	})
}
