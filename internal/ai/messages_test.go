package ai

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeMessages(t *testing.T) {
	t.Run("keeps valid turns in order", func(t *testing.T) {
		got := SanitizeMessages([]any{
			map[string]any{"role": "user", "content": "hi"},
			map[string]any{"role": "assistant", "content": "hello"},
		})
		require.Len(t, got, 2)
		assert.Equal(t, Message{Role: "user", Content: "hi"}, got[0])
		assert.Equal(t, "assistant", got[1].Role)
	})

	t.Run("drops system turns", func(t *testing.T) {
		got := SanitizeMessages([]any{
			map[string]any{"role": "system", "content": "be brief"},
			map[string]any{"role": "user", "content": "hi"},
		})
		require.Len(t, got, 1)
		assert.Equal(t, "user", got[0].Role)
	})

	t.Run("drops junk instead of failing", func(t *testing.T) {
		got := SanitizeMessages([]any{
			"just a string",
			42,
			nil,
			map[string]any{"role": "wizard", "content": "cast"},
			map[string]any{"role": "user"},
			map[string]any{"role": "user", "content": "   "},
			map[string]any{"role": "user", "content": "kept"},
		})
		require.Len(t, got, 1)
		assert.Equal(t, "kept", got[0].Content)
	})

	t.Run("strips markup from content", func(t *testing.T) {
		got := SanitizeMessages([]any{
			map[string]any{"role": "user", "content": "<script>x()</script>question"},
		})
		require.Len(t, got, 1)
		assert.Equal(t, "question", got[0].Content)
	})

	t.Run("clamps long content", func(t *testing.T) {
		got := SanitizeMessages([]any{
			map[string]any{"role": "user", "content": strings.Repeat("a", 5000)},
		})
		require.Len(t, got, 1)
		assert.Equal(t, MaxMessageRunes, utf8.RuneCountInString(got[0].Content))
	})

	t.Run("keeps the most recent when over the cap", func(t *testing.T) {
		raw := make([]any, 0, 100)
		for i := 0; i < 100; i++ {
			raw = append(raw, map[string]any{"role": "user", "content": fmt.Sprintf("msg-%d", i)})
		}
		got := SanitizeMessages(raw)
		require.Len(t, got, MaxMessages)
		assert.Equal(t, "msg-20", got[0].Content)
		assert.Equal(t, "msg-99", got[len(got)-1].Content)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, SanitizeMessages(nil))
		assert.Empty(t, SanitizeMessages([]any{}))
	})
}
