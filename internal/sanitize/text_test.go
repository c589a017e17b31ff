package sanitize

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestPlainText(t *testing.T) {
	t.Run("strips markup", func(t *testing.T) {
		assert.Equal(t, "hello world", PlainText("<p>hello <b>world</b></p>"))
	})

	t.Run("drops script content", func(t *testing.T) {
		got := PlainText(`<script>alert("x")</script>note text`)
		assert.Equal(t, "note text", got)
		assert.NotContains(t, got, "alert")
	})

	t.Run("decodes entities", func(t *testing.T) {
		assert.Equal(t, "fish & chips", PlainText("fish &amp; chips"))
		assert.Equal(t, "5 < 6", PlainText("5 &lt; 6"))
	})

	t.Run("encoded markup is stripped, not revived", func(t *testing.T) {
		assert.Equal(t, "", PlainText("&lt;script&gt;alert(1)&lt;/script&gt;"))
		assert.Equal(t, "hi", PlainText("&lt;b&gt;hi&lt;/b&gt;"))
	})

	t.Run("double-encoded markup is stripped too", func(t *testing.T) {
		assert.Equal(t, "", PlainText("&amp;lt;script&amp;gt;alert(1)&amp;lt;/script&amp;gt;"))
		assert.Equal(t, "deep", PlainText("&amp;lt;b&amp;gt;deep&amp;lt;/b&amp;gt;"))
	})

	t.Run("trims whitespace", func(t *testing.T) {
		assert.Equal(t, "hi", PlainText("  hi\n\t"))
	})

	t.Run("empty stays empty", func(t *testing.T) {
		assert.Equal(t, "", PlainText(""))
	})
}

func TestPlainTextIdempotent(t *testing.T) {
	inputs := []string{
		"plain text",
		"<div><p>nested <em>markup</em></p></div>",
		"fish &amp; chips",
		"5 &lt; 6 &gt; 4",
		`<a href="https://example.com" onclick="steal()">link</a>`,
		"  padded  ",
		"<b>hi</b>",
		"&lt;script&gt;x&lt;/script&gt;",
		"&lt;b&gt;bold&lt;/b&gt; and &amp;lt;i&amp;gt;deeper&amp;lt;/i&amp;gt;",
	}
	for _, in := range inputs {
		once := PlainText(in)
		assert.Equal(t, once, PlainText(once), "input %q", in)
	}
}

func TestClamp(t *testing.T) {
	t.Run("short input unchanged", func(t *testing.T) {
		assert.Equal(t, "abc", Clamp("abc", 10))
		assert.Equal(t, "abc", Clamp("abc", 3))
	})

	t.Run("long input cut to exact length", func(t *testing.T) {
		got := Clamp(strings.Repeat("a", 700), 500)
		assert.Equal(t, 500, utf8.RuneCountInString(got))
	})

	t.Run("cuts on rune boundaries", func(t *testing.T) {
		got := Clamp("héllo wörld", 3)
		assert.Equal(t, "hél", got)
		assert.True(t, utf8.ValidString(got))
	})

	t.Run("non-positive max yields empty", func(t *testing.T) {
		assert.Equal(t, "", Clamp("abc", 0))
		assert.Equal(t, "", Clamp("abc", -1))
	})
}

func TestField(t *testing.T) {
	got := Field("<h1>"+strings.Repeat("x", 600)+"</h1>", 500)
	assert.Equal(t, 500, utf8.RuneCountInString(got))
	assert.NotContains(t, got, "<")
}
