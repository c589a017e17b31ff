package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// PlainText strips every tag and script from s and returns trimmed text
// with entities decoded, so "&amp;" comes back as "&". Stripping and
// decoding repeat until the value stops changing: decoding can uncover
// another layer of markup ("&lt;script&gt;" decodes to a live script
// tag), and only a fixed point is safe to hand back. A pass only removes
// tags and decodes entities, neither of which re-encodes, so the loop
// converges. Re-running PlainText over its own output returns it
// unchanged.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	for {
		next := html.UnescapeString(strict.Sanitize(s))
		if next == s {
			break
		}
		s = next
	}
	return strings.TrimSpace(s)
}

// Clamp truncates s to at most max runes. Byte-level truncation would
// split multibyte characters, so the cut is made on the decoded runes.
func Clamp(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// Field is PlainText followed by Clamp, the normal treatment for any
// short user-supplied string (titles, names, labels, tags).
func Field(s string, max int) string {
	return Clamp(PlainText(s), max)
}
