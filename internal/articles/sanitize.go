package articles

import (
	"math"
	"strings"

	"github.com/sarthakagrawal927/reader-backend/internal/sanitize"
)

const (
	MaxTitleRunes = 500
	MaxTags       = 20
	MaxTagRunes   = 40

	maxAnchorTagRunes     = 40
	maxAnchorPreviewRunes = 240
)

// NormalizeTitle cleans and clamps a title, falling back when nothing
// survives sanitization.
func NormalizeTitle(raw, fallback string) string {
	title := sanitize.Field(raw, MaxTitleRunes)
	if title == "" {
		return fallback
	}
	return title
}

// NormalizeStatus coerces any input to a known reading status.
func NormalizeStatus(raw string) string {
	if raw == "read" {
		return "read"
	}
	return "in_progress"
}

// SanitizeNotes normalizes an untrusted notes payload. Elements that
// are not objects or have no usable id are dropped; everything else is
// kept with its text stripped to plain text. Never errors: a note list
// that came in malformed goes out repaired.
func SanitizeNotes(raw []any) []Note {
	out := make([]Note, 0, len(raw))
	for _, el := range raw {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		id, ok := noteID(m["id"])
		if !ok {
			continue
		}

		text, _ := m["text"].(string)
		note := Note{ID: id, Text: sanitize.PlainText(text)}
		if anchor, ok := m["anchor"].(map[string]any); ok {
			note.Anchor = sanitizeAnchor(anchor)
		}
		out = append(out, note)
	}
	return out
}

// noteID accepts the id the way clients actually send it: a non-empty
// string or a finite non-negative number.
func noteID(v any) (any, bool) {
	switch id := v.(type) {
	case string:
		return id, id != ""
	case float64:
		return id, !math.IsNaN(id) && !math.IsInf(id, 0)
	case int:
		return id, true
	case int64:
		return id, true
	default:
		return nil, false
	}
}

func sanitizeAnchor(m map[string]any) *Anchor {
	idx, ok := finiteNumber(m["elementIndex"])
	if !ok || idx < 0 {
		return nil
	}

	tagName, _ := m["tagName"].(string)
	preview, _ := m["textPreview"].(string)
	return &Anchor{
		ElementIndex: int(idx),
		TagName:      sanitize.Field(tagName, maxAnchorTagRunes),
		TextPreview:  sanitize.Field(preview, maxAnchorPreviewRunes),
	}
}

func finiteNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// SanitizeTags keeps at most MaxTags clean tag strings. Duplicates are
// folded case-insensitively, keeping the casing of the first occurrence.
func SanitizeTags(raw []any) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, el := range raw {
		s, ok := el.(string)
		if !ok {
			continue
		}
		tag := sanitize.Field(s, MaxTagRunes)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
		if len(out) == MaxTags {
			break
		}
	}
	return out
}

// sanitizeListIDs drops empty and duplicate ids but does not check the
// lists exist; dangling references are repaired by the nightly sweep.
func sanitizeListIDs(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, id := range raw {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
