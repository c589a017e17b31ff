package boards

import (
	"math"
	"net/url"
	"strings"

	"github.com/sarthakagrawal927/reader-backend/internal/ai"
	"github.com/sarthakagrawal927/reader-backend/internal/sanitize"
)

const (
	MaxNodes          = 200
	MaxEdges          = 500
	MaxEdgeLabelRunes = 200

	maxNodeTitleRunes   = 500
	maxNodeExcerptRunes = 300
	maxContextLabel     = 200
)

// SanitizeNodes normalizes an untrusted node array. Nodes missing an
// id, carrying an unknown type, or lacking a finite position are
// dropped. The first MaxNodes valid nodes are kept in their original
// order.
func SanitizeNodes(raw []any) []Node {
	out := make([]Node, 0, min(len(raw), MaxNodes))
	for _, el := range raw {
		if len(out) == MaxNodes {
			break
		}
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		id, _ := m["id"].(string)
		if id == "" {
			continue
		}

		typ, _ := m["type"].(string)
		data, _ := m["data"].(map[string]any)
		payload, known := sanitizeNodeData(typ, data)
		if !known {
			continue
		}

		pos, ok := sanitizePosition(m["position"])
		if !ok {
			continue
		}

		out = append(out, Node{
			ID:       id,
			Type:     typ,
			Position: pos,
			Width:    dimension(m["width"]),
			Height:   dimension(m["height"]),
			Data:     payload,
		})
	}
	return out
}

// sanitizeNodeData builds the fixed per-type payload. The second
// return is false for types the board doesn't know.
func sanitizeNodeData(typ string, data map[string]any) (map[string]any, bool) {
	str := func(key string) string {
		s, _ := data[key].(string)
		return s
	}

	switch typ {
	case "website":
		return map[string]any{
			"url":       safeURL(str("url")),
			"title":     sanitize.Field(str("title"), maxNodeTitleRunes),
			"excerpt":   sanitize.Field(str("excerpt"), maxNodeExcerptRunes),
			"favicon":   safeURL(str("favicon")),
			"articleId": strings.TrimSpace(str("articleId")),
		}, true
	case "note":
		return map[string]any{
			"text":  sanitize.PlainText(str("text")),
			"color": sanitize.Field(str("color"), 40),
		}, true
	case "iframe":
		return map[string]any{
			"url":   safeURL(str("url")),
			"title": sanitize.Field(str("title"), maxNodeTitleRunes),
		}, true
	case "aiChat":
		messages, _ := data["messages"].([]any)
		return map[string]any{
			"messages":     messagesData(ai.SanitizeMessages(messages)),
			"contextLabel": sanitize.Field(str("contextLabel"), maxContextLabel),
		}, true
	default:
		return nil, false
	}
}

func sanitizePosition(v any) (Position, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return Position{}, false
	}
	x, okX := finiteNumber(m["x"])
	y, okY := finiteNumber(m["y"])
	if !okX || !okY {
		return Position{}, false
	}
	return Position{X: x, Y: y}, true
}

// dimension coerces an optional width/height to a usable value; junk
// becomes zero and is omitted from JSON.
func dimension(v any) float64 {
	n, ok := finiteNumber(v)
	if !ok || n < 0 {
		return 0
	}
	return n
}

// SanitizeEdges keeps at most MaxEdges edges that name an id, source
// and target. Labels are clamped and style collapses to solid unless
// explicitly dashed.
func SanitizeEdges(raw []any) []Edge {
	out := make([]Edge, 0, min(len(raw), MaxEdges))
	for _, el := range raw {
		if len(out) == MaxEdges {
			break
		}
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		id, _ := m["id"].(string)
		source, _ := m["source"].(string)
		target, _ := m["target"].(string)
		if id == "" || source == "" || target == "" {
			continue
		}

		label, _ := m["label"].(string)
		style, _ := m["style"].(string)
		if style != "dashed" {
			style = "solid"
		}

		out = append(out, Edge{
			ID:     id,
			Source: source,
			Target: target,
			Label:  sanitize.Field(label, MaxEdgeLabelRunes),
			Style:  style,
		})
	}
	return out
}

func safeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}
	return raw
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

func messagesData(messages []ai.Message) []any {
	out := make([]any, 0, len(messages))
	for _, m := range messages {
		out = append(out, map[string]any{"role": m.Role, "content": m.Content})
	}
	return out
}
