package ai

import (
	"github.com/sarthakagrawal927/reader-backend/internal/sanitize"
)

const (
	// MaxMessages is how much chat history is kept per conversation;
	// older messages are dropped first.
	MaxMessages = 80
	// MaxMessageRunes caps a single message body.
	MaxMessageRunes = 4000
)

// Message is one turn of an AI conversation, stored on articles and
// board nodes and replayed to providers.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SanitizeMessages normalizes an untrusted message list. Elements that
// are not objects, carry an unknown role, or end up with empty content
// are dropped rather than rejected. When more than MaxMessages survive,
// the most recent ones win.
func SanitizeMessages(raw []any) []Message {
	out := make([]Message, 0, len(raw))
	for _, el := range raw {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		role, _ := m["role"].(string)
		if role != "user" && role != "assistant" {
			continue
		}
		content, _ := m["content"].(string)
		content = sanitize.Clamp(sanitize.PlainText(content), MaxMessageRunes)
		if content == "" {
			continue
		}
		out = append(out, Message{Role: role, Content: content})
	}
	if len(out) > MaxMessages {
		out = out[len(out)-MaxMessages:]
	}
	return out
}
