package store

import (
	"encoding/json"
	"fmt"
)

// DataTo decodes a document's field map into the struct pointed to by v.
// The round trip goes through JSON so the same `json` tags drive both
// the stored field names and the HTTP representation.
func DataTo(data map[string]any, v any) error {
	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

// DataFrom converts a struct into the field map stored in a document.
func DataFrom(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	return m, nil
}
