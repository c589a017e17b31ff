package store

import (
	"context"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-memory Store used by tests and by local runs started
// without Firebase credentials. All data is copied on the way in and
// out so callers never share maps with the store.
type Memory struct {
	mu   sync.RWMutex
	cols map[string]map[string]map[string]any
	now  func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		cols: make(map[string]map[string]map[string]any),
		now:  time.Now,
	}
}

func (m *Memory) Get(ctx context.Context, col, id string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.cols[col][id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return Document{ID: id, Data: cloneMap(data)}, nil
}

func (m *Memory) Query(ctx context.Context, col string, filters ...Filter) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Document
	for id, data := range m.cols[col] {
		if matchesAll(data, filters) {
			out = append(out, Document{ID: id, Data: cloneMap(data)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) Add(ctx context.Context, col string, data map[string]any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	m.put(col, id, m.resolve(data))
	return id, nil
}

func (m *Memory) Set(ctx context.Context, col, id string, data map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.put(col, id, m.resolve(data))
	return nil
}

// Update merges fields into the document, creating it when absent, the
// same upsert behavior a merge-set gives on Firestore: map values merge
// recursively, everything else replaces the stored value.
func (m *Memory) Update(ctx context.Context, col, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.merge(col, id, fields)
	return nil
}

func (m *Memory) Delete(ctx context.Context, col, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.cols[col], id)
	return nil
}

func (m *Memory) BatchWrite(ctx context.Context, ops []WriteOp) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, op := range ops {
		if op.Delete {
			delete(m.cols[op.Collection], op.ID)
			continue
		}
		m.merge(op.Collection, op.ID, op.Fields)
	}
	return nil
}

func (m *Memory) Ping(ctx context.Context) error { return nil }

func (m *Memory) Close() error { return nil }

// put and merge expect m.mu to be held.

func (m *Memory) put(col, id string, data map[string]any) {
	if m.cols[col] == nil {
		m.cols[col] = make(map[string]map[string]any)
	}
	m.cols[col][id] = data
}

func (m *Memory) merge(col, id string, fields map[string]any) {
	existing, ok := m.cols[col][id]
	if !ok {
		m.put(col, id, m.resolve(fields))
		return
	}
	mergeMaps(existing, m.resolve(fields))
}

// mergeMaps writes src over dst with Firestore's MergeAll semantics:
// when both sides hold a map the maps merge recursively, any other
// value (arrays included) replaces the stored one. src is already a
// private copy, so its values can be adopted directly.
func mergeMaps(dst, src map[string]any) {
	for k, v := range src {
		if sv, ok := v.(map[string]any); ok {
			if dv, ok := dst[k].(map[string]any); ok {
				mergeMaps(dv, sv)
				continue
			}
		}
		dst[k] = v
	}
}

// resolve deep-copies data and swaps ServerTimestamp sentinels for the
// current time, which is what the real backend does at commit.
func (m *Memory) resolve(data map[string]any) map[string]any {
	now := m.now().UTC()
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = resolveValue(v, now)
	}
	return out
}

func resolveValue(v any, now time.Time) any {
	if v == ServerTimestamp {
		return now
	}
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = resolveValue(e, now)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = resolveValue(e, now)
		}
		return out
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	default:
		return v
	}
}

func cloneMap(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	default:
		return v
	}
}

func matchesAll(data map[string]any, filters []Filter) bool {
	for _, f := range filters {
		if !matches(data, f) {
			return false
		}
	}
	return true
}

func matches(data map[string]any, f Filter) bool {
	field, ok := data[f.Path]
	switch f.Op {
	case "==":
		return ok && equalValues(field, f.Value)
	case "array-contains":
		if !ok {
			return false
		}
		for _, e := range toSlice(field) {
			if equalValues(e, f.Value) {
				return true
			}
		}
		return false
	case "in":
		if !ok {
			return false
		}
		for _, e := range toSlice(f.Value) {
			if equalValues(field, e) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func toSlice(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	default:
		return nil
	}
}

// equalValues compares loosely enough to survive the JSON codec: all
// numbers collapse to float64 before comparison.
func equalValues(a, b any) bool {
	if af, aok := toFloat(a); aok {
		bf, bok := toFloat(b)
		return bok && af == bf
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
