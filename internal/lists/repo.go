package lists

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sarthakagrawal927/reader-backend/internal/sanitize"
	"github.com/sarthakagrawal927/reader-backend/internal/store"
)

var (
	ErrNotFound     = errors.New("list not found")
	ErrNameRequired = errors.New("list name required")
	// ErrDefaultList rejects any rename or delete of a provisioned list.
	ErrDefaultList = errors.New("default lists are immutable")
)

const MaxNameRunes = 100

type List struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color,omitempty"`
	Icon      string    `json:"icon,omitempty"`
	IsDefault bool      `json:"isDefault"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// defaults are provisioned lazily per user with deterministic ids so
// repeated ensures never duplicate them.
var defaults = []struct {
	Slug  string
	Name  string
	Color string
	Icon  string
}{
	{"favourites", "Favourites", "#f59e0b", "star"},
	{"read-later", "Read Later", "#3b82f6", "bookmark"},
}

// DefaultID builds the deterministic id of a user's default list.
func DefaultID(uid, slug string) string {
	return uid + "_" + slug
}

type Repo struct {
	db store.Store
}

func NewRepo(db store.Store) *Repo {
	return &Repo{db: db}
}

// EnsureDefaults creates the user's default lists when missing. Safe to
// call on every read.
func (r *Repo) EnsureDefaults(ctx context.Context, uid string) error {
	for _, d := range defaults {
		id := DefaultID(uid, d.Slug)
		_, err := r.db.Get(ctx, store.Lists, id)
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("check default list: %w", err)
		}

		data := map[string]any{
			"name":      d.Name,
			"color":     d.Color,
			"icon":      d.Icon,
			"isDefault": true,
			"ownerId":   uid,
			"createdAt": store.ServerTimestamp,
			"updatedAt": store.ServerTimestamp,
		}
		if err := r.db.Set(ctx, store.Lists, id, data); err != nil {
			return fmt.Errorf("create default list: %w", err)
		}
	}
	return nil
}

// List returns the user's lists, defaults first.
func (r *Repo) List(ctx context.Context, uid string) ([]List, error) {
	if err := r.EnsureDefaults(ctx, uid); err != nil {
		return nil, err
	}

	docs, err := r.db.Query(ctx, store.Lists, store.Filter{Path: "ownerId", Op: "==", Value: uid})
	if err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}

	out := make([]List, 0, len(docs))
	for _, doc := range docs {
		l, err := decode(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDefault != out[j].IsDefault {
			return out[i].IsDefault
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *Repo) Create(ctx context.Context, uid, name, color, icon string) (*List, error) {
	clean := sanitize.Field(name, MaxNameRunes)
	if clean == "" {
		return nil, ErrNameRequired
	}

	data := map[string]any{
		"name":      clean,
		"color":     sanitize.Field(color, 40),
		"icon":      sanitize.Field(icon, 40),
		"isDefault": false,
		"ownerId":   uid,
		"createdAt": store.ServerTimestamp,
		"updatedAt": store.ServerTimestamp,
	}
	id, err := r.db.Add(ctx, store.Lists, data)
	if err != nil {
		return nil, fmt.Errorf("create list: %w", err)
	}
	return r.read(ctx, id)
}

// Get resolves a list the caller owns. Asking for one of the caller's
// own default ids provisions the defaults first, so a fresh account can
// reference "favourites" before ever listing its lists.
func (r *Repo) Get(ctx context.Context, id, callerUID string) (*List, error) {
	l, err := r.getOwned(ctx, id, callerUID)
	if errors.Is(err, ErrNotFound) && isDefaultID(id, callerUID) {
		if err := r.EnsureDefaults(ctx, callerUID); err != nil {
			return nil, err
		}
		return r.getOwned(ctx, id, callerUID)
	}
	return l, err
}

func isDefaultID(id, uid string) bool {
	for _, d := range defaults {
		if id == DefaultID(uid, d.Slug) {
			return true
		}
	}
	return false
}

type UpdateInput struct {
	Name  *string
	Color *string
	Icon  *string
}

func (r *Repo) Update(ctx context.Context, id, callerUID string, in UpdateInput) (*List, error) {
	l, err := r.getOwned(ctx, id, callerUID)
	if err != nil {
		return nil, err
	}
	if l.IsDefault {
		return nil, ErrDefaultList
	}

	fields := map[string]any{"updatedAt": store.ServerTimestamp}
	if in.Name != nil {
		clean := sanitize.Field(*in.Name, MaxNameRunes)
		if clean == "" {
			return nil, ErrNameRequired
		}
		fields["name"] = clean
	}
	if in.Color != nil {
		fields["color"] = sanitize.Field(*in.Color, 40)
	}
	if in.Icon != nil {
		fields["icon"] = sanitize.Field(*in.Icon, 40)
	}

	if err := r.db.Update(ctx, store.Lists, id, fields); err != nil {
		return nil, fmt.Errorf("update list: %w", err)
	}
	return r.read(ctx, id)
}

// Delete scrubs the list id from every article that references it,
// then removes the list itself. The scrub is batched without a
// transaction; if it fails part-way the remaining references make a
// retry pick up where it stopped, so the operation is safe to re-run.
func (r *Repo) Delete(ctx context.Context, id, callerUID string) error {
	l, err := r.getOwned(ctx, id, callerUID)
	if err != nil {
		return err
	}
	if l.IsDefault {
		return ErrDefaultList
	}

	docs, err := r.db.Query(ctx, store.Articles, store.Filter{Path: "listIds", Op: "array-contains", Value: id})
	if err != nil {
		return fmt.Errorf("find list references: %w", err)
	}

	ops := make([]store.WriteOp, 0, len(docs))
	for _, doc := range docs {
		ops = append(ops, store.WriteOp{
			Collection: store.Articles,
			ID:         doc.ID,
			Fields: map[string]any{
				"listIds":   removeID(doc.Data["listIds"], id),
				"updatedAt": store.ServerTimestamp,
			},
		})
	}
	if err := r.db.BatchWrite(ctx, ops); err != nil {
		return fmt.Errorf("scrub list references: %w", err)
	}

	if err := r.db.Delete(ctx, store.Lists, id); err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	return nil
}

func (r *Repo) getOwned(ctx context.Context, id, callerUID string) (*List, error) {
	doc, err := r.db.Get(ctx, store.Lists, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get list: %w", err)
	}

	l, err := decode(doc)
	if err != nil {
		return nil, err
	}
	if l.OwnerID != "" && l.OwnerID != callerUID {
		return nil, ErrNotFound
	}
	return l, nil
}

func (r *Repo) read(ctx context.Context, id string) (*List, error) {
	doc, err := r.db.Get(ctx, store.Lists, id)
	if err != nil {
		return nil, fmt.Errorf("read list: %w", err)
	}
	return decode(doc)
}

func decode(doc store.Document) (*List, error) {
	var l List
	if err := store.DataTo(doc.Data, &l); err != nil {
		return nil, fmt.Errorf("decode list %s: %w", doc.ID, err)
	}
	l.ID = doc.ID
	return &l, nil
}

// removeID filters one id out of a stored listIds value, whatever
// slice shape the backend returned it in.
func removeID(v any, id string) []string {
	var out []string
	switch ids := v.(type) {
	case []any:
		for _, e := range ids {
			if s, ok := e.(string); ok && s != id {
				out = append(out, s)
			}
		}
	case []string:
		for _, s := range ids {
			if s != id {
				out = append(out, s)
			}
		}
	}
	if out == nil {
		out = []string{}
	}
	return out
}
