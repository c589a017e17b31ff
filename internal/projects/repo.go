package projects

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
	ErrNotFound       = errors.New("project not found")
	ErrNameRequired   = errors.New("project name required")
	ErrDefaultProject = errors.New("default project cannot be deleted")
)

const MaxNameRunes = 500

type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsDefault bool      `json:"isDefault"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DefaultID is the deterministic id of a user's default project,
// created lazily and never deletable.
func DefaultID(uid string) string {
	return uid + "_default"
}

type Repo struct {
	db store.Store
}

func NewRepo(db store.Store) *Repo {
	return &Repo{db: db}
}

// EnsureDefault creates the user's default project when missing and
// returns it.
func (r *Repo) EnsureDefault(ctx context.Context, uid string) (*Project, error) {
	id := DefaultID(uid)
	doc, err := r.db.Get(ctx, store.Projects, id)
	if err == nil {
		return decode(doc)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("check default project: %w", err)
	}

	data := map[string]any{
		"name":      "Default",
		"isDefault": true,
		"ownerId":   uid,
		"createdAt": store.ServerTimestamp,
		"updatedAt": store.ServerTimestamp,
	}
	if err := r.db.Set(ctx, store.Projects, id, data); err != nil {
		return nil, fmt.Errorf("create default project: %w", err)
	}
	return r.read(ctx, id)
}

func (r *Repo) List(ctx context.Context, uid string) ([]Project, error) {
	if _, err := r.EnsureDefault(ctx, uid); err != nil {
		return nil, err
	}

	docs, err := r.db.Query(ctx, store.Projects, store.Filter{Path: "ownerId", Op: "==", Value: uid})
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	out := make([]Project, 0, len(docs))
	for _, doc := range docs {
		p, err := decode(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDefault != out[j].IsDefault {
			return out[i].IsDefault
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *Repo) Create(ctx context.Context, uid, name string) (*Project, error) {
	clean := sanitize.Field(name, MaxNameRunes)
	if clean == "" {
		return nil, ErrNameRequired
	}

	data := map[string]any{
		"name":      clean,
		"isDefault": false,
		"ownerId":   uid,
		"createdAt": store.ServerTimestamp,
		"updatedAt": store.ServerTimestamp,
	}
	id, err := r.db.Add(ctx, store.Projects, data)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return r.read(ctx, id)
}

func (r *Repo) Get(ctx context.Context, id, callerUID string) (*Project, error) {
	return r.getOwned(ctx, id, callerUID)
}

// Delete reassigns the project's articles to the caller's default
// project and then removes the project. Steps run in a fixed order
// with no transaction: ensure default, reassign in batches, delete.
// Re-running after a partial failure finishes the remaining work.
func (r *Repo) Delete(ctx context.Context, id, callerUID string) error {
	p, err := r.getOwned(ctx, id, callerUID)
	if err != nil {
		return err
	}
	if p.IsDefault || id == DefaultID(callerUID) {
		return ErrDefaultProject
	}

	def, err := r.EnsureDefault(ctx, callerUID)
	if err != nil {
		return err
	}

	docs, err := r.db.Query(ctx, store.Articles, store.Filter{Path: "projectId", Op: "==", Value: id})
	if err != nil {
		return fmt.Errorf("find project articles: %w", err)
	}

	ops := make([]store.WriteOp, 0, len(docs))
	for _, doc := range docs {
		ops = append(ops, store.WriteOp{
			Collection: store.Articles,
			ID:         doc.ID,
			Fields: map[string]any{
				"projectId": def.ID,
				"updatedAt": store.ServerTimestamp,
			},
		})
	}
	if err := r.db.BatchWrite(ctx, ops); err != nil {
		return fmt.Errorf("reassign project articles: %w", err)
	}

	if err := r.db.Delete(ctx, store.Projects, id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

func (r *Repo) getOwned(ctx context.Context, id, callerUID string) (*Project, error) {
	doc, err := r.db.Get(ctx, store.Projects, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}

	p, err := decode(doc)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != "" && p.OwnerID != callerUID {
		return nil, ErrNotFound
	}
	return p, nil
}

func (r *Repo) read(ctx context.Context, id string) (*Project, error) {
	doc, err := r.db.Get(ctx, store.Projects, id)
	if err != nil {
		return nil, fmt.Errorf("read project: %w", err)
	}
	return decode(doc)
}

func decode(doc store.Document) (*Project, error) {
	var p Project
	if err := store.DataTo(doc.Data, &p); err != nil {
		return nil, fmt.Errorf("decode project %s: %w", doc.ID, err)
	}
	p.ID = doc.ID
	return &p, nil
}
