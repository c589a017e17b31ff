package boards

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/sarthakagrawal927/reader-backend/internal/sanitize"
	"github.com/sarthakagrawal927/reader-backend/internal/store"
)

var ErrNotFound = errors.New("board not found")

const maxNameRunes = 200

type Repo struct {
	db store.Store
}

func NewRepo(db store.Store) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, uid, name string, nodes, edges []any) (*Board, error) {
	b := Board{
		Name:    boardName(name),
		Nodes:   SanitizeNodes(nodes),
		Edges:   SanitizeEdges(edges),
		OwnerID: uid,
	}

	data, err := store.DataFrom(b)
	if err != nil {
		return nil, fmt.Errorf("encode board: %w", err)
	}
	delete(data, "id")
	data["createdAt"] = store.ServerTimestamp
	data["updatedAt"] = store.ServerTimestamp

	id, err := r.db.Add(ctx, store.Boards, data)
	if err != nil {
		return nil, fmt.Errorf("create board: %w", err)
	}
	return r.read(ctx, id)
}

func (r *Repo) List(ctx context.Context, uid string) ([]Summary, error) {
	docs, err := r.db.Query(ctx, store.Boards, store.Filter{Path: "ownerId", Op: "==", Value: uid})
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}

	out := make([]Summary, 0, len(docs))
	for _, doc := range docs {
		b, err := decode(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, b.Summary())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (r *Repo) Get(ctx context.Context, id, callerUID string) (*Board, error) {
	return r.getOwned(ctx, id, callerUID)
}

type UpdateInput struct {
	Name  *string
	Nodes *[]any
	Edges *[]any
}

func (r *Repo) Update(ctx context.Context, id, callerUID string, in UpdateInput) (*Board, error) {
	if _, err := r.getOwned(ctx, id, callerUID); err != nil {
		return nil, err
	}

	fields := map[string]any{"updatedAt": store.ServerTimestamp}
	if in.Name != nil {
		fields["name"] = boardName(*in.Name)
	}
	if in.Nodes != nil {
		fields["nodes"] = nodesData(SanitizeNodes(*in.Nodes))
	}
	if in.Edges != nil {
		fields["edges"] = edgesData(SanitizeEdges(*in.Edges))
	}

	if err := r.db.Update(ctx, store.Boards, id, fields); err != nil {
		return nil, fmt.Errorf("update board: %w", err)
	}
	return r.read(ctx, id)
}

func (r *Repo) Delete(ctx context.Context, id, callerUID string) error {
	if _, err := r.getOwned(ctx, id, callerUID); err != nil {
		return err
	}
	if err := r.db.Delete(ctx, store.Boards, id); err != nil {
		return fmt.Errorf("delete board: %w", err)
	}
	return nil
}

func (r *Repo) getOwned(ctx context.Context, id, callerUID string) (*Board, error) {
	doc, err := r.db.Get(ctx, store.Boards, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get board: %w", err)
	}

	b, err := decode(doc)
	if err != nil {
		return nil, err
	}
	if b.OwnerID != "" && b.OwnerID != callerUID {
		return nil, ErrNotFound
	}
	return b, nil
}

func (r *Repo) read(ctx context.Context, id string) (*Board, error) {
	doc, err := r.db.Get(ctx, store.Boards, id)
	if err != nil {
		return nil, fmt.Errorf("read board: %w", err)
	}
	return decode(doc)
}

func decode(doc store.Document) (*Board, error) {
	var b Board
	if err := store.DataTo(doc.Data, &b); err != nil {
		return nil, fmt.Errorf("decode board %s: %w", doc.ID, err)
	}
	b.ID = doc.ID
	b.ensureSlices()
	return &b, nil
}

func boardName(raw string) string {
	name := sanitize.Field(raw, maxNameRunes)
	if name == "" {
		return "Untitled board"
	}
	return name
}

// nodesData and edgesData lower sanitized slices back to plain field
// values for a partial update.

func nodesData(nodes []Node) []any {
	out := make([]any, 0, len(nodes))
	for _, n := range nodes {
		m := map[string]any{
			"id":       n.ID,
			"type":     n.Type,
			"position": map[string]any{"x": n.Position.X, "y": n.Position.Y},
			"data":     n.Data,
		}
		if n.Width > 0 {
			m["width"] = n.Width
		}
		if n.Height > 0 {
			m["height"] = n.Height
		}
		out = append(out, m)
	}
	return out
}

func edgesData(edges []Edge) []any {
	out := make([]any, 0, len(edges))
	for _, e := range edges {
		out = append(out, map[string]any{
			"id":     e.ID,
			"source": e.Source,
			"target": e.Target,
			"label":  e.Label,
			"style":  e.Style,
		})
	}
	return out
}
