package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/sarthakagrawal927/reader-backend/internal/api/http/middleware"
)

// Firestore adapts a firestore.Client to the Store interface.
type Firestore struct {
	client *firestore.Client
}

func NewFirestore(client *firestore.Client) *Firestore {
	return &Firestore{client: client}
}

func (s *Firestore) Get(ctx context.Context, col, id string) (Document, error) {
	timer := middleware.TrackStoreOperation("get", col)
	defer timer.ObserveDuration()

	snap, err := s.client.Collection(col).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("get %s/%s: %w", col, id, err)
	}
	return Document{ID: snap.Ref.ID, Data: snap.Data()}, nil
}

func (s *Firestore) Query(ctx context.Context, col string, filters ...Filter) ([]Document, error) {
	timer := middleware.TrackStoreOperation("query", col)
	defer timer.ObserveDuration()

	q := s.client.Collection(col).Query
	for _, f := range filters {
		q = q.Where(f.Path, f.Op, f.Value)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []Document
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", col, err)
		}
		out = append(out, Document{ID: snap.Ref.ID, Data: snap.Data()})
	}
	return out, nil
}

func (s *Firestore) Add(ctx context.Context, col string, data map[string]any) (string, error) {
	timer := middleware.TrackStoreOperation("add", col)
	defer timer.ObserveDuration()

	ref, _, err := s.client.Collection(col).Add(ctx, translate(data))
	if err != nil {
		return "", fmt.Errorf("add to %s: %w", col, err)
	}
	return ref.ID, nil
}

func (s *Firestore) Set(ctx context.Context, col, id string, data map[string]any) error {
	timer := middleware.TrackStoreOperation("set", col)
	defer timer.ObserveDuration()

	if _, err := s.client.Collection(col).Doc(id).Set(ctx, translate(data)); err != nil {
		return fmt.Errorf("set %s/%s: %w", col, id, err)
	}
	return nil
}

func (s *Firestore) Update(ctx context.Context, col, id string, fields map[string]any) error {
	timer := middleware.TrackStoreOperation("update", col)
	defer timer.ObserveDuration()

	_, err := s.client.Collection(col).Doc(id).Set(ctx, translate(fields), firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", col, id, err)
	}
	return nil
}

func (s *Firestore) Delete(ctx context.Context, col, id string) error {
	timer := middleware.TrackStoreOperation("delete", col)
	defer timer.ObserveDuration()

	if _, err := s.client.Collection(col).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("delete %s/%s: %w", col, id, err)
	}
	return nil
}

// BatchWrite commits ops in chunks of MaxBatch. Commits are sequential
// and independent; callers are expected to make the whole operation
// re-runnable instead of relying on atomicity across chunks.
func (s *Firestore) BatchWrite(ctx context.Context, ops []WriteOp) error {
	timer := middleware.TrackStoreOperation("batch", "mixed")
	defer timer.ObserveDuration()

	for start := 0; start < len(ops); start += MaxBatch {
		end := start + MaxBatch
		if end > len(ops) {
			end = len(ops)
		}

		batch := s.client.Batch()
		for _, op := range ops[start:end] {
			ref := s.client.Collection(op.Collection).Doc(op.ID)
			if op.Delete {
				batch.Delete(ref)
				continue
			}
			batch.Set(ref, translate(op.Fields), firestore.MergeAll)
		}
		if _, err := batch.Commit(ctx); err != nil {
			return fmt.Errorf("batch commit [%d:%d]: %w", start, end, err)
		}
	}
	return nil
}

func (s *Firestore) Ping(ctx context.Context) error {
	iter := s.client.Collections(ctx)
	if _, err := iter.Next(); err != nil && err != iterator.Done {
		return fmt.Errorf("firestore ping: %w", err)
	}
	return nil
}

func (s *Firestore) Close() error {
	return s.client.Close()
}

// translate swaps our ServerTimestamp sentinel for Firestore's own.
func translate(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = translateValue(v)
	}
	return out
}

func translateValue(v any) any {
	if v == ServerTimestamp {
		return firestore.ServerTimestamp
	}
	switch t := v.(type) {
	case map[string]any:
		return translate(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = translateValue(e)
		}
		return out
	default:
		return v
	}
}
