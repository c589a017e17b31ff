package store

import (
	"context"
	"errors"
)

// Collection names shared by every repo.
const (
	Articles = "articles"
	Projects = "projects"
	Lists    = "lists"
	Boards   = "boards"
)

// ErrNotFound is returned by Get when no document exists under the id.
var ErrNotFound = errors.New("document not found")

// MaxBatch is the largest number of writes a single commit may carry.
// BatchWrite splits bigger slices into sequential commits of this size;
// a failure mid-way leaves earlier commits applied.
const MaxBatch = 500

type serverTimestamp struct{}

// ServerTimestamp is a sentinel field value replaced by the backend's
// write time when the document is stored.
var ServerTimestamp any = serverTimestamp{}

// Document is one stored record with its collection-unique id.
type Document struct {
	ID   string
	Data map[string]any
}

// Filter is one field predicate for Query. Op is "==", "array-contains"
// or "in", mirroring the operators the document database supports.
type Filter struct {
	Path  string
	Op    string
	Value any
}

// WriteOp is a single element of a batched write. When Delete is false
// the Fields are merged into the document, creating it if absent.
type WriteOp struct {
	Collection string
	ID         string
	Fields     map[string]any
	Delete     bool
}

// Store is the document persistence boundary. Handlers and repos only
// ever see this interface, so tests run against the in-memory
// implementation and production runs against Firestore.
//
// Set replaces a document wholesale. Update and non-delete batch ops are
// merge-sets: map values merge recursively, any other value (arrays
// included) replaces the stored one, and the document is created when
// absent.
type Store interface {
	Get(ctx context.Context, col, id string) (Document, error)
	Query(ctx context.Context, col string, filters ...Filter) ([]Document, error)
	Add(ctx context.Context, col string, data map[string]any) (string, error)
	Set(ctx context.Context, col, id string, data map[string]any) error
	Update(ctx context.Context, col, id string, fields map[string]any) error
	Delete(ctx context.Context, col, id string) error
	BatchWrite(ctx context.Context, ops []WriteOp) error
	Ping(ctx context.Context) error
	Close() error
}
