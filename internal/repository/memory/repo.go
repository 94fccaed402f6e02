// Package memory is an in-process document store for local runs, tests and the SDK.
package memory

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/fieldpath"
	"github.com/kailas-cloud/docsearch/internal/domain/search/scan"
	"github.com/kailas-cloud/docsearch/internal/domain/search/sorter"
	"github.com/kailas-cloud/docsearch/internal/repository/docjson"
)

// Repo holds collections of documents ordered by id.
type Repo struct {
	mu          sync.RWMutex
	collections map[string]map[string]domain.Document
}

// New creates an empty store.
func New() *Repo {
	return &Repo{collections: make(map[string]map[string]domain.Document)}
}

// LoadFile seeds a collection from a JSON array of documents.
func (r *Repo) LoadFile(collection, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	docs, err := docjson.ReadAll(f)
	if err != nil {
		return 0, fmt.Errorf("read seed file %s: %w", path, err)
	}
	if err := r.Put(context.Background(), collection, docs...); err != nil {
		return 0, err
	}
	return len(docs), nil
}

// Ping always succeeds.
func (r *Repo) Ping(_ context.Context) error { return nil }

// Put stores documents, replacing existing ones with the same id.
func (r *Repo) Put(_ context.Context, collection string, docs ...domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	col, ok := r.collections[collection]
	if !ok {
		col = make(map[string]domain.Document)
		r.collections[collection] = col
	}
	for _, d := range docs {
		if d.ID == "" {
			return fmt.Errorf("document id is required")
		}
		col[d.ID] = d
	}
	return nil
}

// Scan returns up to q.Limit documents in id order, or ordered by the sort hint field.
// Documents without a value at the sort field come last.
func (r *Repo) Scan(ctx context.Context, collection string, q scan.Query) ([]domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", collection, err)
	}
	docs := r.snapshot(collection)
	if q.Sort != nil {
		orderBy(docs, q.Sort)
	}
	return head(docs, q.Limit), nil
}

// RangeScan returns documents whose string value at q.Field lies in [Lower, Upper).
// Results are in field order, or sort hint order when given.
func (r *Repo) RangeScan(ctx context.Context, collection string, q scan.Range) ([]domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("range scan %s: %w", collection, err)
	}
	var out []domain.Document
	for _, d := range r.snapshot(collection) {
		v, ok := fieldpath.Get(d.Fields, q.Field).(string)
		if ok && q.Contains(v) {
			out = append(out, d)
		}
	}
	sort := q.Sort
	if sort == nil {
		sort = &scan.SortHint{Field: q.Field, Direction: sorter.Asc}
	}
	orderBy(out, sort)
	return head(out, q.Limit), nil
}

// Len returns the number of documents in a collection.
func (r *Repo) Len(collection string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.collections[collection])
}

// snapshot copies the collection in id order.
func (r *Repo) snapshot(collection string) []domain.Document {
	r.mu.RLock()
	defer r.mu.RUnlock()

	col := r.collections[collection]
	docs := make([]domain.Document, 0, len(col))
	for _, d := range col {
		docs = append(docs, d)
	}
	slices.SortFunc(docs, func(a, b domain.Document) int { return strings.Compare(a.ID, b.ID) })
	return docs
}

func orderBy(docs []domain.Document, hint *scan.SortHint) {
	sorter.Stable(docs, func(d domain.Document) any {
		return fieldpath.Get(d.Fields, hint.Field)
	}, hint.Direction)
}

func head(docs []domain.Document, n int) []domain.Document {
	if docs == nil {
		return []domain.Document{}
	}
	if n > 0 && n < len(docs) {
		return docs[:n]
	}
	return docs
}
