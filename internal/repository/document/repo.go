package document

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/kailas-cloud/docsearch/internal/db"
	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/fieldpath"
	"github.com/kailas-cloud/docsearch/internal/domain/search/scan"
	"github.com/kailas-cloud/docsearch/internal/domain/search/sorter"
	"github.com/kailas-cloud/docsearch/internal/repository/docjson"
)

// lexSep separates the field value from the document id inside lex index members.
const lexSep = "\x00"

// store is the consumer interface for documents (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	GetMulti(ctx context.Context, keys []string) ([][]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	ZAdd(ctx context.Context, key string, members ...db.ZMember) error
	ZRem(ctx context.Context, key string, members ...string) error
	ZRangeByLex(ctx context.Context, key string, r db.LexRange) ([]string, error)
}

// Repo keeps documents as JSON strings with sorted-set indexes:
//
//	{prefix}{collection}:doc:{id}      JSON fields
//	{prefix}{collection}:order         ids, score 0 (scan order = id order)
//	{prefix}{collection}:lex:{field}   "value\x00id", score 0 (prefix range scans)
//
// Only fields listed in indexed get a lex index, and only their string values are indexed.
type Repo struct {
	store   store
	prefix  string
	indexed []string
}

// New creates a document repository. An empty prefix falls back to domain.KeyPrefix.
func New(s store, prefix string, indexed []string) *Repo {
	if prefix == "" {
		prefix = domain.KeyPrefix
	}
	return &Repo{store: s, prefix: prefix, indexed: indexed}
}

// Put stores documents and maintains the order and lex indexes.
func (r *Repo) Put(ctx context.Context, collection string, docs ...domain.Document) error {
	for _, d := range docs {
		if err := r.put(ctx, collection, d); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repo) put(ctx context.Context, collection string, d domain.Document) error {
	if d.ID == "" {
		return fmt.Errorf("document id is required")
	}
	data, err := docjson.Encode(d.Fields)
	if err != nil {
		return err
	}

	key := r.docKey(collection, d.ID)
	if err := r.dropStaleLex(ctx, collection, key, d); err != nil {
		return err
	}
	if err := r.store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	if err := r.store.ZAdd(ctx, r.orderKey(collection), db.ZMember{Member: d.ID}); err != nil {
		return fmt.Errorf("index order %s: %w", d.ID, err)
	}
	for _, field := range r.indexed {
		member, ok := lexMember(d, field)
		if !ok {
			continue
		}
		if err := r.store.ZAdd(ctx, r.lexKey(collection, field), db.ZMember{Member: member}); err != nil {
			return fmt.Errorf("index %s for %s: %w", field, d.ID, err)
		}
	}
	return nil
}

// dropStaleLex removes lex entries of the previous version whose value changed.
func (r *Repo) dropStaleLex(ctx context.Context, collection, key string, next domain.Document) error {
	if len(r.indexed) == 0 {
		return nil
	}
	raw, err := r.store.Get(ctx, key)
	if errors.Is(err, db.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	prev, err := docjson.Decode(next.ID, raw)
	if err != nil {
		return err
	}
	for _, field := range r.indexed {
		old, ok := lexMember(prev, field)
		if !ok {
			continue
		}
		if cur, _ := lexMember(next, field); cur == old {
			continue
		}
		if err := r.store.ZRem(ctx, r.lexKey(collection, field), old); err != nil {
			return fmt.Errorf("unindex %s for %s: %w", field, next.ID, err)
		}
	}
	return nil
}

// Scan returns up to q.Limit documents in id order, or in field order when the
// sort hint names an indexed field. Documents without an indexed value at that
// field follow in id order.
func (r *Repo) Scan(ctx context.Context, collection string, q scan.Query) ([]domain.Document, error) {
	if q.Sort != nil && r.isIndexed(q.Sort.Field) {
		return r.sortedScan(ctx, collection, q)
	}
	ids, err := r.store.ZRangeByLex(ctx, r.orderKey(collection), db.LexRange{
		Min: db.LexMin, Max: db.LexMax, Count: int64(q.Limit),
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", collection, err)
	}
	return r.load(ctx, collection, ids)
}

func (r *Repo) sortedScan(ctx context.Context, collection string, q scan.Query) ([]domain.Document, error) {
	docs, err := r.RangeScan(ctx, collection, scan.Range{Field: q.Sort.Field, Limit: q.Limit, Sort: q.Sort})
	if err != nil {
		return nil, err
	}
	if q.Limit > 0 && len(docs) >= q.Limit {
		return docs, nil
	}

	all, err := r.store.ZRangeByLex(ctx, r.orderKey(collection), db.LexRange{Min: db.LexMin, Max: db.LexMax})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", collection, err)
	}
	seen := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		seen[d.ID] = struct{}{}
	}
	var rest []string
	for _, id := range all {
		if _, ok := seen[id]; ok {
			continue
		}
		rest = append(rest, id)
		if q.Limit > 0 && len(docs)+len(rest) == q.Limit {
			break
		}
	}
	tail, err := r.load(ctx, collection, rest)
	if err != nil {
		return nil, err
	}
	return append(docs, tail...), nil
}

// RangeScan returns documents whose q.Field value lies in [Lower, Upper), in field order.
// Fields without a lex index fail with domain.ErrFieldNotIndexed.
func (r *Repo) RangeScan(ctx context.Context, collection string, q scan.Range) ([]domain.Document, error) {
	if !r.isIndexed(q.Field) {
		return nil, fmt.Errorf("range scan %s.%s: %w", collection, q.Field, domain.ErrFieldNotIndexed)
	}

	lr := db.LexRange{Min: db.LexInclusive(q.Lower), Max: db.LexMax, Count: int64(q.Limit)}
	if q.Lower == "" {
		lr.Min = db.LexMin
	}
	if q.Upper != "" {
		lr.Max = db.LexExclusive(q.Upper)
	}
	if q.Sort != nil && q.Sort.Field == q.Field && q.Sort.Direction == sorter.Desc {
		lr.Rev = true
	}

	members, err := r.store.ZRangeByLex(ctx, r.lexKey(collection, q.Field), lr)
	if err != nil {
		return nil, fmt.Errorf("range scan %s.%s: %w", collection, q.Field, err)
	}
	ids := make([]string, 0, len(members))
	for _, m := range members {
		if i := strings.LastIndex(m, lexSep); i >= 0 {
			ids = append(ids, m[i+len(lexSep):])
		}
	}
	return r.load(ctx, collection, ids)
}

// load fetches documents by id, skipping ids whose document is gone.
func (r *Repo) load(ctx context.Context, collection string, ids []string) ([]domain.Document, error) {
	if len(ids) == 0 {
		return []domain.Document{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.docKey(collection, id)
	}
	raws, err := r.store.GetMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", collection, err)
	}

	docs := make([]domain.Document, 0, len(ids))
	for i, raw := range raws {
		if raw == nil {
			continue
		}
		d, err := docjson.Decode(ids[i], raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, nil
}

func (r *Repo) isIndexed(field string) bool {
	return slices.Contains(r.indexed, field)
}

func lexMember(d domain.Document, field string) (string, bool) {
	v, ok := fieldpath.Get(d.Fields, field).(string)
	if !ok || strings.Contains(v, lexSep) {
		return "", false
	}
	return v + lexSep + d.ID, true
}

func (r *Repo) docKey(collection, id string) string {
	return r.prefix + collection + ":doc:" + id
}

func (r *Repo) orderKey(collection string) string {
	return r.prefix + collection + ":order"
}

func (r *Repo) lexKey(collection, field string) string {
	return r.prefix + collection + ":lex:" + field
}
