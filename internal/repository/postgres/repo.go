// Package postgres stores documents as jsonb rows in PostgreSQL via pgx.
package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/scan"
	"github.com/kailas-cloud/docsearch/internal/domain/search/sorter"
	"github.com/kailas-cloud/docsearch/internal/repository/docjson"
)

const ddl = `
CREATE TABLE IF NOT EXISTS documents (
	collection text  NOT NULL,
	id         text  NOT NULL,
	data       jsonb NOT NULL,
	PRIMARY KEY (collection, id)
)`

// querier is the subset of pgxpool.Pool the repository uses (ISP).
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Ping(ctx context.Context) error
}

// Repo implements the document source over a documents table.
type Repo struct {
	db   querier
	pool *pgxpool.Pool
}

// Open connects a pool and ensures the documents table exists.
func Open(ctx context.Context, dsn string) (*Repo, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	r := &Repo{db: pool, pool: pool}
	if err := r.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return r, nil
}

// New wraps an existing connection (pool, conn or test double).
func New(q querier) *Repo {
	return &Repo{db: q}
}

// EnsureSchema creates the documents table if it is missing.
func (r *Repo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("create documents table: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (r *Repo) Ping(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

// Close releases the pool when the repository owns one.
func (r *Repo) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

// Put upserts documents in one batch round-trip.
func (r *Repo) Put(ctx context.Context, collection string, docs ...domain.Document) error {
	if len(docs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, d := range docs {
		if d.ID == "" {
			return fmt.Errorf("document id is required")
		}
		data, err := docjson.Encode(d.Fields)
		if err != nil {
			return err
		}
		batch.Queue(`INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3::jsonb)
ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data`, collection, d.ID, string(data))
	}

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()
	for _, d := range docs {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert %s/%s: %w", collection, d.ID, err)
		}
	}
	return nil
}

// Scan returns up to q.Limit documents in id order, or in sort hint order.
func (r *Repo) Scan(ctx context.Context, collection string, q scan.Query) ([]domain.Document, error) {
	sql, args := buildScan(collection, q)
	return r.query(ctx, "scan", sql, args)
}

// RangeScan returns documents whose string value at q.Field lies in [Lower, Upper)
// under byte-wise collation.
func (r *Repo) RangeScan(ctx context.Context, collection string, q scan.Range) ([]domain.Document, error) {
	sql, args := buildRange(collection, q)
	return r.query(ctx, "range scan", sql, args)
}

func (r *Repo) query(ctx context.Context, op, sql string, args []any) ([]domain.Document, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	docs := []domain.Document{}
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, err)
		}
		d, err := docjson.Decode(id, []byte(data))
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return docs, nil
}

// sqlArgs accumulates positional arguments.
type sqlArgs []any

func (a *sqlArgs) add(v any) string {
	*a = append(*a, v)
	return "$" + strconv.Itoa(len(*a))
}

func buildScan(collection string, q scan.Query) (string, []any) {
	var args sqlArgs
	var b strings.Builder
	b.WriteString("SELECT id, data::text FROM documents WHERE collection = ")
	b.WriteString(args.add(collection))

	if q.Sort != nil {
		p := args.add(path(q.Sort.Field))
		fmt.Fprintf(&b, ` ORDER BY data #> %s %s NULLS LAST, id COLLATE "C"`, p, direction(q.Sort.Direction))
	} else {
		b.WriteString(` ORDER BY id COLLATE "C"`)
	}
	if q.Limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(args.add(q.Limit))
	}
	return b.String(), args
}

func buildRange(collection string, q scan.Range) (string, []any) {
	var args sqlArgs
	var b strings.Builder
	b.WriteString("SELECT id, data::text FROM documents WHERE collection = ")
	b.WriteString(args.add(collection))

	p := args.add(path(q.Field))
	fmt.Fprintf(&b, " AND jsonb_typeof(data #> %s) = 'string'", p)
	fmt.Fprintf(&b, ` AND (data #>> %s) COLLATE "C" >= %s`, p, args.add(q.Lower))
	if q.Upper != "" {
		fmt.Fprintf(&b, ` AND (data #>> %s) COLLATE "C" < %s`, p, args.add(q.Upper))
	}

	if q.Sort != nil {
		sp := args.add(path(q.Sort.Field))
		fmt.Fprintf(&b, ` ORDER BY data #> %s %s NULLS LAST, id COLLATE "C"`, sp, direction(q.Sort.Direction))
	} else {
		fmt.Fprintf(&b, ` ORDER BY (data #>> %s) COLLATE "C", id COLLATE "C"`, p)
	}
	if q.Limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(args.add(q.Limit))
	}
	return b.String(), args
}

// path splits a dot-path into the text[] operand of #> and #>>.
func path(field string) []string {
	return strings.Split(field, ".")
}

func direction(d sorter.Direction) string {
	if d == sorter.Desc {
		return "DESC"
	}
	return "ASC"
}
