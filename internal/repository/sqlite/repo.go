// Package sqlite stores documents as JSON text in SQLite (modernc.org/sqlite, no cgo).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/scan"
	"github.com/kailas-cloud/docsearch/internal/domain/search/sorter"
	"github.com/kailas-cloud/docsearch/internal/repository/docjson"
)

const ddl = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	data       TEXT NOT NULL,
	PRIMARY KEY (collection, id)
)`

// Repo implements the document source over a SQLite file.
type Repo struct {
	db *sql.DB
}

// Open opens (or creates) the database file and ensures the schema.
func Open(ctx context.Context, path string) (*Repo, error) {
	dsn := path
	if strings.Contains(dsn, "?") {
		dsn += "&_pragma=busy_timeout(5000)"
	} else {
		dsn += "?_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// single writer; SQLite serializes anyway
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create documents table: %w", err)
	}
	return &Repo{db: db}, nil
}

// Ping checks the database handle.
func (r *Repo) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping sqlite: %w", err)
	}
	return nil
}

// Close closes the database.
func (r *Repo) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("close sqlite: %w", err)
	}
	return nil
}

// Put upserts documents in one transaction.
func (r *Repo) Put(ctx context.Context, collection string, docs ...domain.Document) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO documents (collection, id, data) VALUES (?, ?, ?)
ON CONFLICT (collection, id) DO UPDATE SET data = excluded.data`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, d := range docs {
		if d.ID == "" {
			return fmt.Errorf("document id is required")
		}
		data, err := docjson.Encode(d.Fields)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, collection, d.ID, string(data)); err != nil {
			return fmt.Errorf("upsert %s/%s: %w", collection, d.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Scan returns up to q.Limit documents in id order, or in sort hint order.
func (r *Repo) Scan(ctx context.Context, collection string, q scan.Query) ([]domain.Document, error) {
	query, args := buildScan(collection, q)
	return r.query(ctx, "scan", query, args)
}

// RangeScan returns documents whose text value at q.Field lies in [Lower, Upper)
// under BINARY collation.
func (r *Repo) RangeScan(ctx context.Context, collection string, q scan.Range) ([]domain.Document, error) {
	query, args := buildRange(collection, q)
	return r.query(ctx, "range scan", query, args)
}

func (r *Repo) query(ctx context.Context, op, query string, args []any) ([]domain.Document, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
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

func buildScan(collection string, q scan.Query) (string, []any) {
	var b strings.Builder
	args := []any{collection}
	b.WriteString("SELECT id, data FROM documents WHERE collection = ?")

	if q.Sort != nil {
		p := jsonPath(q.Sort.Field)
		fmt.Fprintf(&b, " ORDER BY json_extract(data, ?) %s NULLS LAST, id", direction(q.Sort.Direction))
		args = append(args, p)
	} else {
		b.WriteString(" ORDER BY id")
	}
	if q.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}
	return b.String(), args
}

func buildRange(collection string, q scan.Range) (string, []any) {
	var b strings.Builder
	p := jsonPath(q.Field)
	args := []any{collection, p, p, q.Lower}
	b.WriteString("SELECT id, data FROM documents WHERE collection = ?")
	b.WriteString(" AND json_type(data, ?) = 'text'")
	b.WriteString(" AND json_extract(data, ?) >= ? COLLATE BINARY")
	if q.Upper != "" {
		b.WriteString(" AND json_extract(data, ?) < ? COLLATE BINARY")
		args = append(args, p, q.Upper)
	}

	if q.Sort != nil {
		fmt.Fprintf(&b, " ORDER BY json_extract(data, ?) %s NULLS LAST, id", direction(q.Sort.Direction))
		args = append(args, jsonPath(q.Sort.Field))
	} else {
		b.WriteString(" ORDER BY json_extract(data, ?) COLLATE BINARY, id")
		args = append(args, p)
	}
	if q.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}
	return b.String(), args
}

// jsonPath converts a dot-path to a SQLite JSON path with quoted labels: a.b -> $."a"."b".
func jsonPath(field string) string {
	var b strings.Builder
	b.WriteString("$")
	for _, seg := range strings.Split(field, ".") {
		b.WriteString(`."`)
		b.WriteString(strings.ReplaceAll(seg, `"`, `\"`))
		b.WriteString(`"`)
	}
	return b.String()
}

func direction(d sorter.Direction) string {
	if d == sorter.Desc {
		return "DESC"
	}
	return "ASC"
}
