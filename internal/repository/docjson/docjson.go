// Package docjson encodes documents for stores that keep them as JSON text.
package docjson

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/kailas-cloud/docsearch/internal/domain"
)

// Encode serializes document fields. Typed timestamps and references keep their
// map shape ({"seconds","nanoseconds"} / {"_path":{"segments"}}) so they survive a round trip.
func Encode(fields map[string]any) ([]byte, error) {
	data, err := json.Marshal(toWire(fields))
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

// Decode parses stored JSON into a document snapshot.
func Decode(id string, data []byte) (domain.Document, error) {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return domain.Document{}, fmt.Errorf("decode document %s: %w", id, err)
	}
	return domain.NewDocument(id, fields), nil
}

// wireDocument is the import file format: {"id": "...", "fields": {...}}.
// Objects without a "fields" key are read as flat documents whose "id" key is the id.
type wireDocument struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// ReadAll parses a JSON array of documents.
func ReadAll(r io.Reader) ([]domain.Document, error) {
	var raw []map[string]any
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}

	docs := make([]domain.Document, 0, len(raw))
	for i, obj := range raw {
		id, _ := obj["id"].(string)
		if id == "" {
			return nil, fmt.Errorf("document %d: id is required", i)
		}
		if fields, ok := obj["fields"].(map[string]any); ok && len(obj) == 2 {
			docs = append(docs, domain.NewDocument(id, fields))
			continue
		}
		fields := make(map[string]any, len(obj)-1)
		for k, v := range obj {
			if k != "id" {
				fields[k] = v
			}
		}
		docs = append(docs, domain.NewDocument(id, fields))
	}
	return docs, nil
}

// WriteAll encodes documents in the wrapped import format.
func WriteAll(w io.Writer, docs []domain.Document) error {
	out := make([]wireDocument, len(docs))
	for i, d := range docs {
		out[i] = wireDocument{ID: d.ID, Fields: toWire(d.Fields).(map[string]any)}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode documents: %w", err)
	}
	return nil
}

func toWire(v any) any {
	switch t := v.(type) {
	case domain.Timestamp:
		return map[string]any{"seconds": t.Seconds, "nanoseconds": t.Nanoseconds}
	case *domain.Timestamp:
		if t == nil {
			return nil
		}
		return toWire(*t)
	case domain.Reference:
		return map[string]any{"_path": map[string]any{"segments": t.Segments}}
	case *domain.Reference:
		if t == nil {
			return nil
		}
		return toWire(*t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = toWire(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = toWire(e)
		}
		return out
	}
	return v
}
