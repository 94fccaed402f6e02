// Package normalize converts store-native values into plain JSON-friendly values.
package normalize

import (
	"github.com/kailas-cloud/docsearch/internal/domain"
)

// ISOLayout is the UTC millisecond layout used for timestamps.
const ISOLayout = "2006-01-02T15:04:05.000Z"

// Value normalizes v recursively. It is total and idempotent:
// timestamps become ISO-8601 strings, references become their slash-joined path,
// lists and maps are normalized element-wise, scalars pass through.
func Value(v any) any {
	if v == nil {
		return nil
	}
	if ts, ok := domain.AsTimestamp(v); ok {
		return ts.Time().Format(ISOLayout)
	}
	if ref, ok := domain.AsReference(v); ok {
		return ref.Path()
	}
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Value(e)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = e
		}
		return out
	case map[string]any:
		return Document(t)
	}
	return v
}

// Document normalizes every value of m into a fresh map.
func Document(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Value(v)
	}
	return out
}
