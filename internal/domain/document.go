package domain

// Document is a read-only snapshot of a stored document.
// Fields maps top-level names to JSON-like values; nested maps are addressed by dot-paths.
type Document struct {
	ID     string
	Fields map[string]any
}

// NewDocument creates a document snapshot. A nil fields map is replaced with an empty one.
func NewDocument(id string, fields map[string]any) Document {
	if fields == nil {
		fields = map[string]any{}
	}
	return Document{ID: id, Fields: fields}
}

// KeyPrefix is the default key namespace for store keys.
const KeyPrefix = "docsearch:"
