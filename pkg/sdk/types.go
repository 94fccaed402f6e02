package docsearch

import "time"

// Document is a stored record: an id plus JSON-like fields.
type Document struct {
	ID     string
	Fields map[string]any
}

// SearchRequest describes one search. Zero values take the client defaults.
type SearchRequest struct {
	SearchValue   string
	Limit         int
	CaseSensitive bool
	// SortBy is a dot-path; empty keeps store order.
	SortBy string
	// Direction is "asc" (default) or "desc".
	Direction string
}

// SearchResult holds normalized matches in output order.
type SearchResult struct {
	Matches      []map[string]any
	TotalResults int
	// Strategy is "optimized" or "bounded".
	Strategy     string
	UsedFallback bool
}

// Decision is the outcome of one rate limit check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	// ResetAt is when the oldest counted call leaves the window. Zero when limiting is off.
	ResetAt time.Time
}

// ImportResult is the outcome of importing one document.
type ImportResult struct {
	ID  string
	Err error
}
