// Package scan describes the bounded reads a document store serves.
package scan

import (
	"unicode/utf8"

	"github.com/kailas-cloud/docsearch/internal/domain/search/sorter"
)

// SortHint asks the store to order results by a field.
type SortHint struct {
	Field     string
	Direction sorter.Direction
}

// Query is a bounded scan in store order.
type Query struct {
	Limit int
	Sort  *SortHint
}

// Range is a bounded scan over Field values in [Lower, Upper).
// An empty Upper means no upper bound.
type Range struct {
	Field string
	Lower string
	Upper string
	Limit int
	Sort  *SortHint
}

// Prefix builds the range of values starting with prefix.
func Prefix(field, prefix string, limit int, sort *SortHint) Range {
	return Range{Field: field, Lower: prefix, Upper: PrefixUpper(prefix), Limit: limit, Sort: sort}
}

// Contains reports whether v falls in the range under byte-wise ordering.
func (r Range) Contains(v string) bool {
	if v < r.Lower {
		return false
	}
	return r.Upper == "" || v < r.Upper
}

// PrefixUpper returns the exclusive upper bound of the strings prefixed by value:
// value with its last rune incremented. Returns "" when no finite bound exists.
func PrefixUpper(value string) string {
	for value != "" {
		r, size := utf8.DecodeLastRuneInString(value)
		head := value[:len(value)-size]
		if r == utf8.RuneError && size <= 1 {
			value = head
			continue
		}
		next := r + 1
		if next >= 0xD800 && next <= 0xDFFF {
			next = 0xE000
		}
		if next > utf8.MaxRune {
			value = head
			continue
		}
		return head + string(next)
	}
	return ""
}
