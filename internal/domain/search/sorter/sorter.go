// Package sorter orders match candidates by a field value.
package sorter

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/kailas-cloud/docsearch/internal/domain"
)

// Direction is the sort order.
type Direction string

// Sort directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection accepts asc, ascending, desc and descending (case-insensitive).
// Empty input means ascending.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return Asc, nil
	case "desc", "descending":
		return Desc, nil
	}
	return "", fmt.Errorf("invalid direction %q (want asc or desc)", s)
}

// Compare orders two raw field values. Nulls sort last in both directions.
func Compare(a, b any, dir Direction) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	c := compareValues(a, b)
	if dir == Desc {
		return -c
	}
	return c
}

func compareValues(a, b any) int {
	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok {
			return cmp.Compare(fold(sa), fold(sb))
		}
	}
	if na, ok := domain.AsNumber(a); ok {
		if nb, ok := domain.AsNumber(b); ok {
			return cmp.Compare(na, nb)
		}
	}
	if ta, ok := asTime(a); ok {
		if tb, ok := asTime(b); ok {
			return ta.Compare(tb)
		}
	}
	return cmp.Compare(fold(fmt.Sprint(a)), fold(fmt.Sprint(b)))
}

func asTime(v any) (time.Time, bool) {
	ts, ok := domain.AsTimestamp(v)
	if !ok {
		return time.Time{}, false
	}
	if t, isTime := v.(time.Time); isTime {
		return t, true
	}
	return ts.Time(), true
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Stable sorts items in place by the value key returns, keeping the input order for ties.
func Stable[T any](items []T, key func(T) any, dir Direction) {
	slices.SortStableFunc(items, func(x, y T) int {
		return Compare(key(x), key(y), dir)
	})
}
