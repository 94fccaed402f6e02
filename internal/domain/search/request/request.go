package request

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/sorter"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search value length in bytes.
	MaxQueryLength = 4096
	DefaultLimit   = 10
	MaxLimit       = 100
)

var sortByPattern = regexp.MustCompile(`^[a-zA-Z0-9_.]+$`)

// Limits bounds the result count of a request.
type Limits struct {
	Default int
	Max     int
}

// DefaultLimits returns the built-in limits.
func DefaultLimits() Limits {
	return Limits{Default: DefaultLimit, Max: MaxLimit}
}

// Request is a validated search query.
type Request struct {
	searchValue   string
	limit         int
	caseSensitive bool
	sortBy        string
	direction     sorter.Direction
}

// New validates and normalizes search parameters.
// The search value is trimmed. Limit <= 0 takes the default, limit above max is clamped.
func New(
	searchValue string,
	limit int,
	caseSensitive bool,
	sortBy, direction string,
	limits Limits,
) (Request, error) {
	searchValue = strings.TrimSpace(searchValue)
	if searchValue == "" {
		return Request{}, fmt.Errorf("%w: searchValue is required", domain.ErrValidation)
	}
	if len(searchValue) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: searchValue too long (max %d bytes)", domain.ErrValidation, MaxQueryLength)
	}
	if sortBy != "" && !sortByPattern.MatchString(sortBy) {
		return Request{}, fmt.Errorf("%w: sortBy %q must match [a-zA-Z0-9_.]+", domain.ErrValidation, sortBy)
	}
	dir, err := sorter.ParseDirection(direction)
	if err != nil {
		return Request{}, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	if limits.Default <= 0 {
		limits.Default = DefaultLimit
	}
	if limits.Max <= 0 {
		limits.Max = MaxLimit
	}
	if limit <= 0 {
		limit = limits.Default
	}
	if limit > limits.Max {
		limit = limits.Max
	}

	return Request{
		searchValue:   searchValue,
		limit:         limit,
		caseSensitive: caseSensitive,
		sortBy:        sortBy,
		direction:     dir,
	}, nil
}

// SearchValue returns the trimmed search term.
func (r *Request) SearchValue() string { return r.searchValue }

// Limit returns the maximum results to return.
func (r *Request) Limit() int { return r.limit }

// CaseSensitive reports whether matching preserves case.
func (r *Request) CaseSensitive() bool { return r.caseSensitive }

// SortBy returns the dot-path to sort by, empty when unsorted.
func (r *Request) SortBy() string { return r.sortBy }

// Direction returns the sort direction.
func (r *Request) Direction() sorter.Direction { return r.direction }
