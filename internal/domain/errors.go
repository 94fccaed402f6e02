package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrConfiguration signals that search is not configured (no searchable fields).
	ErrConfiguration = errors.New("search not configured")
	// ErrValidation signals an invalid search request.
	ErrValidation = errors.New("validation failed")
	// ErrRateLimited signals a full sliding window for the calling key.
	ErrRateLimited = errors.New("rate limited")
	// ErrStore signals a failure of the backing document store.
	ErrStore = errors.New("store unavailable")
	// ErrFieldNotIndexed signals a range scan on a field the store has no range index for.
	ErrFieldNotIndexed = errors.New("field not indexed for range scans")
)

// RateLimitError wraps ErrRateLimited with the instant the oldest request leaves the window.
type RateLimitError struct {
	Limit   int
	ResetAt time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: limit %d, resets at %s", ErrRateLimited.Error(), e.Limit, e.ResetAt.UTC().Format(time.RFC3339))
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }

// NewRateLimited creates a rate limit error.
func NewRateLimited(limit int, resetAt time.Time) error {
	return &RateLimitError{Limit: limit, ResetAt: resetAt}
}

// StoreError wraps a store failure with the scan that produced it.
// errors.Is matches both ErrStore and the underlying cause.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStore.Error(), e.Op, e.Err)
}

func (e *StoreError) Unwrap() []error { return []error{ErrStore, e.Err} }

// NewStoreError creates a store error for the given operation.
func NewStoreError(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
