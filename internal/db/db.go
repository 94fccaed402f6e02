package db

import (
	"context"
	"time"
)

// Store is the main database facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade by design -- consumers use narrow sub-interfaces (ISP)
type Store interface {
	Pinger
	KVStore
	SortedSetStore
	WindowCounter
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// GetMulti returns one entry per key; missing keys yield nil.
	GetMulti(ctx context.Context, keys []string) ([][]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, keys ...string) error
}

// ZMember is a sorted set member with its score.
type ZMember struct {
	Score  float64
	Member string
}

// LexRange selects sorted set members lexicographically (ZRANGE ... BYLEX).
// Min and Max use Redis lex syntax: "[v" inclusive, "(v" exclusive, "-" and "+" unbounded.
// Count <= 0 means no LIMIT.
type LexRange struct {
	Min    string
	Max    string
	Offset int64
	Count  int64
	Rev    bool
}

// SortedSetStore provides sorted set operations.
type SortedSetStore interface {
	ZAdd(ctx context.Context, key string, members ...ZMember) error
	ZRem(ctx context.Context, key string, members ...string) error
	ZRangeByLex(ctx context.Context, key string, r LexRange) ([]string, error)
}

// WindowQuery is one sliding-window admission attempt.
type WindowQuery struct {
	Now    time.Time
	Window time.Duration
	Limit  int
	// Member uniquely identifies the attempt inside the window.
	Member string
}

// WindowResult is the state of a window after an admission attempt.
type WindowResult struct {
	Allowed bool
	Count   int
	// Oldest is the earliest instant still counted. Zero when the window is empty.
	Oldest time.Time
}

// WindowCounter atomically evicts, counts and records requests in a sliding window.
type WindowCounter interface {
	SlidingWindow(ctx context.Context, key string, q WindowQuery) (WindowResult, error)
}
