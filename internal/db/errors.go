package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound = errors.New("db: key not found")
)

// Op constants map to Valkey/Redis command names for error context.
const (
	OpGet    = "GET"
	OpSet    = "SET"
	OpDel    = "DEL"
	OpZAdd   = "ZADD"
	OpZRem   = "ZREM"
	OpZRange = "ZRANGE"
	OpEval   = "EVALSHA"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// Lex range bounds.
const (
	LexMin = "-"
	LexMax = "+"
)

// LexInclusive returns an inclusive lex bound for v.
func LexInclusive(v string) string { return "[" + v }

// LexExclusive returns an exclusive lex bound for v.
func LexExclusive(v string) string { return "(" + v }
