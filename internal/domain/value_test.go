package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestAsTimestamp(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Timestamp
		ok   bool
	}{
		{"typed", Timestamp{Seconds: 10, Nanoseconds: 5}, Timestamp{Seconds: 10, Nanoseconds: 5}, true},
		{"pointer", &Timestamp{Seconds: 3}, Timestamp{Seconds: 3}, true},
		{"nil pointer", (*Timestamp)(nil), Timestamp{}, false},
		{"plain keys", map[string]any{"seconds": float64(1739112493), "nanoseconds": float64(753000000)},
			Timestamp{Seconds: 1739112493, Nanoseconds: 753000000}, true},
		{"underscore keys", map[string]any{"_seconds": int64(7), "_nanoseconds": 0},
			Timestamp{Seconds: 7}, true},
		{"json numbers", map[string]any{"seconds": json.Number("12"), "nanoseconds": json.Number("1000000")},
			Timestamp{Seconds: 12, Nanoseconds: 1000000}, true},
		{"seconds only", map[string]any{"seconds": 1}, Timestamp{}, false},
		{"non-numeric", map[string]any{"seconds": "1", "nanoseconds": 0}, Timestamp{}, false},
		{"string", "2025-01-01", Timestamp{}, false},
		{"nil", nil, Timestamp{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AsTimestamp(tt.in)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestAsTimestamp_TimeValue(t *testing.T) {
	in := time.Date(2025, 2, 9, 14, 48, 13, 753000000, time.UTC)
	ts, ok := AsTimestamp(in)
	if !ok {
		t.Fatal("time.Time not recognised")
	}
	if !ts.Time().Equal(in) {
		t.Errorf("Time() = %v, want %v", ts.Time(), in)
	}
}

func TestTimestamp_TimeTruncatesToMillis(t *testing.T) {
	ts := Timestamp{Seconds: 1, Nanoseconds: 1999999}
	if got := ts.Time().UnixMilli(); got != 1001 {
		t.Errorf("UnixMilli() = %d, want 1001", got)
	}
}

func TestAsReference(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
		ok   bool
	}{
		{"typed", Reference{Segments: []string{"users", "u1"}}, "users/u1", true},
		{"map any segments", map[string]any{"_path": map[string]any{"segments": []any{"a", "b", "c"}}}, "a/b/c", true},
		{"map string segments", map[string]any{"_path": map[string]any{"segments": []string{"x"}}}, "x", true},
		{"missing segments", map[string]any{"_path": map[string]any{}}, "", false},
		{"non-string segment", map[string]any{"_path": map[string]any{"segments": []any{"a", 1}}}, "", false},
		{"plain map", map[string]any{"path": "a/b"}, "", false},
		{"nil pointer", (*Reference)(nil), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AsReference(tt.in)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if got.Path() != tt.want {
				t.Errorf("Path() = %q, want %q", got.Path(), tt.want)
			}
		})
	}
}

func TestAsNumber(t *testing.T) {
	for _, in := range []any{1, int8(1), int32(1), int64(1), uint(1), uint64(1), float32(1), 1.0, json.Number("1")} {
		f, ok := AsNumber(in)
		if !ok || f != 1 {
			t.Errorf("AsNumber(%T) = %v, %v", in, f, ok)
		}
	}
	if _, ok := AsNumber("1"); ok {
		t.Error("string must not be numeric")
	}
	if _, ok := AsNumber(json.Number("abc")); ok {
		t.Error("malformed json.Number must not be numeric")
	}
}

func TestErrors_Unwrap(t *testing.T) {
	reset := time.Unix(100, 0)
	err := NewRateLimited(5, reset)
	if !errors.Is(err, ErrRateLimited) {
		t.Error("rate limit error must match ErrRateLimited")
	}
	var rl *RateLimitError
	if !errors.As(err, &rl) || !rl.ResetAt.Equal(reset) || rl.Limit != 5 {
		t.Errorf("errors.As = %+v", rl)
	}

	cause := errors.New("connection refused")
	serr := NewStoreError("scan", cause)
	if !errors.Is(serr, ErrStore) {
		t.Error("store error must match ErrStore")
	}
	if !errors.Is(serr, cause) {
		t.Error("store error must match its cause")
	}
}

func TestNewDocument_NilFields(t *testing.T) {
	d := NewDocument("a", nil)
	if d.Fields == nil {
		t.Fatal("Fields must not be nil")
	}
	if d.ID != "a" {
		t.Errorf("ID = %q", d.ID)
	}
}
