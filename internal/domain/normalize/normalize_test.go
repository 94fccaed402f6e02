package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kailas-cloud/docsearch/internal/domain"
)

func TestValue_Timestamps(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"plain keys", map[string]any{"seconds": float64(1739112493), "nanoseconds": float64(753000000)},
			"2025-02-09T14:48:13.753Z"},
		{"underscore keys", map[string]any{"_seconds": float64(1736431293), "_nanoseconds": float64(753000000)},
			"2025-01-09T14:01:33.753Z"},
		{"typed", domain.Timestamp{Seconds: 0, Nanoseconds: 1500000}, "1970-01-01T00:00:00.001Z"},
		{"time value", time.Date(2024, 5, 1, 10, 0, 0, 0, time.FixedZone("x", 3600)), "2024-05-01T09:00:00.000Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Value(tt.in))
		})
	}
}

func TestValue_Reference(t *testing.T) {
	in := map[string]any{"_path": map[string]any{"segments": []any{"users", "u1"}}}
	assert.Equal(t, "users/u1", Value(in))
	assert.Equal(t, "a/b", Value(domain.Reference{Segments: []string{"a", "b"}}))
}

func TestValue_Nested(t *testing.T) {
	in := map[string]any{
		"name":    "John",
		"age":     float64(30),
		"active":  true,
		"nothing": nil,
		"created": map[string]any{"seconds": float64(0), "nanoseconds": float64(0)},
		"friends": []any{
			map[string]any{"_path": map[string]any{"segments": []any{"users", "u2"}}},
			"plain",
		},
		"meta": map[string]any{"tags": []string{"x", "y"}},
	}
	want := map[string]any{
		"name":    "John",
		"age":     float64(30),
		"active":  true,
		"nothing": nil,
		"created": "1970-01-01T00:00:00.000Z",
		"friends": []any{"users/u2", "plain"},
		"meta":    map[string]any{"tags": []any{"x", "y"}},
	}
	got := Value(in)
	assert.Equal(t, want, got)
	assert.Equal(t, want, Value(got), "normalization must be idempotent")
}

func TestValue_Scalars(t *testing.T) {
	for _, v := range []any{nil, "s", 1, 2.5, true} {
		assert.Equal(t, v, Value(v))
	}
}

func TestValue_TimestampWinsOverMapping(t *testing.T) {
	in := map[string]any{"seconds": float64(1), "nanoseconds": float64(0), "extra": "ignored"}
	assert.Equal(t, "1970-01-01T00:00:01.000Z", Value(in))
}

func TestDocument_DoesNotMutateInput(t *testing.T) {
	in := map[string]any{"ts": domain.Timestamp{Seconds: 1}}
	_ = Document(in)
	_, still := in["ts"].(domain.Timestamp)
	assert.True(t, still)
	assert.Nil(t, Document(nil))
}
