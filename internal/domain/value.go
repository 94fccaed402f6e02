package domain

import (
	"encoding/json"
	"math"
	"time"
)

// Timestamp is a store timestamp split into seconds and nanoseconds since the Unix epoch.
type Timestamp struct {
	Seconds     int64 `json:"seconds"`
	Nanoseconds int64 `json:"nanoseconds"`
}

// Time converts the timestamp to a UTC instant truncated to milliseconds.
func (t Timestamp) Time() time.Time {
	return time.UnixMilli(t.Seconds*1000 + t.Nanoseconds/int64(time.Millisecond)).UTC()
}

// TimestampOf converts an instant into a Timestamp.
func TimestampOf(t time.Time) Timestamp {
	return Timestamp{Seconds: t.Unix(), Nanoseconds: int64(t.Nanosecond())}
}

// Reference is a pointer to another document, addressed by path segments.
type Reference struct {
	Segments []string `json:"segments"`
}

// Path joins the segments with "/".
func (r Reference) Path() string {
	n := 0
	for _, s := range r.Segments {
		n += len(s) + 1
	}
	buf := make([]byte, 0, n)
	for i, s := range r.Segments {
		if i > 0 {
			buf = append(buf, '/')
		}
		buf = append(buf, s...)
	}
	return string(buf)
}

// AsTimestamp reports whether v is timestamp-like and returns it.
// Recognised shapes: Timestamp, *Timestamp, time.Time, and maps that carry both a seconds
// and a nanoseconds component ("seconds"/"nanoseconds" or "_seconds"/"_nanoseconds").
func AsTimestamp(v any) (Timestamp, bool) {
	switch t := v.(type) {
	case Timestamp:
		return t, true
	case *Timestamp:
		if t == nil {
			return Timestamp{}, false
		}
		return *t, true
	case time.Time:
		return TimestampOf(t), true
	case map[string]any:
		return timestampFromMap(t)
	}
	return Timestamp{}, false
}

func timestampFromMap(m map[string]any) (Timestamp, bool) {
	for _, keys := range [][2]string{{"seconds", "nanoseconds"}, {"_seconds", "_nanoseconds"}} {
		if !hasSecondsAndNanos(m, keys[0], keys[1]) {
			continue
		}
		sec, okS := asInt64(m[keys[0]])
		nano, okN := asInt64(m[keys[1]])
		if okS && okN {
			return Timestamp{Seconds: sec, Nanoseconds: nano}, true
		}
	}
	return Timestamp{}, false
}

func hasSecondsAndNanos(m map[string]any, secKey, nanoKey string) bool {
	_, hasSec := m[secKey]
	_, hasNano := m[nanoKey]
	return hasSec && hasNano
}

// AsReference reports whether v is reference-like and returns it.
// Recognised shapes: Reference, *Reference, and {"_path": {"segments": [...]}} maps.
func AsReference(v any) (Reference, bool) {
	switch r := v.(type) {
	case Reference:
		return r, true
	case *Reference:
		if r == nil {
			return Reference{}, false
		}
		return *r, true
	case map[string]any:
		return referenceFromMap(r)
	}
	return Reference{}, false
}

func referenceFromMap(m map[string]any) (Reference, bool) {
	path, ok := m["_path"].(map[string]any)
	if !ok || !hasPathSegments(path) {
		return Reference{}, false
	}
	switch segs := path["segments"].(type) {
	case []string:
		return Reference{Segments: segs}, true
	case []any:
		out := make([]string, 0, len(segs))
		for _, s := range segs {
			str, ok := s.(string)
			if !ok {
				return Reference{}, false
			}
			out = append(out, str)
		}
		return Reference{Segments: out}, true
	}
	return Reference{}, false
}

func hasPathSegments(m map[string]any) bool {
	_, ok := m["segments"]
	return ok
}

// AsNumber reports whether v is numeric and returns it as float64.
func AsNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
	}
	f, ok := AsNumber(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(f), true
}
