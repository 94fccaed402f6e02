// Package fieldpath reads and writes values addressed by dot-separated paths.
package fieldpath

import (
	"strconv"
	"strings"
)

// Get resolves a dot-path such as "profile.name" against fields.
// Lists are indexed by numeric segments. Returns nil when any segment is absent
// or the current node cannot be descended into.
func Get(fields map[string]any, path string) any {
	if fields == nil || path == "" {
		return nil
	}
	var cur any = fields
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[seg]
			if !ok {
				return nil
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil
			}
			cur = node[i]
		default:
			return nil
		}
	}
	return cur
}

// Set assigns value at path, creating intermediate maps as needed.
// Non-map intermediate nodes are replaced.
func Set(fields map[string]any, path string, value any) {
	if fields == nil || path == "" {
		return
	}
	segs := strings.Split(path, ".")
	cur := fields
	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur[seg].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[seg] = next
		}
		cur = next
	}
	cur[segs[len(segs)-1]] = value
}
