package document

import (
	"context"
	"slices"
	"strings"

	"github.com/kailas-cloud/docsearch/internal/db"
)

// fakeStore is an in-memory implementation of the consumer interface.
type fakeStore struct {
	kv    map[string][]byte
	zsets map[string]map[string]struct{}

	getErr   error
	rangeErr error
	ranges   []db.LexRange
}

func newFakeStore() *fakeStore {
	return &fakeStore{kv: map[string][]byte{}, zsets: map[string]map[string]struct{}{}}
}

func (f *fakeStore) Get(_ context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	v, ok := f.kv[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (f *fakeStore) GetMulti(_ context.Context, keys []string) ([][]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	out := make([][]byte, len(keys))
	for i, k := range keys {
		out[i] = f.kv[k]
	}
	return out, nil
}

func (f *fakeStore) Set(_ context.Context, key string, value []byte) error {
	f.kv[key] = value
	return nil
}

func (f *fakeStore) ZAdd(_ context.Context, key string, members ...db.ZMember) error {
	set, ok := f.zsets[key]
	if !ok {
		set = map[string]struct{}{}
		f.zsets[key] = set
	}
	for _, m := range members {
		set[m.Member] = struct{}{}
	}
	return nil
}

func (f *fakeStore) ZRem(_ context.Context, key string, members ...string) error {
	for _, m := range members {
		delete(f.zsets[key], m)
	}
	return nil
}

func (f *fakeStore) ZRangeByLex(_ context.Context, key string, r db.LexRange) ([]string, error) {
	f.ranges = append(f.ranges, r)
	if f.rangeErr != nil {
		return nil, f.rangeErr
	}
	var out []string
	for m := range f.zsets[key] {
		if aboveMin(m, r.Min) && belowMax(m, r.Max) {
			out = append(out, m)
		}
	}
	slices.Sort(out)
	if r.Rev {
		slices.Reverse(out)
	}
	if r.Offset > 0 {
		out = out[min(int(r.Offset), len(out)):]
	}
	if r.Count > 0 && int(r.Count) < len(out) {
		out = out[:r.Count]
	}
	return out, nil
}

func aboveMin(m, bound string) bool {
	switch {
	case bound == "-":
		return true
	case strings.HasPrefix(bound, "["):
		return m >= bound[1:]
	default:
		return m > bound[1:]
	}
}

func belowMax(m, bound string) bool {
	switch {
	case bound == "+":
		return true
	case strings.HasPrefix(bound, "["):
		return m <= bound[1:]
	default:
		return m < bound[1:]
	}
}
