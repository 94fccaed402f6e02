package redis

import (
	"context"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/docsearch/internal/db"
)

// ZAdd adds members to a sorted set, updating scores of existing members.
func (s *Store) ZAdd(ctx context.Context, key string, members ...db.ZMember) error {
	if len(members) == 0 {
		return nil
	}
	cmd := s.b().Zadd().Key(key).ScoreMember()
	for _, m := range members {
		cmd = cmd.ScoreMember(m.Score, m.Member)
	}
	if err := s.do(ctx, cmd.Build()).Error(); err != nil {
		return &db.Error{Op: db.OpZAdd, Err: err}
	}
	return nil
}

// ZRem removes members from a sorted set.
func (s *Store) ZRem(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	cmd := s.b().Zrem().Key(key).Member(members...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpZRem, Err: err}
	}
	return nil
}

// ZRangeByLex returns members between r.Min and r.Max in lexicographic order.
// Members must share one score for the ordering to be meaningful.
func (s *Store) ZRangeByLex(ctx context.Context, key string, r db.LexRange) ([]string, error) {
	lo, hi := r.Min, r.Max
	if r.Rev {
		// REV takes the bounds as max, min
		lo, hi = hi, lo
	}
	base := s.b().Zrange().Key(key).Min(lo).Max(hi).Bylex()

	var cmd rueidis.Completed
	switch {
	case r.Rev && r.Count > 0:
		cmd = base.Rev().Limit(r.Offset, r.Count).Build()
	case r.Rev:
		cmd = base.Rev().Build()
	case r.Count > 0:
		cmd = base.Limit(r.Offset, r.Count).Build()
	default:
		cmd = base.Build()
	}

	members, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, &db.Error{Op: db.OpZRange, Err: err}
	}
	return members, nil
}
