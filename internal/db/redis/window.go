package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/docsearch/internal/db"
)

// slidingWindowScript evicts entries older than the window, admits when below the limit,
// and refreshes the key TTL. Returns {allowed, count, oldestScoreOrMinusOne}.
const slidingWindowScript = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', key, '-inf', '(' .. (now - window))
local count = redis.call('ZCARD', key)
local allowed = 0
if count < limit then
  redis.call('ZADD', key, now, ARGV[4])
  count = count + 1
  allowed = 1
end
if count > 0 then
  redis.call('PEXPIRE', key, window)
end
local oldest = -1
local first = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
if first[2] then
  oldest = tonumber(first[2])
end
return {allowed, count, oldest}
`

// SlidingWindow runs one admission attempt atomically on the server.
func (s *Store) SlidingWindow(ctx context.Context, key string, q db.WindowQuery) (db.WindowResult, error) {
	args := []string{
		strconv.FormatInt(q.Now.UnixMilli(), 10),
		strconv.FormatInt(q.Window.Milliseconds(), 10),
		strconv.Itoa(q.Limit),
		q.Member,
	}
	vals, err := s.window.Exec(ctx, s.client, []string{key}, args).AsIntSlice()
	if err != nil {
		return db.WindowResult{}, &db.Error{Op: db.OpEval, Err: err}
	}
	if len(vals) != 3 {
		return db.WindowResult{}, &db.Error{Op: db.OpEval, Err: fmt.Errorf("unexpected reply length %d", len(vals))}
	}

	res := db.WindowResult{Allowed: vals[0] == 1, Count: int(vals[1])}
	if vals[2] >= 0 {
		res.Oldest = time.UnixMilli(vals[2]).UTC()
	}
	return res, nil
}
