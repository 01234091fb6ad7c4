package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ratelimit:"

// slidingWindowScript trims the sorted set to the window, then records the
// call only if there is room, so rejected calls consume nothing.
// Returns {allowed, remaining, retry_after_ms}.
var slidingWindowScript = redis.NewScript(`
local key    = KEYS[1]
local now    = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit  = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
if count >= limit then
  local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
  local retry = window
  if oldest[2] then
    retry = tonumber(oldest[2]) + window - now
  end
  return {0, 0, retry}
end
redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return {1, limit - count - 1, 0}
`)

// RedisLimiter is a sliding-window limiter shared by every API instance
// pointing at the same Redis.
type RedisLimiter struct {
	client redis.Scripter
	limits Limits
	now    Clock
}

// NewRedisLimiter creates a RedisLimiter. A nil clock uses time.Now.
func NewRedisLimiter(client redis.Scripter, limits Limits, now Clock) *RedisLimiter {
	if now == nil {
		now = time.Now
	}
	if limits == nil {
		limits = DefaultLimits()
	}
	return &RedisLimiter{client: client, limits: limits, now: now}
}

// Allow records a call for (class, key) if the window has room. Redis
// failures are returned to the caller, which decides whether to fail open.
func (l *RedisLimiter) Allow(ctx context.Context, class Class, key string) (Decision, error) {
	limit, ok := l.limits[class]
	if !ok || limit <= 0 {
		return Decision{Allowed: true, Remaining: -1}, nil
	}

	nowMs := l.now().UnixMilli()
	res, err := slidingWindowScript.Run(ctx, l.client,
		[]string{redisKey(class, key)},
		nowMs, Window.Milliseconds(), limit, fmt.Sprintf("%d-%s", nowMs, uuid.NewString()),
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit: redis allow: %w", err)
	}
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("ratelimit: unexpected script reply of length %d", len(res))
	}

	if res[0] == 0 {
		retry := time.Duration(res[2]) * time.Millisecond
		if retry < time.Second {
			retry = time.Second
		}
		return Decision{Allowed: false, RetryAfter: retry}, nil
	}
	return Decision{Allowed: true, Remaining: int(res[1])}, nil
}

func redisKey(class Class, key string) string {
	return redisKeyPrefix + string(class) + ":" + key
}
