package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// rateLimitScript is a sliding window counter over a sorted set.
var rateLimitScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

local windowStart = now - window

redis.call('ZREMRANGEBYSCORE', key, '-inf', windowStart)

local count = redis.call('ZCARD', key)

if count >= limit then
    return 0
end

redis.call('ZADD', key, now, now .. '-' .. math.random())
redis.call('EXPIRE', key, math.ceil(window / 1000) + 10)

return 1
`)

// RateLimiter caps how many events one key may produce per window.
type RateLimiter struct {
	client redis.UniversalClient
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewRateLimiter(client redis.UniversalClient, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, limit: limit, window: window, now: time.Now}
}

// Allow records one event for key. Store errors allow the event.
func (rl *RateLimiter) Allow(ctx context.Context, key string) bool {
	if rl.limit <= 0 {
		return true
	}

	result, err := rateLimitScript.Run(
		ctx,
		rl.client,
		[]string{RateLimitKey(key)},
		rl.now().UnixMilli(),
		rl.window.Milliseconds(),
		rl.limit,
	).Int64()
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("rate limit check failed, allowing event")
		return true
	}

	return result == 1
}

func RateLimitKey(key string) string {
	return fmt.Sprintf("ratelimit:%s", key)
}
