package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisWindow implements the same sliding window on a Redis sorted set so
// several instances can share one counter. Callers swap it in via config
// without any handler changes.
type RedisWindow struct {
	client      *redis.Client
	maxAttempts int
	window      time.Duration
}

func NewRedisWindow(client *redis.Client, maxAttempts int, window time.Duration) *RedisWindow {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RedisWindow{client: client, maxAttempts: maxAttempts, window: window}
}

func (l *RedisWindow) Check(ctx context.Context, key string) (bool, error) {
	cutoff := time.Now().Add(-l.window).UnixNano()
	if err := l.client.ZRemRangeByScore(ctx, l.redisKey(key), "-inf", strconv.FormatInt(cutoff, 10)).Err(); err != nil {
		return false, err
	}
	count, err := l.client.ZCard(ctx, l.redisKey(key)).Result()
	if err != nil {
		return false, err
	}
	return int(count) < l.maxAttempts, nil
}

func (l *RedisWindow) Record(ctx context.Context, key string) error {
	now := time.Now().UnixNano()
	pipe := l.client.TxPipeline()
	pipe.ZAdd(ctx, l.redisKey(key), redis.Z{Score: float64(now), Member: now})
	pipe.Expire(ctx, l.redisKey(key), l.window)
	_, err := pipe.Exec(ctx)
	return err
}

func (l *RedisWindow) redisKey(key string) string {
	return "login_attempts:" + key
}
