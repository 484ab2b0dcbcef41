package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"
)

// RedisCounter shares windows between processes. Keys expire with their window.
type RedisCounter struct {
	client rueidis.Client
	prefix string
	now    func() time.Time
}

func NewRedisCounter(client rueidis.Client, prefix string) *RedisCounter {
	return &RedisCounter{
		client: client,
		prefix: prefix,
		now:    time.Now,
	}
}

func (r *RedisCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	start := windowStart(r.now(), window)
	redisKey := fmt.Sprintf("%s:%s:%d", r.prefix, key, start.Unix())

	count, err := r.client.Do(ctx, r.client.B().Incr().Key(redisKey).Build()).AsInt64()
	if err != nil {
		return 0, err
	}

	if count == 1 {
		cmd := r.client.B().Pexpire().Key(redisKey).Milliseconds(window.Milliseconds()).Build()
		if err := r.client.Do(ctx, cmd).Error(); err != nil {
			return 0, err
		}
	}
	return count, nil
}
