package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ratelimit:"

// RedisStore keeps timestamp sequences in a Redis sorted set, scored by unix
// nanoseconds, so several processes can share one window.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) PruneAndCount(ctx context.Context, key string, cutoff time.Time) (int, error) {
	rkey := redisKeyPrefix + key
	max := strconv.FormatInt(cutoff.UnixNano(), 10)
	if err := s.client.ZRemRangeByScore(ctx, rkey, "0", max).Err(); err != nil {
		return 0, err
	}
	n, err := s.client.ZCard(ctx, rkey).Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *RedisStore) Append(ctx context.Context, key string, at time.Time) error {
	rkey := redisKeyPrefix + key
	pipe := s.client.Pipeline()
	pipe.ZAdd(ctx, rkey, redis.Z{
		Score:  float64(at.UnixNano()),
		Member: strconv.FormatInt(at.UnixNano(), 10),
	})
	pipe.Expire(ctx, rkey, s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}
