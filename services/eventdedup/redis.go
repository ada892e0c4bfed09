package eventdedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "inboundbot:event:"

type setNXClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// RedisDeduplicator remembers event ids in Redis with a TTL
type RedisDeduplicator struct {
	client setNXClient
	ttl    time.Duration
}

func NewRedisDeduplicator(client setNXClient, ttl time.Duration) *RedisDeduplicator {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisDeduplicator{client: client, ttl: ttl}
}

// FirstSeen sets the event key if absent and reports whether this call set it
func (d *RedisDeduplicator) FirstSeen(ctx context.Context, eventID string) (bool, error) {
	ok, err := d.client.SetNX(ctx, keyPrefix+eventID, "1", d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to record event %s: %w", eventID, err)
	}
	return ok, nil
}

// NewRedisClient connects to the Redis server at redisURL and verifies it with a ping
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}
