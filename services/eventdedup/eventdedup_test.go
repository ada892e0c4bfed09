package eventdedup

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDeduplicator(t *testing.T) {
	t.Run("Success_SecondDeliveryIsDuplicate", func(t *testing.T) {
		dedup := NewMemoryDeduplicator(time.Hour)

		first, err := dedup.FirstSeen(context.Background(), "Ev01")
		require.NoError(t, err)
		second, err := dedup.FirstSeen(context.Background(), "Ev01")
		require.NoError(t, err)
		other, err := dedup.FirstSeen(context.Background(), "Ev02")
		require.NoError(t, err)

		assert.True(t, first)
		assert.False(t, second)
		assert.True(t, other)
	})

	t.Run("Success_ExpiresAfterTTL", func(t *testing.T) {
		current := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
		dedup := NewMemoryDeduplicator(time.Hour)
		dedup.now = func() time.Time { return current }

		first, _ := dedup.FirstSeen(context.Background(), "Ev01")
		current = current.Add(59 * time.Minute)
		withinTTL, _ := dedup.FirstSeen(context.Background(), "Ev01")
		current = current.Add(2 * time.Minute)
		afterTTL, _ := dedup.FirstSeen(context.Background(), "Ev01")

		assert.True(t, first)
		assert.False(t, withinTTL)
		assert.True(t, afterTTL)
		assert.Len(t, dedup.seen, 1)
	})

	t.Run("DefaultTTL", func(t *testing.T) {
		assert.Equal(t, DefaultTTL, NewMemoryDeduplicator(0).ttl)
	})
}

type fakeSetNXClient struct {
	keys       []string
	expiration time.Duration
	result     *redis.BoolCmd
}

func (f *fakeSetNXClient) SetNX(_ context.Context, key string, _ interface{}, expiration time.Duration) *redis.BoolCmd {
	f.keys = append(f.keys, key)
	f.expiration = expiration
	return f.result
}

func TestRedisDeduplicator(t *testing.T) {
	t.Run("Success_FirstDelivery", func(t *testing.T) {
		client := &fakeSetNXClient{result: redis.NewBoolResult(true, nil)}
		dedup := NewRedisDeduplicator(client, 30*time.Minute)

		first, err := dedup.FirstSeen(context.Background(), "Ev01")

		require.NoError(t, err)
		assert.True(t, first)
		assert.Equal(t, []string{"inboundbot:event:Ev01"}, client.keys)
		assert.Equal(t, 30*time.Minute, client.expiration)
	})

	t.Run("Success_Redelivery", func(t *testing.T) {
		dedup := NewRedisDeduplicator(&fakeSetNXClient{result: redis.NewBoolResult(false, nil)}, 0)

		first, err := dedup.FirstSeen(context.Background(), "Ev01")

		require.NoError(t, err)
		assert.False(t, first)
	})

	t.Run("Error_RedisUnavailable", func(t *testing.T) {
		dedup := NewRedisDeduplicator(&fakeSetNXClient{result: redis.NewBoolResult(false, fmt.Errorf("connection refused"))}, 0)

		_, err := dedup.FirstSeen(context.Background(), "Ev01")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})
}
