package tokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/magiclink/internal/common"
	"github.com/dmitrijs2005/magiclink/internal/server/models"
	"github.com/dmitrijs2005/magiclink/internal/timex"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// RedisRepository keeps each record as JSON under common.TokenKeyPrefix+key
// with a native Redis expiry. Take uses GETDEL, which is atomic.
type RedisRepository struct {
	client redis.Cmdable
	now    timex.Clock
}

func NewRedisRepository(client redis.Cmdable, clock timex.Clock) *RedisRepository {
	if clock == nil {
		clock = timex.SystemClock
	}
	return &RedisRepository{client: client, now: clock}
}

func redisKey(key string) string {
	return common.TokenKeyPrefix + key
}

func (r *RedisRepository) Put(ctx context.Context, key string, rec *models.TokenRecord, ttl time.Duration) error {
	stored := *rec
	stored.ExpiresAt = r.now().Add(ttl)

	data, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("encode token record: %w", err)
	}

	ok, err := r.client.SetNX(ctx, redisKey(key), data, ttl).Result()
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	if !ok {
		return fmt.Errorf("token %q: %w", key, common.ErrorAlreadyExists)
	}
	return nil
}

func (r *RedisRepository) Take(ctx context.Context, key string) (*models.TokenRecord, error) {
	data, err := r.client.GetDel(ctx, redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("redis error: %w", err)
	}

	rec := &models.TokenRecord{}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("decode token record: %w", err)
	}
	return rec, nil
}

// Sweep is a no-op: Redis evicts expired keys by itself.
func (r *RedisRepository) Sweep(_ context.Context) (int64, error) {
	return 0, nil
}

func (r *RedisRepository) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}
