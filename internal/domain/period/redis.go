package period

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "hrms:selected_month:"
	selectionTTL   = 90 * 24 * time.Hour
)

type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, userID string) (Period, bool, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+userID).Result()
	if errors.Is(err, redis.Nil) {
		return Period{}, false, nil
	}
	if err != nil {
		return Period{}, false, err
	}
	p, err := Parse(raw)
	if err != nil {
		// A corrupt value is treated as no selection.
		return Period{}, false, nil
	}
	return p, true, nil
}

func (s *RedisStore) Set(ctx context.Context, userID string, p Period) error {
	return s.client.Set(ctx, redisKeyPrefix+userID, p.String(), selectionTTL).Err()
}
