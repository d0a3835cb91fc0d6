package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/akozyrev/route-weather/internal/weather"
	redisv9 "github.com/redis/go-redis/v9"
)

const defaultDatasetKey = "route-weather:dataset"

// RedisStore keeps the dataset under a single key as JSON. SET replaces the
// value atomically, which gives readers the old-or-new guarantee for free.
type RedisStore struct {
	client *redisv9.Client
	key    string
}

func NewRedisStore(client *redisv9.Client, key string) *RedisStore {
	if key == "" {
		key = defaultDatasetKey
	}
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) Replace(ctx context.Context, ds weather.Dataset) error {
	data, err := json.Marshal(ds)
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}

	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("store dataset: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context) (weather.Dataset, error) {
	val, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redisv9.Nil) {
		return weather.Dataset{}, weather.ErrNoDataset
	}
	if err != nil {
		return weather.Dataset{}, fmt.Errorf("load dataset: %w", err)
	}

	var ds weather.Dataset
	if err := json.Unmarshal([]byte(val), &ds); err != nil {
		return weather.Dataset{}, fmt.Errorf("decode dataset: %w", err)
	}
	return ds, nil
}
