package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/car-build/internal/core/domain"
)

const partsKeyPrefix = "catalog:parts:"

type RedisAdapter struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisAdapter(client *redis.Client, ttl time.Duration) *RedisAdapter {
	return &RedisAdapter{client: client, ttl: ttl}
}

func partsKey(model string) string {
	return partsKeyPrefix + strings.ToLower(model)
}

func (r *RedisAdapter) GetParts(ctx context.Context, model string) ([]domain.Part, bool, error) {
	data, err := r.client.Get(ctx, partsKey(model)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var parts []domain.Part
	if err := json.Unmarshal(data, &parts); err != nil {
		return nil, false, fmt.Errorf("decode cached parts: %w", err)
	}
	return parts, true, nil
}

func (r *RedisAdapter) SetParts(ctx context.Context, model string, parts []domain.Part) error {
	data, err := json.Marshal(parts)
	if err != nil {
		return fmt.Errorf("encode parts: %w", err)
	}
	return r.client.Set(ctx, partsKey(model), data, r.ttl).Err()
}

func (r *RedisAdapter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
