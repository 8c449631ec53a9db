package storage

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/car-build/internal/core/domain"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestSetAndGetParts(t *testing.T) {
	_, client := newTestRedis(t)
	adapter := NewRedisAdapter(client, time.Minute)
	ctx := context.Background()

	parts := []domain.Part{
		{ID: "7", Name: "Chassi Corolla", UnitPrice: decimal.RequireFromString("5499.90")},
		{ID: "8", Name: "Wheel", UnitPrice: decimal.RequireFromString("210.25")},
	}
	require.NoError(t, adapter.SetParts(ctx, "Corolla", parts))

	got, ok, err := adapter.GetParts(ctx, "corolla")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 2)
	assert.Equal(t, "Chassi Corolla", got[0].Name)
	assert.True(t, got[0].UnitPrice.Equal(decimal.RequireFromString("5499.9")))
	assert.True(t, got[1].UnitPrice.Equal(decimal.RequireFromString("210.25")))
}

func TestGetParts_Miss(t *testing.T) {
	_, client := newTestRedis(t)
	adapter := NewRedisAdapter(client, time.Minute)

	got, ok, err := adapter.GetParts(context.Background(), "fusca")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestSetParts_EmptyListIsCached(t *testing.T) {
	_, client := newTestRedis(t)
	adapter := NewRedisAdapter(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, adapter.SetParts(ctx, "fusca", []domain.Part{}))

	got, ok, err := adapter.GetParts(ctx, "fusca")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, got)
}

func TestSetParts_Expires(t *testing.T) {
	mr, client := newTestRedis(t)
	adapter := NewRedisAdapter(client, 30*time.Second)
	ctx := context.Background()

	require.NoError(t, adapter.SetParts(ctx, "civic", []domain.Part{{ID: "1", Name: "Hood"}}))
	assert.Equal(t, 30*time.Second, mr.TTL("catalog:parts:civic"))

	mr.FastForward(31 * time.Second)

	_, ok, err := adapter.GetParts(ctx, "civic")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetParts_CorruptPayload(t *testing.T) {
	mr, client := newTestRedis(t)
	adapter := NewRedisAdapter(client, time.Minute)

	require.NoError(t, mr.Set("catalog:parts:civic", "not-json"))

	_, ok, err := adapter.GetParts(context.Background(), "civic")
	assert.Error(t, err)
	assert.False(t, ok)
}
