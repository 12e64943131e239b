package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/inventory-sales-ledger/internal/domain/item"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCmdable struct {
	mock.Mock
}

func (m *MockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	args := m.Called(ctx, key)
	return args.Get(0).(*redis.StringCmd)
}

func (m *MockCmdable) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	args := m.Called(ctx, key, value, expiration)
	return args.Get(0).(*redis.StatusCmd)
}

func (m *MockCmdable) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	args := m.Called(ctx, key, value, expiration)
	return args.Get(0).(*redis.BoolCmd)
}

func (m *MockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	args := m.Called(ctx, keys)
	return args.Get(0).(*redis.IntCmd)
}

func newTestCache(client *MockCmdable) *ItemCache {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	return &ItemCache{client: client, ttl: 30 * time.Second, hold: invalidationHold, logger: logger}
}

func TestItemCache_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("hit", func(t *testing.T) {
		client := new(MockCmdable)
		cache := newTestCache(client)
		raw, err := json.Marshal(&item.Item{ID: 3, Name: "Hoodie (L)", QuantityOnHand: 8})
		require.NoError(t, err)

		client.On("Get", ctx, "item:3").Return(redis.NewStringResult(string(raw), nil))

		it, err := cache.Get(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, "Hoodie (L)", it.Name)
		assert.Equal(t, int64(8), it.QuantityOnHand)
		client.AssertExpectations(t)
	})

	t.Run("miss", func(t *testing.T) {
		client := new(MockCmdable)
		cache := newTestCache(client)
		client.On("Get", ctx, "item:4").Return(redis.NewStringResult("", redis.Nil))

		it, err := cache.Get(ctx, 4)
		assert.NoError(t, err)
		assert.Nil(t, it)
	})

	t.Run("corrupt entry is dropped", func(t *testing.T) {
		client := new(MockCmdable)
		cache := newTestCache(client)
		client.On("Get", ctx, "item:5").Return(redis.NewStringResult("{not json", nil))
		client.On("Del", ctx, []string{"item:5"}).Return(redis.NewIntResult(1, nil))

		it, err := cache.Get(ctx, 5)
		assert.NoError(t, err)
		assert.Nil(t, it)
		client.AssertExpectations(t)
	})

	t.Run("tombstone is a miss", func(t *testing.T) {
		client := new(MockCmdable)
		cache := newTestCache(client)
		client.On("Get", ctx, "item:7").Return(redis.NewStringResult(tombstone, nil))

		it, err := cache.Get(ctx, 7)
		assert.NoError(t, err)
		assert.Nil(t, it)
		client.AssertNotCalled(t, "Del", mock.Anything, mock.Anything)
	})

	t.Run("redis error", func(t *testing.T) {
		client := new(MockCmdable)
		cache := newTestCache(client)
		client.On("Get", ctx, "item:6").Return(redis.NewStringResult("", errors.New("i/o timeout")))

		_, err := cache.Get(ctx, 6)
		assert.ErrorContains(t, err, "failed to read cached item")
	})
}

func TestItemCache_Set(t *testing.T) {
	ctx := context.Background()
	it := &item.Item{ID: 3, Name: "Hoodie (L)"}
	raw, err := json.Marshal(it)
	require.NoError(t, err)

	t.Run("stores on an empty key", func(t *testing.T) {
		client := new(MockCmdable)
		cache := newTestCache(client)
		client.On("SetNX", ctx, "item:3", raw, 30*time.Second).Return(redis.NewBoolResult(true, nil)).Once()

		assert.NoError(t, cache.Set(ctx, it))
		client.AssertExpectations(t)
	})

	t.Run("occupied key is left alone", func(t *testing.T) {
		client := new(MockCmdable)
		cache := newTestCache(client)
		client.On("SetNX", ctx, "item:3", raw, 30*time.Second).Return(redis.NewBoolResult(false, nil)).Once()

		assert.NoError(t, cache.Set(ctx, it))
		client.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("redis error", func(t *testing.T) {
		client := new(MockCmdable)
		cache := newTestCache(client)
		client.On("SetNX", ctx, "item:3", raw, 30*time.Second).Return(redis.NewBoolResult(false, errors.New("i/o timeout"))).Once()

		assert.ErrorContains(t, cache.Set(ctx, it), "failed to cache item")
	})
}

func TestItemCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	client := new(MockCmdable)
	cache := newTestCache(client)

	client.On("Set", ctx, "item:3", tombstone, invalidationHold).Return(redis.NewStatusResult("OK", nil)).Once()

	assert.NoError(t, cache.Invalidate(ctx, 3))
	client.AssertExpectations(t)
}

// A reader that loaded the row before a sale must not overwrite the invalidation
func TestItemCache_StaleSnapshotAfterInvalidate(t *testing.T) {
	ctx := context.Background()
	client := new(MockCmdable)
	cache := newTestCache(client)
	stale := &item.Item{ID: 3, Name: "Hoodie (L)", QuantityOnHand: 8}
	raw, err := json.Marshal(stale)
	require.NoError(t, err)

	client.On("Set", ctx, "item:3", tombstone, invalidationHold).Return(redis.NewStatusResult("OK", nil)).Once()
	client.On("SetNX", ctx, "item:3", raw, 30*time.Second).Return(redis.NewBoolResult(false, nil)).Once()
	client.On("Get", ctx, "item:3").Return(redis.NewStringResult(tombstone, nil)).Once()

	require.NoError(t, cache.Invalidate(ctx, 3))
	require.NoError(t, cache.Set(ctx, stale))

	cached, err := cache.Get(ctx, 3)
	require.NoError(t, err)
	assert.Nil(t, cached)
	client.AssertExpectations(t)
}

func TestNewItemCache_HoldNeverOutlivesTTL(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	assert.Equal(t, invalidationHold, NewItemCache(logger, nil, time.Minute).hold)
	assert.Equal(t, 2*time.Second, NewItemCache(logger, nil, 2*time.Second).hold)
}
