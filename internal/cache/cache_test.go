package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) IdentityCache {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	c, err := NewRedisCache(context.Background(), "redis://"+mr.Addr(), "test:ident:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return c
}

func TestRedisCache_SetAndGet(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	uid := uuid.New()

	// Промах до записи.
	_, hit, err := c.Username(ctx, uid)
	require.NoError(t, err)
	require.False(t, hit)

	require.NoError(t, c.SetUsername(ctx, uid, "alice", time.Minute))

	name, hit, err := c.Username(ctx, uid)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, "alice", name)

	// Другой ключ не задет.
	_, hit, err = c.Username(ctx, uuid.New())
	require.NoError(t, err)
	require.False(t, hit)
}

func TestRedisCache_TTLExpiry(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	c, err := NewRedisCache(context.Background(), "redis://"+mr.Addr(), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	ctx := context.Background()
	uid := uuid.New()

	require.NoError(t, c.SetUsername(ctx, uid, "bob", time.Second))

	// miniredis двигает время вручную.
	mr.FastForward(2 * time.Second)

	_, hit, err := c.Username(ctx, uid)
	require.NoError(t, err)
	require.False(t, hit)
}

func TestNewRedisCache_BadURL(t *testing.T) {
	_, err := NewRedisCache(context.Background(), "not-a-redis-url", "")
	require.Error(t, err)
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	// Порт из диапазона TEST-NET: соединение должно провалиться быстро.
	_, err := NewRedisCache(context.Background(), "redis://127.0.0.1:1", "")
	require.Error(t, err)
}
