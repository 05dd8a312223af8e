package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func newRedisTestCache(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	cfg := DefaultRedisConfig()
	cfg.Addr = mr.Addr()
	cfg.Namespace = "govern-test"

	c, err := NewRedis(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return c, mr
}

func TestRedis_RoundTrip(t *testing.T) {
	c, _ := newRedisTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v"), got)
}

func TestRedis_MissReturnsNil(t *testing.T) {
	c, _ := newRedisTestCache(t)

	got, err := c.Get(context.Background(), "absent")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestRedis_TTLExpiry(t *testing.T) {
	c, mr := newRedisTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	mr.FastForward(time.Minute + time.Second)

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.Nil(t, got, "entry should be gone after TTL")
}

func TestRedis_NamespacePrefix(t *testing.T) {
	c, mr := newRedisTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	stored, err := mr.Get("govern-test:k")
	require.NoError(t, err)
	require.Equal(t, "v", stored)
}

func TestRedis_Delete(t *testing.T) {
	c, _ := newRedisTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, c.Delete(ctx, "k"))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestRedis_Ping(t *testing.T) {
	c, _ := newRedisTestCache(t)
	require.NoError(t, c.Ping(context.Background()))
}

func TestNewRedis_RequiresAddr(t *testing.T) {
	_, err := NewRedis(RedisConfig{})
	require.Error(t, err)
}
