package throttle

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newThrottle(t *testing.T, window time.Duration) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	client, err := Connect(context.Background(), "redis://"+s.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client, "reset:", window, zap.NewNop()), s
}

func TestRedis_AllowOncePerWindow(t *testing.T) {
	th, s := newThrottle(t, time.Minute)
	ctx := context.Background()

	assert.True(t, th.Allow(ctx, "user@example.com"))
	assert.False(t, th.Allow(ctx, "user@example.com"))
	assert.True(t, th.Allow(ctx, "other@example.com"))
	assert.True(t, s.Exists("reset:user@example.com"))

	s.FastForward(61 * time.Second)
	assert.True(t, th.Allow(ctx, "user@example.com"))
}

func TestRedis_Release(t *testing.T) {
	th, s := newThrottle(t, time.Minute)
	ctx := context.Background()

	require.True(t, th.Allow(ctx, "user@example.com"))
	th.Release(ctx, "user@example.com")
	assert.False(t, s.Exists("reset:user@example.com"))
	assert.True(t, th.Allow(ctx, "user@example.com"))

	// releasing an unknown key is a no-op
	th.Release(ctx, "ghost@example.com")
}

func TestRedis_FailsOpen(t *testing.T) {
	th, s := newThrottle(t, time.Minute)
	s.Close()

	assert.True(t, th.Allow(context.Background(), "user@example.com"))
	assert.True(t, th.Allow(context.Background(), "user@example.com"))
}

func TestConnect_Errors(t *testing.T) {
	_, err := Connect(context.Background(), "not a url")
	assert.ErrorContains(t, err, "parse redis url")

	_, err = Connect(context.Background(), "redis://127.0.0.1:1")
	assert.ErrorContains(t, err, "ping redis")
}
