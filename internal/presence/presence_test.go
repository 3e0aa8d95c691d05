package presence_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bogdang40/DouaInimi/internal/cache"
	"github.com/bogdang40/DouaInimi/internal/config"
	"github.com/bogdang40/DouaInimi/internal/presence"
)

func setupTracker(t *testing.T) (*presence.Tracker, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()
	return presence.NewTracker(cache.NewRedisCache(cfg)), mr
}

func TestOnlineOffline(t *testing.T) {
	tracker, _ := setupTracker(t)
	ctx := context.Background()

	assert.False(t, tracker.IsOnline(ctx, 42))
	require.NoError(t, tracker.SetOnline(ctx, 42))
	assert.True(t, tracker.IsOnline(ctx, 42))
	require.NoError(t, tracker.SetOffline(ctx, 42))
	assert.False(t, tracker.IsOnline(ctx, 42))
}

func TestMarkExpiresWithoutRefresh(t *testing.T) {
	tracker, mr := setupTracker(t)
	ctx := context.Background()

	require.NoError(t, tracker.SetOnline(ctx, 42))
	mr.FastForward(91 * time.Second)
	assert.False(t, tracker.IsOnline(ctx, 42))
}

// A connection refreshing on the ping interval stays online past the TTL.
func TestRefreshKeepsMarkAlive(t *testing.T) {
	tracker, mr := setupTracker(t)
	ctx := context.Background()

	require.NoError(t, tracker.SetOnline(ctx, 42))
	mr.FastForward(60 * time.Second)
	require.NoError(t, tracker.SetOnline(ctx, 42))
	mr.FastForward(60 * time.Second)
	assert.True(t, tracker.IsOnline(ctx, 42))
}
