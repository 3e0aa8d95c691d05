// Package presence tracks which users currently hold a realtime connection.
package presence

import (
	"context"
	"errors"
	"time"

	"github.com/bogdang40/DouaInimi/internal/cache"
	"github.com/redis/go-redis/v9"
)

// TTL after which a presence mark expires on its own. Connected clients
// refresh it on the ping interval, so a crashed process cannot leave a user
// online forever.
const presenceTTL = 90 * time.Second

// Tracker records online status in redis, shared across server processes.
type Tracker struct {
	cache *cache.RedisCache
}

// NewTracker creates a presence tracker backed by the shared redis cache.
func NewTracker(c *cache.RedisCache) *Tracker {
	return &Tracker{cache: c}
}

// SetOnline marks the user online, refreshing the TTL.
func (t *Tracker) SetOnline(ctx context.Context, userID uint64) error {
	return t.cache.Set(ctx, t.cache.KeyForPresence(userID), "1", presenceTTL)
}

// SetOffline clears the mark. Called on connection close; the TTL covers
// the case where the close never runs.
func (t *Tracker) SetOffline(ctx context.Context, userID uint64) error {
	return t.cache.Del(ctx, t.cache.KeyForPresence(userID))
}

// IsOnline reports whether the user currently holds a connection. Redis
// errors degrade to "offline" so callers fall back to sending notifications
// rather than dropping them.
func (t *Tracker) IsOnline(ctx context.Context, userID uint64) bool {
	_, err := t.cache.Get(ctx, t.cache.KeyForPresence(userID))
	if errors.Is(err, redis.Nil) {
		return false
	}
	return err == nil
}
