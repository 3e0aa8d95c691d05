package ledger_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bogdang40/DouaInimi/internal/app"
	"github.com/bogdang40/DouaInimi/internal/apperr"
	"github.com/bogdang40/DouaInimi/internal/cache"
	"github.com/bogdang40/DouaInimi/internal/config"
	"github.com/bogdang40/DouaInimi/internal/db"
	"github.com/bogdang40/DouaInimi/internal/events"
	"github.com/bogdang40/DouaInimi/internal/repository"
	"github.com/bogdang40/DouaInimi/internal/service/ledger"
)

// recorder captures published events for assertions.
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(ev events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) matchCreations() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, ev := range r.events {
		if ev.Type == events.TypeMatchCreated {
			out = append(out, ev)
		}
	}
	return out
}

// setupService spins up an in-memory SQLite DB, a miniredis, and wires both
// into a ledger service. Each test gets its own isolated stack.
func setupService(t *testing.T) (*ledger.Service, *app.AppContext, *recorder) {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbase, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := dbase.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, dbase.AutoMigrate(
		&db.User{}, &db.Profile{}, &db.Like{}, &db.Pass{},
		&db.Match{}, &db.Message{}, &db.Block{}, &db.Report{},
	))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	redisCache := cache.NewRedisCache(cfg)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	rec := &recorder{}

	appCtx := app.New(dbase, redisCache, log, rec, cfg)
	return ledger.NewService(appCtx), appCtx, rec
}

func TestRecordLikeNoMatchWithoutReciprocal(t *testing.T) {
	ctx := context.Background()
	svc, _, rec := setupService(t)

	result, err := svc.RecordLike(ctx, 1, 2, false)
	require.NoError(t, err)
	assert.NotNil(t, result.Like)
	assert.Nil(t, result.Match)
	assert.False(t, result.MatchCreated)
	assert.Empty(t, rec.matchCreations())
}

func TestRecordLikeMutualCreatesOneMatch(t *testing.T) {
	ctx := context.Background()
	svc, _, rec := setupService(t)

	_, err := svc.RecordLike(ctx, 1, 2, false)
	require.NoError(t, err)

	result, err := svc.RecordLike(ctx, 2, 1, false)
	require.NoError(t, err)
	require.True(t, result.MatchCreated)
	require.NotNil(t, result.Match)

	// canonical ordering regardless of who liked last
	assert.Equal(t, uint64(1), result.Match.User1ID)
	assert.Equal(t, uint64(2), result.Match.User2ID)

	creations := rec.matchCreations()
	require.Len(t, creations, 1)
	assert.Equal(t, result.Match.ID, creations[0].MatchCreated.MatchID)
}

func TestRecordLikeMutualReversedOrder(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t)

	// higher id likes first
	_, err := svc.RecordLike(ctx, 9, 4, false)
	require.NoError(t, err)

	result, err := svc.RecordLike(ctx, 4, 9, false)
	require.NoError(t, err)
	require.True(t, result.MatchCreated)
	assert.Equal(t, uint64(4), result.Match.User1ID)
	assert.Equal(t, uint64(9), result.Match.User2ID)
}

func TestRecordLikeIdempotentNoSecondEvent(t *testing.T) {
	ctx := context.Background()
	svc, _, rec := setupService(t)

	_, err := svc.RecordLike(ctx, 1, 2, false)
	require.NoError(t, err)
	_, err = svc.RecordLike(ctx, 2, 1, false)
	require.NoError(t, err)

	// repeating either direction neither duplicates the match nor re-fires
	result, err := svc.RecordLike(ctx, 1, 2, false)
	require.NoError(t, err)
	assert.False(t, result.MatchCreated)

	result, err = svc.RecordLike(ctx, 2, 1, false)
	require.NoError(t, err)
	assert.False(t, result.MatchCreated)

	assert.Len(t, rec.matchCreations(), 1)
}

func TestRecordLikeSelf(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t)

	_, err := svc.RecordLike(ctx, 5, 5, false)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestRecordLikeAfterUnmatchDoesNotReactivate(t *testing.T) {
	ctx := context.Background()
	svc, appCtx, rec := setupService(t)

	_, err := svc.RecordLike(ctx, 1, 2, false)
	require.NoError(t, err)
	result, err := svc.RecordLike(ctx, 2, 1, false)
	require.NoError(t, err)
	require.True(t, result.MatchCreated)

	matchRepo := repository.NewMatchRepository(appCtx.DB)
	require.NoError(t, matchRepo.Deactivate(ctx, result.Match.ID, 1))

	// remove and re-add a like: the closed pair stays closed
	require.NoError(t, svc.RemoveLike(ctx, 1, 2))
	again, err := svc.RecordLike(ctx, 1, 2, false)
	require.NoError(t, err)
	assert.False(t, again.MatchCreated)
	require.NotNil(t, again.Match)
	assert.False(t, again.Match.Active)

	assert.Len(t, rec.matchCreations(), 1)
}

func TestRecordPassNeverMatches(t *testing.T) {
	ctx := context.Background()
	svc, _, rec := setupService(t)

	_, err := svc.RecordLike(ctx, 2, 1, false)
	require.NoError(t, err)

	// a pass on someone who liked you is not a reciprocal like
	_, err = svc.RecordPass(ctx, 1, 2)
	require.NoError(t, err)
	assert.Empty(t, rec.matchCreations())

	// idempotent
	_, err = svc.RecordPass(ctx, 1, 2)
	require.NoError(t, err)
}

func TestSuperLikeQuota(t *testing.T) {
	ctx := context.Background()
	svc, appCtx, _ := setupService(t)
	appCtx.Config.Limits.SuperLikesPerDay = 3
	appCtx.Config.Limits.PremiumSuperLikesPerDay = 10

	for i := uint64(2); i <= 4; i++ {
		_, err := svc.RecordLike(ctx, 1, i, true)
		require.NoError(t, err)
	}

	used, err := svc.SuperLikesUsedToday(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, used)

	ok, err := svc.CanSuperLike(ctx, 1, false)
	require.NoError(t, err)
	assert.False(t, ok)

	// premium tier still has room
	ok, err = svc.CanSuperLike(ctx, 1, true)
	require.NoError(t, err)
	assert.True(t, ok)

	remaining, err := svc.SuperLikesRemaining(ctx, 1, true)
	require.NoError(t, err)
	assert.Equal(t, 7, remaining)
}

func TestSuperLikeQuotaIgnoresYesterday(t *testing.T) {
	ctx := context.Background()
	svc, appCtx, _ := setupService(t)

	result, err := svc.RecordLike(ctx, 1, 2, true)
	require.NoError(t, err)

	// age the like past the UTC day boundary
	yesterday := time.Now().UTC().Add(-26 * time.Hour)
	require.NoError(t, appCtx.DB.Model(&db.Like{}).
		Where("id = ?", result.Like.ID).
		Update("created_at", yesterday).Error)

	used, err := svc.SuperLikesUsedToday(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, used)
}

func TestCountLikedYouCacheFallback(t *testing.T) {
	ctx := context.Background()
	svc, appCtx, _ := setupService(t)

	_, err := svc.RecordLike(ctx, 2, 1, false)
	require.NoError(t, err)
	_, err = svc.RecordLike(ctx, 3, 1, false)
	require.NoError(t, err)

	// cold cache: counted from the table, then cached
	require.NoError(t, appCtx.RedisCache.Del(ctx, appCtx.RedisCache.KeyForLikeCount(1)))
	count, err := svc.CountLikedYou(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// warm cache short-circuits the table
	count, err = svc.CountLikedYou(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestListLikedYouFeeds(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t)

	_, err := svc.RecordLike(ctx, 2, 1, false)
	require.NoError(t, err)
	_, err = svc.RecordLike(ctx, 3, 1, false)
	require.NoError(t, err)
	// like user 3 back so they disappear from the "new" feed
	_, err = svc.RecordLike(ctx, 1, 3, false)
	require.NoError(t, err)

	all, err := svc.ListLikedYou(ctx, 1, nil, 10)
	require.NoError(t, err)
	assert.Len(t, all.Likes, 2)

	fresh, err := svc.ListNewLikedYou(ctx, 1, nil, 10)
	require.NoError(t, err)
	require.Len(t, fresh.Likes, 1)
	assert.Equal(t, uint64(2), fresh.Likes[0].LikerID)
}
