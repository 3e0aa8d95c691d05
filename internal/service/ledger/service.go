// Package ledger implements the like/pass ledger: directional swipe
// decisions, super-like quotas and mutual-like detection.
package ledger

import (
	"context"
	"strconv"
	"time"

	"github.com/bogdang40/DouaInimi/internal/app"
	"github.com/bogdang40/DouaInimi/internal/apperr"
	"github.com/bogdang40/DouaInimi/internal/db"
	"github.com/bogdang40/DouaInimi/internal/events"
	"github.com/bogdang40/DouaInimi/internal/repository"

	"gorm.io/gorm"
)

// Service contains the business logic on top of the like/pass repositories.
type Service struct {
	appCtx   *app.AppContext
	likeRepo *repository.LikeRepository
}

// NewService creates a ledger service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		likeRepo: repository.NewLikeRepository(appCtx.DB),
	}
}

// LikeResult reports the outcome of a like action.
type LikeResult struct {
	Like         *db.Like
	Match        *db.Match
	MatchCreated bool
}

// RecordLike records a like from liker to liked and detects a mutual match.
//
// Behavior:
//   - likerID must differ from likedID; block checks and, for super likes,
//     the quota check belong to the calling boundary and are not repeated here.
//   - Idempotent: an existing row for the pair is returned with
//     MatchCreated=false and no side effects.
//   - The like insert, the reverse-direction lookup and the conditional match
//     insert run in one transaction, so a crash cannot leave a reciprocal
//     like pair without its match.
//   - Match creation itself is idempotent on the canonical pair, so both
//     directions racing through this path still produce exactly one match
//     row system-wide. An unmatched (inactive) pair is returned as-is and
//     never reactivated.
//   - A MatchCreated event fires after commit, only for a newly inserted match.
func (s *Service) RecordLike(ctx context.Context, likerID, likedID uint64, superLike bool) (*LikeResult, error) {
	if likerID == likedID {
		return nil, apperr.Validation("cannot like yourself")
	}

	result := &LikeResult{}

	err := s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		likes := repository.NewLikeRepository(tx)
		matches := repository.NewMatchRepository(tx)

		like, created, err := likes.CreateLike(ctx, likerID, likedID, superLike)
		if err != nil {
			return err
		}
		result.Like = like
		if !created {
			// pair already decided; nothing further happens
			return nil
		}

		reverse, err := likes.FindLike(ctx, likedID, likerID)
		if err != nil {
			return err
		}
		if reverse == nil {
			return nil
		}

		match, matchCreated, err := matches.Create(ctx, likerID, likedID)
		if err != nil {
			return err
		}
		result.Match = match
		result.MatchCreated = matchCreated
		return nil
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to record like", err)
	}

	// advisory counter, best effort
	_, _ = s.appCtx.RedisCache.Incr(ctx, s.appCtx.RedisCache.KeyForLikeCount(likedID))

	if result.MatchCreated {
		s.appCtx.Events.Publish(events.NewMatchCreated(
			result.Match.ID, result.Match.User1ID, result.Match.User2ID,
		))
	}

	return result, nil
}

// RecordPass records a pass. Idempotent; never triggers matching.
func (s *Service) RecordPass(ctx context.Context, passerID, passedID uint64) (*db.Pass, error) {
	if passerID == passedID {
		return nil, apperr.Validation("cannot pass on yourself")
	}
	pass, err := s.likeRepo.CreatePass(ctx, passerID, passedID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to record pass", err)
	}
	return pass, nil
}

// RemoveLike undoes a pre-match like. No-op when no like exists. The caller
// is responsible for not offering undo once a match formed; this simply
// deletes whatever row exists.
func (s *Service) RemoveLike(ctx context.Context, likerID, likedID uint64) error {
	if err := s.likeRepo.DeleteLike(ctx, likerID, likedID); err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to remove like", err)
	}
	_, _ = s.appCtx.RedisCache.Decr(ctx, s.appCtx.RedisCache.KeyForLikeCount(likedID))
	return nil
}

// SuperLikesUsedToday counts super likes sent since the start of the current
// UTC day. Re-queried from persisted rows on every call.
func (s *Service) SuperLikesUsedToday(ctx context.Context, userID uint64) (int, error) {
	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	count, err := s.likeRepo.CountSuperLikesSince(ctx, userID, dayStart)
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// DailyLimit returns the super-like allowance for the tier.
func (s *Service) DailyLimit(premium bool) int {
	if premium {
		return s.appCtx.Config.Limits.PremiumSuperLikesPerDay
	}
	return s.appCtx.Config.Limits.SuperLikesPerDay
}

// CanSuperLike reports whether the user still has super-like quota today.
func (s *Service) CanSuperLike(ctx context.Context, userID uint64, premium bool) (bool, error) {
	used, err := s.SuperLikesUsedToday(ctx, userID)
	if err != nil {
		return false, err
	}
	return used < s.DailyLimit(premium), nil
}

// SuperLikesRemaining returns the remaining quota for today, never negative.
func (s *Service) SuperLikesRemaining(ctx context.Context, userID uint64, premium bool) (int, error) {
	used, err := s.SuperLikesUsedToday(ctx, userID)
	if err != nil {
		return 0, err
	}
	remaining := s.DailyLimit(premium) - used
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// LikedYouPage is one page of a received-likes feed.
type LikedYouPage struct {
	Likes     []db.Like
	NextToken *string
}

// ListLikedYou returns everyone who liked the recipient, newest first, with
// cursor pagination.
func (s *Service) ListLikedYou(ctx context.Context, recipientID uint64, token *string, limit int) (*LikedYouPage, error) {
	likes, next, err := s.likeRepo.GetLikers(ctx, recipientID, token, limit)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list likers", err)
	}
	return &LikedYouPage{Likes: likes, NextToken: next}, nil
}

// ListNewLikedYou returns likers the recipient has not liked back yet.
func (s *Service) ListNewLikedYou(ctx context.Context, recipientID uint64, token *string, limit int) (*LikedYouPage, error) {
	likes, next, err := s.likeRepo.GetNewLikers(ctx, recipientID, token, limit)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list new likers", err)
	}
	return &LikedYouPage{Likes: likes, NextToken: next}, nil
}

// CountLikedYou returns how many users liked the recipient.
// Cache-first: redis counter with 1h TTL, DB fallback on miss.
func (s *Service) CountLikedYou(ctx context.Context, recipientID uint64) (int64, error) {
	key := s.appCtx.RedisCache.KeyForLikeCount(recipientID)

	if n, ok, _ := s.appCtx.RedisCache.GetLikeCount(ctx, recipientID); ok {
		return n, nil
	}

	count, err := s.likeRepo.CountLikers(ctx, recipientID)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindInternal, "failed to count likers", err)
	}

	_ = s.appCtx.RedisCache.Set(ctx, key, strconv.FormatInt(count, 10), time.Hour)
	return count, nil
}
