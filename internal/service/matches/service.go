// Package matches implements the match registry: the canonical mutual
// relationship records and their inbox summaries.
package matches

import (
	"context"

	"github.com/bogdang40/DouaInimi/internal/app"
	"github.com/bogdang40/DouaInimi/internal/apperr"
	"github.com/bogdang40/DouaInimi/internal/db"
	"github.com/bogdang40/DouaInimi/internal/events"
	"github.com/bogdang40/DouaInimi/internal/logger"
	"github.com/bogdang40/DouaInimi/internal/repository"
)

// Service contains the business logic on top of the match repository.
type Service struct {
	appCtx    *app.AppContext
	matchRepo *repository.MatchRepository
}

// NewService creates a match service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:    appCtx,
		matchRepo: repository.NewMatchRepository(appCtx.DB),
	}
}

// CreateMatch creates (or returns) the match for a pair of users.
//
// Behavior:
//   - Canonicalizes to user1 = min, user2 = max.
//   - Idempotent: an existing row, active or unmatched, comes back
//     unchanged. Unmatching is terminal for the pair.
//   - Fires a MatchCreated event only on a fresh insert; event delivery is
//     best effort and can never fail the creation.
func (s *Service) CreateMatch(ctx context.Context, userA, userB uint64) (*db.Match, error) {
	if userA == userB {
		return nil, apperr.Validation("cannot match a user with themself")
	}

	match, created, err := s.matchRepo.Create(ctx, userA, userB)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to create match", err)
	}
	if created {
		s.appCtx.Events.Publish(events.NewMatchCreated(match.ID, match.User1ID, match.User2ID))
	}
	return match, nil
}

// GetMatch returns the active match between two users, or nil.
func (s *Service) GetMatch(ctx context.Context, userA, userB uint64) (*db.Match, error) {
	match, err := s.matchRepo.FindActiveByPair(ctx, userA, userB)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load match", err)
	}
	return match, nil
}

// GetByID returns a match by id, or nil.
func (s *Service) GetByID(ctx context.Context, matchID uint64) (*db.Match, error) {
	match, err := s.matchRepo.FindByID(ctx, matchID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load match", err)
	}
	return match, nil
}

// GetUserMatches returns all active matches for a user, newest first.
func (s *Service) GetUserMatches(ctx context.Context, userID uint64) ([]db.Match, error) {
	list, err := s.matchRepo.ListActiveForUser(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list matches", err)
	}
	return list, nil
}

// GetUserMatchesWithActivity returns active matches annotated with last
// message and unread count, computed in a constant number of round trips.
func (s *Service) GetUserMatchesWithActivity(ctx context.Context, userID uint64) ([]repository.MatchSummary, error) {
	list, err := s.matchRepo.ListWithActivity(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list match activity", err)
	}
	return list, nil
}

// Unmatch deactivates a match on behalf of one of its participants.
// Terminal: the pair cannot re-match afterwards.
func (s *Service) Unmatch(ctx context.Context, matchID, byUserID uint64) error {
	match, err := s.matchRepo.FindByID(ctx, matchID)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to load match", err)
	}
	if match == nil || !IsParticipant(match, byUserID) {
		logger.Security("unauthorized_unmatch", "match_id", matchID, "user_id", byUserID)
		return apperr.Unauthorized()
	}
	if err := s.matchRepo.Deactivate(ctx, matchID, byUserID); err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to unmatch", err)
	}
	return nil
}

// IsParticipant reports whether userID is one of the match's two sides.
func IsParticipant(match *db.Match, userID uint64) bool {
	return match != nil && (match.User1ID == userID || match.User2ID == userID)
}

// OtherParticipant returns the counterpart of userID in the match. Callers
// on the realtime path must treat the error as an authorization failure.
func OtherParticipant(match *db.Match, userID uint64) (uint64, error) {
	switch userID {
	case match.User1ID:
		return match.User2ID, nil
	case match.User2ID:
		return match.User1ID, nil
	default:
		return 0, apperr.Unauthorized()
	}
}
