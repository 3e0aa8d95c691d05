// Package safety implements blocking and reporting.
package safety

import (
	"context"

	"github.com/bogdang40/DouaInimi/internal/app"
	"github.com/bogdang40/DouaInimi/internal/apperr"
	"github.com/bogdang40/DouaInimi/internal/db"
	"github.com/bogdang40/DouaInimi/internal/repository"

	"gorm.io/gorm"
)

// Service contains the business logic on top of the block repository.
type Service struct {
	appCtx    *app.AppContext
	blockRepo *repository.BlockRepository
}

// NewService creates a safety service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:    appCtx,
		blockRepo: repository.NewBlockRepository(appCtx.DB),
	}
}

// Block records a block from blocker to blocked and closes any active match
// between the pair.
//
// Behavior:
//   - Idempotent: re-blocking returns the existing state without error.
//   - An active match between the two users is deactivated in the same
//     transaction as the block insert, attributed to the blocker. A match
//     closed this way is never reopened by Unblock.
func (s *Service) Block(ctx context.Context, blockerID, blockedID uint64) (*db.Block, error) {
	if blockerID == blockedID {
		return nil, apperr.Validation("cannot block yourself")
	}

	var block *db.Block
	err := s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		blocks := repository.NewBlockRepository(tx)
		matches := repository.NewMatchRepository(tx)

		b, _, err := blocks.Create(ctx, blockerID, blockedID)
		if err != nil {
			return err
		}
		block = b

		match, err := matches.FindActiveByPair(ctx, blockerID, blockedID)
		if err != nil {
			return err
		}
		if match == nil {
			return nil
		}
		return matches.Deactivate(ctx, match.ID, blockerID)
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to block user", err)
	}
	return block, nil
}

// Unblock removes a block. No-op when none exists; the previously closed
// match stays closed.
func (s *Service) Unblock(ctx context.Context, blockerID, blockedID uint64) error {
	if _, err := s.blockRepo.Delete(ctx, blockerID, blockedID); err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to unblock user", err)
	}
	return nil
}

// IsBlocked reports whether either user blocks the other.
func (s *Service) IsBlocked(ctx context.Context, userA, userB uint64) (bool, error) {
	blocked, err := s.blockRepo.IsBlockedEither(ctx, userA, userB)
	if err != nil {
		return false, apperr.Wrap(apperr.KindInternal, "failed to check blocks", err)
	}
	return blocked, nil
}

// Report files a safety report and blocks the reported user on the
// reporter's behalf, closing any match between them.
func (s *Service) Report(ctx context.Context, reporterID, reportedID uint64, reason, description string) (*db.Report, error) {
	if reporterID == reportedID {
		return nil, apperr.Validation("cannot report yourself")
	}
	if reason == "" {
		return nil, apperr.Validation("reason is required")
	}

	report := &db.Report{
		ReporterID:  reporterID,
		ReportedID:  reportedID,
		Reason:      reason,
		Description: description,
		Status:      "pending",
	}
	if err := s.appCtx.DB.WithContext(ctx).Create(report).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to file report", err)
	}

	if _, err := s.Block(ctx, reporterID, reportedID); err != nil {
		return nil, err
	}
	return report, nil
}
