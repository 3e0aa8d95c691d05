// Package discover implements the discovery query engine: the filtered,
// activity-ordered candidate feed a viewer browses.
package discover

import (
	"context"

	"github.com/bogdang40/DouaInimi/internal/app"
	"github.com/bogdang40/DouaInimi/internal/apperr"
	"github.com/bogdang40/DouaInimi/internal/repository"
)

const defaultPageSize = 20

// Service contains the business logic on top of the user repository.
type Service struct {
	appCtx    *app.AppContext
	userRepo  *repository.UserRepository
	likeRepo  *repository.LikeRepository
	blockRepo *repository.BlockRepository
}

// NewService creates a discovery service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:    appCtx,
		userRepo:  repository.NewUserRepository(appCtx.DB),
		likeRepo:  repository.NewLikeRepository(appCtx.DB),
		blockRepo: repository.NewBlockRepository(appCtx.DB),
	}
}

// Page is one page of discovery results.
type Page struct {
	Candidates []repository.Candidate
	Total      int64
	Page       int
	PageSize   int
}

// FindCandidates returns a page of potential matches for the viewer.
//
// Behavior:
//   - The viewer needs an active account and a complete profile (gender
//     set); otherwise the search is a validation error.
//   - Excluded from results: the viewer, anyone in a block relationship
//     with the viewer in either direction, and anyone the viewer already
//     liked. Users the viewer passed on DO resurface.
//   - Age bounds come from the viewer's profile preferences.
//   - Optional filters narrow the result; ordering is last_active DESC.
func (s *Service) FindCandidates(ctx context.Context, viewerID uint64, filters repository.DiscoverFilters, page, pageSize int) (*Page, error) {
	viewer, err := s.userRepo.FindByID(ctx, viewerID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load viewer", err)
	}
	if viewer == nil || !viewer.Active {
		return nil, apperr.Unauthorized()
	}

	profile, err := s.userRepo.ProfileOf(ctx, viewerID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load viewer profile", err)
	}
	if profile == nil || profile.Gender == "" {
		return nil, apperr.Validation("complete your profile before searching")
	}

	excluded, err := s.exclusions(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = defaultPageSize
	}

	ageMin := profile.LookingForAgeMin
	ageMax := profile.LookingForAgeMax
	if ageMin < 18 {
		ageMin = 18
	}
	if ageMax < ageMin {
		ageMax = ageMin
	}

	candidates, total, err := s.userRepo.FindCandidates(ctx, profile.Gender, ageMin, ageMax, excluded, filters, page, pageSize)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "discovery query failed", err)
	}

	return &Page{Candidates: candidates, Total: total, Page: page, PageSize: pageSize}, nil
}

// exclusions builds the id set hidden from the viewer: self, blocks in both
// directions, and prior likes. Passes are intentionally absent.
func (s *Service) exclusions(ctx context.Context, viewerID uint64) ([]uint64, error) {
	excluded := []uint64{viewerID}

	blocked, err := s.blockRepo.BlockedIDs(ctx, viewerID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load blocked ids", err)
	}
	blockers, err := s.blockRepo.BlockerIDs(ctx, viewerID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load blocker ids", err)
	}
	liked, err := s.likeRepo.LikedIDs(ctx, viewerID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load liked ids", err)
	}

	seen := map[uint64]struct{}{viewerID: {}}
	for _, set := range [][]uint64{blocked, blockers, liked} {
		for _, id := range set {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			excluded = append(excluded, id)
		}
	}
	return excluded, nil
}
