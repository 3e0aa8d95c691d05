package repository

import (
	"context"
	"time"

	"github.com/bogdang40/DouaInimi/internal/db"
	"github.com/bogdang40/DouaInimi/internal/utils/pagination"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository provides data access for the Like and Pass ledgers.
type LikeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new repository bound to the given DB connection.
func NewLikeRepository(database *gorm.DB) *LikeRepository {
	return &LikeRepository{db: database}
}

// CreateLike inserts a like for the ordered pair (liker, liked).
//
// Behavior:
//   - The unique index on (liker_id, liked_id) is the sole integrity guard;
//     a concurrent duplicate insert resolves here, not in the caller.
//   - Returns (like, true) when a new row was inserted.
//   - Returns (existing, false) when the pair already had a row: idempotent,
//     and the existing row keeps its original is_super_like flag.
func (r *LikeRepository) CreateLike(
	ctx context.Context,
	likerID, likedID uint64,
	superLike bool,
) (*db.Like, bool, error) {
	like := db.Like{
		LikerID:   likerID,
		LikedID:   likedID,
		SuperLike: superLike,
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "liker_id"}, {Name: "liked_id"}},
			DoNothing: true,
		}).
		Create(&like)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 0 {
		existing, err := r.FindLike(ctx, likerID, likedID)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	return &like, true, nil
}

// FindLike returns the like for the ordered pair, or nil when absent.
func (r *LikeRepository) FindLike(ctx context.Context, likerID, likedID uint64) (*db.Like, error) {
	var like db.Like
	err := r.db.WithContext(ctx).
		Where("liker_id = ? AND liked_id = ?", likerID, likedID).
		First(&like).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &like, nil
}

// DeleteLike removes the like for the ordered pair. No-op when absent.
func (r *LikeRepository) DeleteLike(ctx context.Context, likerID, likedID uint64) error {
	return r.db.WithContext(ctx).
		Where("liker_id = ? AND liked_id = ?", likerID, likedID).
		Delete(&db.Like{}).Error
}

// CountSuperLikesSince counts super likes sent by a user since the cutoff.
// Always re-queried from the table: the quota is a durable count, never a
// cached one.
func (r *LikeRepository) CountSuperLikesSince(ctx context.Context, likerID uint64, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Like{}).
		Where("liker_id = ? AND is_super_like = ? AND created_at >= ?", likerID, true, since).
		Count(&count).Error
	return count, err
}

// LikedIDs returns the ids of every user this user has liked. Used to build
// the discovery exclusion set.
func (r *LikeRepository) LikedIDs(ctx context.Context, likerID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&db.Like{}).
		Where("liker_id = ?", likerID).
		Pluck("liked_id", &ids).Error
	return ids, err
}

// GetLikers returns users who liked the given recipient, most recent first.
//
// Behavior:
//   - Ordered by created_at DESC, liker_id DESC.
//   - Supports cursor-based pagination via paginationToken.
func (r *LikeRepository) GetLikers(
	ctx context.Context,
	recipientID uint64,
	paginationToken *string,
	limit int,
) ([]db.Like, *string, error) {
	return r.likersQuery(ctx, recipientID, paginationToken, limit, false)
}

// GetNewLikers returns users who liked the recipient but have not been liked
// back yet, the "pending likes" feed.
//
// Behavior:
//   - Excludes mutual likes (recipient already liked them back).
//   - Ordered by created_at DESC, liker_id DESC with cursor pagination.
func (r *LikeRepository) GetNewLikers(
	ctx context.Context,
	recipientID uint64,
	paginationToken *string,
	limit int,
) ([]db.Like, *string, error) {
	return r.likersQuery(ctx, recipientID, paginationToken, limit, true)
}

func (r *LikeRepository) likersQuery(
	ctx context.Context,
	recipientID uint64,
	paginationToken *string,
	limit int,
	excludeMutual bool,
) ([]db.Like, *string, error) {
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Table("likes l").
		Where("l.liked_id = ?", recipientID).
		Order("l.created_at DESC, l.liker_id DESC").
		Limit(limit + 1)

	if excludeMutual {
		sub := r.db.
			Table("likes").
			Select("1").
			Where("liker_id = l.liked_id AND liked_id = l.liker_id")
		query = query.Where("NOT EXISTS (?)", sub)
	}

	if cursor.LikerID > 0 && cursor.CreatedUnix > 0 {
		ts := time.UnixMilli(cursor.CreatedUnix)
		query = query.Where(
			"(l.created_at < ? OR (l.created_at = ? AND l.liker_id < ?))",
			ts, ts, cursor.LikerID,
		)
	}

	var likes []db.Like
	if err := query.Find(&likes).Error; err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(likes) > limit {
		last := likes[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			LikerID:     last.LikerID,
			CreatedUnix: last.CreatedAt.UnixMilli(),
		})
		nextToken = &token
		likes = likes[:limit]
	}

	return likes, nextToken, nil
}

// CountLikers returns how many users liked the given recipient.
func (r *LikeRepository) CountLikers(ctx context.Context, recipientID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Like{}).
		Where("liked_id = ?", recipientID).
		Count(&count).Error
	return count, err
}

// CreatePass inserts a pass. Idempotent on the unique pair index.
func (r *LikeRepository) CreatePass(ctx context.Context, passerID, passedID uint64) (*db.Pass, error) {
	pass := db.Pass{PasserID: passerID, PassedID: passedID}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "passer_id"}, {Name: "passed_id"}},
			DoNothing: true,
		}).
		Create(&pass)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		var existing db.Pass
		if err := r.db.WithContext(ctx).
			Where("passer_id = ? AND passed_id = ?", passerID, passedID).
			First(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	}
	return &pass, nil
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
