package repository

import (
	"context"

	"github.com/bogdang40/DouaInimi/internal/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BlockRepository provides data access for directional blocks.
type BlockRepository struct {
	db *gorm.DB
}

// NewBlockRepository creates a new repository bound to the given DB connection.
func NewBlockRepository(database *gorm.DB) *BlockRepository {
	return &BlockRepository{db: database}
}

// Create inserts a block. Idempotent on the unique pair index; returns the
// existing row when the pair was already blocked.
func (r *BlockRepository) Create(ctx context.Context, blockerID, blockedID uint64) (*db.Block, bool, error) {
	block := db.Block{BlockerID: blockerID, BlockedID: blockedID}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "blocker_id"}, {Name: "blocked_id"}},
			DoNothing: true,
		}).
		Create(&block)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 0 {
		var existing db.Block
		if err := r.db.WithContext(ctx).
			Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
			First(&existing).Error; err != nil {
			return nil, false, err
		}
		return &existing, false, nil
	}
	return &block, true, nil
}

// Delete removes a block. Returns whether a row existed.
func (r *BlockRepository) Delete(ctx context.Context, blockerID, blockedID uint64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&db.Block{})
	return res.RowsAffected > 0, res.Error
}

// IsBlockedEither reports whether either user has blocked the other.
// Every interaction path (like, message, room join) consults this.
func (r *BlockRepository) IsBlockedEither(ctx context.Context, userA, userB uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Block{}).
		Where(
			"(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)",
			userA, userB, userB, userA,
		).
		Count(&count).Error
	return count > 0, err
}

// BlockedIDs returns the ids this user has blocked.
func (r *BlockRepository) BlockedIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&db.Block{}).
		Where("blocker_id = ?", userID).
		Pluck("blocked_id", &ids).Error
	return ids, err
}

// BlockerIDs returns the ids of users who have blocked this user.
func (r *BlockRepository) BlockerIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&db.Block{}).
		Where("blocked_id = ?", userID).
		Pluck("blocker_id", &ids).Error
	return ids, err
}
