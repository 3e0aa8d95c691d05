package repository

import (
	"context"
	"time"

	"github.com/bogdang40/DouaInimi/internal/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MatchRepository provides data access for the Match registry.
type MatchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates a new repository bound to the given DB connection.
func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// MatchSummary is one row of the inbox view: a match annotated with its most
// recent message and the unread count addressed to the querying user.
type MatchSummary struct {
	Match       db.Match
	LastMessage *db.Message
	UnreadCount int64
}

// canonicalPair orders two user ids so user1 < user2, matching the check
// constraint on the matches table.
func canonicalPair(a, b uint64) (uint64, uint64) {
	if a < b {
		return a, b
	}
	return b, a
}

// Create inserts the match for the canonical pair.
//
// Behavior:
//   - Canonicalizes so user1_id < user2_id before insert.
//   - Idempotent: when a row for the pair already exists (active or not) the
//     existing row is returned unchanged and created=false. Inactive rows are
//     never reactivated.
//   - Safe under concurrent calls for the same pair: the unique index decides
//     the winner, the loser gets the existing row.
func (r *MatchRepository) Create(ctx context.Context, userA, userB uint64) (*db.Match, bool, error) {
	user1, user2 := canonicalPair(userA, userB)

	match := db.Match{
		User1ID: user1,
		User2ID: user2,
		Active:  true,
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user1_id"}, {Name: "user2_id"}},
			DoNothing: true,
		}).
		Create(&match)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 0 {
		existing, err := r.FindByPair(ctx, user1, user2)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	return &match, true, nil
}

// FindByPair returns the row for the canonical pair regardless of its active
// flag, or nil when the pair never matched.
func (r *MatchRepository) FindByPair(ctx context.Context, userA, userB uint64) (*db.Match, error) {
	user1, user2 := canonicalPair(userA, userB)

	var match db.Match
	err := r.db.WithContext(ctx).
		Where("user1_id = ? AND user2_id = ?", user1, user2).
		First(&match).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// FindActiveByPair returns the active match for the canonical pair, or nil.
func (r *MatchRepository) FindActiveByPair(ctx context.Context, userA, userB uint64) (*db.Match, error) {
	user1, user2 := canonicalPair(userA, userB)

	var match db.Match
	err := r.db.WithContext(ctx).
		Where("user1_id = ? AND user2_id = ? AND is_active = ?", user1, user2, true).
		First(&match).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// FindByID returns a match by id, or nil when absent.
func (r *MatchRepository) FindByID(ctx context.Context, matchID uint64) (*db.Match, error) {
	var match db.Match
	err := r.db.WithContext(ctx).First(&match, matchID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// ListActiveForUser returns all active matches involving the user, most
// recent first.
func (r *MatchRepository) ListActiveForUser(ctx context.Context, userID uint64) ([]db.Match, error) {
	var matches []db.Match
	err := r.db.WithContext(ctx).
		Where("(user1_id = ? OR user2_id = ?) AND is_active = ?", userID, userID, true).
		Order("matched_at DESC").
		Find(&matches).Error
	return matches, err
}

// ListWithActivity returns the user's active matches annotated with last
// message and unread count.
//
// Behavior:
//   - Aggregate subqueries joined in one statement, plus a single IN fetch
//     for the last-message bodies: three round trips total regardless of how
//     many matches the user has. Never one query per match.
func (r *MatchRepository) ListWithActivity(ctx context.Context, userID uint64) ([]MatchSummary, error) {
	type row struct {
		db.Match
		LastMessageID *uint64
		UnreadCount   int64
	}

	lastMsgSub := r.db.
		Table("messages").
		Select("match_id, MAX(id) AS last_message_id").
		Group("match_id")

	unreadSub := r.db.
		Table("messages").
		Select("match_id, COUNT(id) AS unread_count").
		Where("sender_id != ? AND is_read = ?", userID, false).
		Group("match_id")

	var rows []row
	err := r.db.WithContext(ctx).
		Table("matches").
		Select("matches.*, lm.last_message_id, COALESCE(un.unread_count, 0) AS unread_count").
		Joins("LEFT JOIN (?) lm ON lm.match_id = matches.id", lastMsgSub).
		Joins("LEFT JOIN (?) un ON un.match_id = matches.id", unreadSub).
		Where("(matches.user1_id = ? OR matches.user2_id = ?) AND matches.is_active = ?", userID, userID, true).
		Order("matches.matched_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	// one fetch for all last-message bodies
	var ids []uint64
	for _, r := range rows {
		if r.LastMessageID != nil {
			ids = append(ids, *r.LastMessageID)
		}
	}
	lastByID := make(map[uint64]db.Message, len(ids))
	if len(ids) > 0 {
		var msgs []db.Message
		if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&msgs).Error; err != nil {
			return nil, err
		}
		for _, m := range msgs {
			lastByID[m.ID] = m
		}
	}

	summaries := make([]MatchSummary, 0, len(rows))
	for _, r := range rows {
		s := MatchSummary{Match: r.Match, UnreadCount: r.UnreadCount}
		if r.LastMessageID != nil {
			if m, ok := lastByID[*r.LastMessageID]; ok {
				msg := m
				s.LastMessage = &msg
			}
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// Deactivate unmatches. Terminal: there is no reactivation path.
func (r *MatchRepository) Deactivate(ctx context.Context, matchID, byUserID uint64) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&db.Match{}).
		Where("id = ? AND is_active = ?", matchID, true).
		Updates(map[string]interface{}{
			"is_active":    false,
			"unmatched_by": byUserID,
			"unmatched_at": now,
		}).Error
}
