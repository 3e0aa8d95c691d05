package repository

import (
	"context"
	"time"

	"github.com/bogdang40/DouaInimi/internal/db"

	"gorm.io/gorm"
)

// MessageRepository provides data access for the per-match message log.
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new repository bound to the given DB connection.
func NewMessageRepository(database *gorm.DB) *MessageRepository {
	return &MessageRepository{db: database}
}

// Create appends a message to a match. Content is expected to be sanitized
// by the caller; this layer only persists.
func (r *MessageRepository) Create(ctx context.Context, matchID, senderID uint64, content string) (*db.Message, error) {
	msg := db.Message{
		MatchID:  matchID,
		SenderID: senderID,
		Content:  content,
	}
	if err := r.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// FindByID returns a message by id, or nil when absent.
func (r *MessageRepository) FindByID(ctx context.Context, messageID uint64) (*db.Message, error) {
	var msg db.Message
	err := r.db.WithContext(ctx).First(&msg, messageID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// Conversation returns the messages visible to viewerID, chronological.
//
// Behavior:
//   - Excludes messages the viewer soft-deleted: own messages are hidden by
//     deleted_by_sender, the counterpart's by deleted_by_receiver.
//   - beforeID > 0 pages backward from that message id.
//   - Fetched newest-first with the limit applied, then reversed so the
//     caller always receives chronological order.
func (r *MessageRepository) Conversation(
	ctx context.Context,
	matchID, viewerID uint64,
	limit int,
	beforeID uint64,
) ([]db.Message, error) {
	query := r.db.WithContext(ctx).
		Where("match_id = ?", matchID).
		Where(
			"((sender_id = ? AND deleted_by_sender = ?) OR (sender_id != ? AND deleted_by_receiver = ?))",
			viewerID, false, viewerID, false,
		)

	if beforeID > 0 {
		query = query.Where("id < ?", beforeID)
	}

	var messages []db.Message
	if err := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, err
	}

	// reverse into chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// MarkConversationRead marks every unread message addressed to readerID in
// the match. Idempotent: already-read rows are excluded by the predicate.
func (r *MessageRepository) MarkConversationRead(ctx context.Context, matchID, readerID uint64) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&db.Message{}).
		Where("match_id = ? AND sender_id != ? AND is_read = ?", matchID, readerID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": now,
		}).Error
}

// UnreadCount counts messages in the match not sent by userID and not read.
func (r *MessageRepository) UnreadCount(ctx context.Context, matchID, userID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Message{}).
		Where("match_id = ? AND sender_id != ? AND is_read = ?", matchID, userID, false).
		Count(&count).Error
	return count, err
}

// SetDeletedFlag soft-deletes the message for one viewer side. Rows are
// never physically removed; the flags only shape the read projection.
func (r *MessageRepository) SetDeletedFlag(ctx context.Context, messageID uint64, senderSide bool) error {
	column := "deleted_by_receiver"
	if senderSide {
		column = "deleted_by_sender"
	}
	return r.db.WithContext(ctx).
		Model(&db.Message{}).
		Where("id = ?", messageID).
		Update(column, true).Error
}
