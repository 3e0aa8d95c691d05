// Package chat implements the conversation store: the ordered message log
// of a match, read state and per-viewer soft delete.
package chat

import (
	"context"

	"github.com/bogdang40/DouaInimi/internal/app"
	"github.com/bogdang40/DouaInimi/internal/apperr"
	"github.com/bogdang40/DouaInimi/internal/db"
	"github.com/bogdang40/DouaInimi/internal/events"
	"github.com/bogdang40/DouaInimi/internal/logger"
	"github.com/bogdang40/DouaInimi/internal/repository"
	"github.com/bogdang40/DouaInimi/internal/sanitize"
	"github.com/bogdang40/DouaInimi/internal/service/matches"
)

const defaultConversationLimit = 50

// Service contains the business logic on top of the message repository.
type Service struct {
	appCtx      *app.AppContext
	messageRepo *repository.MessageRepository
	matchRepo   *repository.MatchRepository
	blockRepo   *repository.BlockRepository
}

// NewService creates a chat service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:      appCtx,
		messageRepo: repository.NewMessageRepository(appCtx.DB),
		matchRepo:   repository.NewMatchRepository(appCtx.DB),
		blockRepo:   repository.NewBlockRepository(appCtx.DB),
	}
}

// authorize loads the match and verifies userID is a participant. The
// failure is logged as a security event and the returned error is generic:
// it must not reveal whether the match exists.
func (s *Service) authorize(ctx context.Context, matchID, userID uint64, event string) (*db.Match, error) {
	match, err := s.matchRepo.FindByID(ctx, matchID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load match", err)
	}
	if match == nil || !matches.IsParticipant(match, userID) {
		logger.Security(event, "match_id", matchID, "user_id", userID)
		return nil, apperr.Unauthorized()
	}
	return match, nil
}

// SendMessage validates, sanitizes and persists a message, then publishes a
// MessageSent event.
//
// Behavior:
//   - senderID must be a participant of an active match, and neither side
//     may have blocked the other. Violations are authorization errors.
//   - Content passes the sanitizer as a hard gate before storage.
//   - The MessageSent event feeds the notifier (which suppresses the email
//     when the recipient is online); event failures never affect persistence.
func (s *Service) SendMessage(ctx context.Context, matchID, senderID uint64, content string) (*db.Message, error) {
	match, err := s.authorize(ctx, matchID, senderID, "unauthorized_message_attempt")
	if err != nil {
		return nil, err
	}
	if !match.Active {
		return nil, apperr.Denied("conversation is no longer active")
	}

	recipientID, err := matches.OtherParticipant(match, senderID)
	if err != nil {
		return nil, err
	}

	blocked, err := s.blockRepo.IsBlockedEither(ctx, senderID, recipientID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to check blocks", err)
	}
	if blocked {
		return nil, apperr.Denied("cannot send message")
	}

	clean, err := sanitize.ValidateMessage(content, s.appCtx.Config.Limits.MaxMessageLength)
	if err != nil {
		return nil, err
	}

	msg, err := s.messageRepo.Create(ctx, matchID, senderID, clean)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to persist message", err)
	}

	s.appCtx.Events.Publish(events.NewMessageSent(matchID, msg.ID, senderID, recipientID, clean))

	return msg, nil
}

// GetConversation returns the messages of a match visible to viewerID, in
// chronological order, paginated backward from beforeID when non-zero.
func (s *Service) GetConversation(ctx context.Context, matchID, viewerID uint64, limit int, beforeID uint64) ([]db.Message, error) {
	if _, err := s.authorize(ctx, matchID, viewerID, "unauthorized_conversation_read"); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = defaultConversationLimit
	}
	msgs, err := s.messageRepo.Conversation(ctx, matchID, viewerID, limit, beforeID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load conversation", err)
	}
	return msgs, nil
}

// MarkRead marks all messages addressed to readerID in the match as read.
// Idempotent.
func (s *Service) MarkRead(ctx context.Context, matchID, readerID uint64) error {
	if _, err := s.authorize(ctx, matchID, readerID, "unauthorized_mark_read"); err != nil {
		return err
	}
	if err := s.messageRepo.MarkConversationRead(ctx, matchID, readerID); err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to mark read", err)
	}
	return nil
}

// UnreadCount counts unread messages addressed to userID in the match.
func (s *Service) UnreadCount(ctx context.Context, matchID, userID uint64) (int64, error) {
	if _, err := s.authorize(ctx, matchID, userID, "unauthorized_unread_count"); err != nil {
		return 0, err
	}
	count, err := s.messageRepo.UnreadCount(ctx, matchID, userID)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindInternal, "failed to count unread", err)
	}
	return count, nil
}

// SoftDelete hides a message from byUserID's view. The physical row stays;
// the flag set depends on which side of the message the caller is.
func (s *Service) SoftDelete(ctx context.Context, messageID, byUserID uint64) error {
	msg, err := s.messageRepo.FindByID(ctx, messageID)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to load message", err)
	}
	if msg == nil {
		logger.Security("unauthorized_message_delete", "message_id", messageID, "user_id", byUserID)
		return apperr.Unauthorized()
	}
	if _, err := s.authorize(ctx, msg.MatchID, byUserID, "unauthorized_message_delete"); err != nil {
		return err
	}
	senderSide := msg.SenderID == byUserID
	if err := s.messageRepo.SetDeletedFlag(ctx, messageID, senderSide); err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to delete message", err)
	}
	return nil
}
