package events

import (
	"time"
)

// Event types emitted by the core write paths.
const (
	TypeMatchCreated = "match_created"
	TypeMessageSent  = "message_sent"
)

// Event is the envelope published on the outbound bus. Consumers (email
// notifier, kafka mirror) run outside the triggering write: publishing can
// never block or fail a match/message creation.
type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`

	MatchCreated *MatchCreated `json:"match_created,omitempty"`
	MessageSent  *MessageSent  `json:"message_sent,omitempty"`
}

// MatchCreated fires exactly when a new match row is inserted. It does not
// fire on the idempotent existing-row path.
type MatchCreated struct {
	MatchID uint64 `json:"match_id"`
	User1ID uint64 `json:"user1_id"`
	User2ID uint64 `json:"user2_id"`
}

// MessageSent fires after a message is durably persisted.
type MessageSent struct {
	MatchID     uint64 `json:"match_id"`
	MessageID   uint64 `json:"message_id"`
	SenderID    uint64 `json:"sender_id"`
	RecipientID uint64 `json:"recipient_id"`
	Preview     string `json:"preview"`
}

// Publisher is what the core services see. Implementations must be
// fire-and-forget: errors are swallowed and logged by the implementation.
type Publisher interface {
	Publish(ev Event)
}

// NopPublisher discards events. Used in tests and when no consumers are wired.
type NopPublisher struct{}

func (NopPublisher) Publish(Event) {}

// NewMatchCreated builds a MatchCreated envelope.
func NewMatchCreated(matchID, user1ID, user2ID uint64) Event {
	return Event{
		Type:       TypeMatchCreated,
		OccurredAt: time.Now().UTC(),
		MatchCreated: &MatchCreated{
			MatchID: matchID,
			User1ID: user1ID,
			User2ID: user2ID,
		},
	}
}

// NewMessageSent builds a MessageSent envelope. Preview is capped to 100
// runes the way the notification email expects it.
func NewMessageSent(matchID, messageID, senderID, recipientID uint64, content string) Event {
	preview := content
	if runes := []rune(preview); len(runes) > 100 {
		preview = string(runes[:100]) + "..."
	}
	return Event{
		Type:       TypeMessageSent,
		OccurredAt: time.Now().UTC(),
		MessageSent: &MessageSent{
			MatchID:     matchID,
			MessageID:   messageID,
			SenderID:    senderID,
			RecipientID: recipientID,
			Preview:     preview,
		},
	}
}
