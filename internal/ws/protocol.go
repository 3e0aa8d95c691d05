// Package ws is the realtime gateway: websocket connections, conversation
// rooms and event fan-out for chat.
package ws

import (
	"encoding/json"
	"time"
)

// Client-to-server event names.
const (
	EvJoinConversation  = "join_conversation"
	EvLeaveConversation = "leave_conversation"
	EvSendMessage       = "send_message"
	EvMarkRead          = "mark_read"
	EvTyping            = "typing"
)

// Server-to-client event names.
const (
	EvJoined       = "joined"
	EvNewMessage   = "new_message"
	EvMessagesRead = "messages_read"
	EvUserTyping   = "user_typing"
	EvError        = "error"
)

// Envelope is the frame exchanged in both directions. Data is decoded per
// event type.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// clientFrame covers every field a client event can carry.
type clientFrame struct {
	MatchID uint64 `json:"match_id"`
	Content string `json:"content"`
	Typing  bool   `json:"typing"`
}

// MessagePayload is the new_message broadcast body.
type MessagePayload struct {
	MatchID   uint64    `json:"match_id"`
	MessageID uint64    `json:"message_id"`
	SenderID  uint64    `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ReadPayload is the messages_read broadcast body.
type ReadPayload struct {
	MatchID  uint64 `json:"match_id"`
	ReaderID uint64 `json:"reader_id"`
}

// TypingPayload is the user_typing broadcast body.
type TypingPayload struct {
	MatchID uint64 `json:"match_id"`
	UserID  uint64 `json:"user_id"`
	Typing  bool   `json:"typing"`
}

// ErrorPayload is sent to a single client when its event is rejected.
type ErrorPayload struct {
	Message string `json:"message"`
}

func serverEvent(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}
