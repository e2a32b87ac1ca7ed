package models

import (
	"strings"
	"time"
)

// Message represents a single message inside a conversation.
type Message struct {
	ID             int       `db:"id" json:"id"`
	ConversationID int       `db:"conversation_id" json:"conversation_id"`
	SenderKind     ActorKind `db:"sender_kind" json:"sender_kind"`
	SenderID       int       `db:"sender_id" json:"sender_id"`
	Content        string    `db:"content" json:"content"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Sender returns the sending actor.
func (m Message) Sender() Actor {
	return Actor{Kind: m.SenderKind, ID: m.SenderID}
}

// NormalizeText collapses CRLF and bare CR line endings to LF and trims
// surrounding whitespace. An empty result means the message must be rejected.
func NormalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.TrimSpace(s)
}

// ConversationEvent is broadcasted through websockets to conversation rooms.
type ConversationEvent struct {
	Type      string   `json:"type"`
	Message   *Message `json:"message,omitempty"`
	MessageID int      `json:"message_id,omitempty"`
}
