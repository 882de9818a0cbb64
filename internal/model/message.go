// Package model defines the core conversation and scoring data types.
package model

import "time"

// Sender identifies who wrote a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Message is a single recorded chat message.
// A zero Timestamp means the stored timestamp was missing or malformed.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Sender         Sender    `json:"sender"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
}

// Conversation groups the messages of one chat session.
type Conversation struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id,omitempty"`
	SessionID    string    `json:"session_id,omitempty"`
	Title        string    `json:"title,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	MessageCount int       `json:"messages"`
}

// ValidSenders are the allowed message senders.
var ValidSenders = map[Sender]bool{
	SenderUser:      true,
	SenderAssistant: true,
}

// ParseSender maps a raw sender label onto a Sender. Anything that is not
// the user (the platform's assistant persona included) is the assistant.
func ParseSender(s string) Sender {
	if Sender(s) == SenderUser {
		return SenderUser
	}
	return SenderAssistant
}
