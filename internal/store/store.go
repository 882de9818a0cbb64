// Package store provides the conversation storage interface and SQLite implementation.
package store

import (
	"context"

	"github.com/rcliao/eunoia-signals/internal/model"
)

// ConversationParams holds parameters for creating a conversation.
type ConversationParams struct {
	ID        string // generated when empty
	UserID    string
	SessionID string
	Title     string
}

// MessageParams holds parameters for storing a message.
type MessageParams struct {
	ConversationID string
	ID             string // generated when empty
	Sender         model.Sender
	Content        string
	// Timestamp is stored as given. Values that do not parse read back as
	// the zero time.
	Timestamp string
}

// MessagesParams holds parameters for reading the messages of a conversation.
type MessagesParams struct {
	ConversationID string
	Sender         model.Sender // empty means every sender
	Limit          int          // 0 means no limit
}

// ListParams holds parameters for listing conversations.
type ListParams struct {
	UserID string
	Limit  int
}

// RmParams holds parameters for deleting a conversation.
type RmParams struct {
	ConversationID string
}

// Store defines the conversation storage interface.
type Store interface {
	// EnsureConversation returns the conversation with p.ID, creating it
	// if needed.
	EnsureConversation(ctx context.Context, p ConversationParams) (*model.Conversation, error)

	// AddMessage stores a message. Returns the stored message and whether
	// it was new; a message with an existing id is left untouched.
	AddMessage(ctx context.Context, p MessageParams) (*model.Message, bool, error)

	// Messages returns the messages of a conversation in insertion order.
	Messages(ctx context.Context, p MessagesParams) ([]model.Message, error)

	// ListConversations lists conversations, newest first.
	ListConversations(ctx context.Context, p ListParams) ([]model.Conversation, error)

	// Rm deletes a conversation with its messages and assessments.
	Rm(ctx context.Context, p RmParams) error

	// Close closes the store.
	Close() error
}
