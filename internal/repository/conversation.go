package repository

import (
	"context"
	"time"

	"staffingapi/internal/model"
)

// NewConversation carries everything needed to open a conversation with its first message.
type NewConversation struct {
	CreatedBy      string
	ParticipantIDs []string
	ContextType    string
	ContextID      *string
	InitialMessage string
	SentAt         time.Time
}

// ConversationRepository defines data access for conversations and their participants.
// Missing rows are reported as sql.ErrNoRows.
type ConversationRepository interface {
	// ListForUser returns a page of conversations the user participates in,
	// most recently active first, with the total count.
	ListForUser(ctx context.Context, userID string, pq PageQuery) (*PageResult[model.Conversation], error)

	// Participants returns participants of the given conversations joined with their profiles.
	Participants(ctx context.Context, conversationIDs []string) ([]model.Participant, error)

	// LatestMessages returns at most one message per conversation: the newest.
	LatestMessages(ctx context.Context, conversationIDs []string) ([]model.Message, error)

	// MessageStamps returns the creation time of every live message in the given conversations.
	MessageStamps(ctx context.Context, conversationIDs []string) ([]model.MessageStamp, error)

	// FindBetween returns the id of a conversation both users participate in.
	FindBetween(ctx context.Context, userA, userB string) (string, error)

	// Create opens a conversation through the create_conversation_with_participants
	// procedure and inserts the first message in the same transaction.
	Create(ctx context.Context, nc NewConversation) (*model.Conversation, *model.Message, error)

	// FindForUser returns the conversation only when userID participates in it.
	FindForUser(ctx context.Context, id, userID string) (*model.Conversation, error)

	// MarkRead sets the participant's last_read_at.
	MarkRead(ctx context.Context, id, userID string, at time.Time) error
}

// MessageRepository defines data access for messages.
type MessageRepository interface {
	// ListByConversation returns messages oldest first.
	ListByConversation(ctx context.Context, conversationID string, pq PageQuery) (*PageResult[model.Message], error)

	// Create inserts the message, bumps the conversation's last_message_at and
	// marks the conversation read for the sender.
	Create(ctx context.Context, msg *model.Message) (*model.Message, error)

	// UnreadTotal counts unread messages across all of the user's conversations.
	UnreadTotal(ctx context.Context, userID string) (int, error)
}
