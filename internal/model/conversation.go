package model

import "time"

// Conversation context types.
const (
	ContextAgencyInquiry = "agency_inquiry"
	ContextJobInquiry    = "job_inquiry"
	ContextGeneral       = "general"
)

// PreviewLength is the maximum number of characters in a message preview.
const PreviewLength = 200

// Conversation is a message thread between two or more profiles.
// Participants, LastMessage and UnreadCount are assembled per request for the caller.
type Conversation struct {
	ID            string          `json:"id"`
	ContextType   string          `json:"context_type"`
	ContextID     *string         `json:"context_id"`
	CreatedBy     string          `json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	LastMessageAt *time.Time      `json:"last_message_at"`
	Participants  []Participant   `json:"participants"`
	LastMessage   *MessagePreview `json:"last_message"`
	UnreadCount   int             `json:"unread_count"`
}

// Participant is a member of a conversation joined with its profile.
type Participant struct {
	ConversationID string     `json:"-"`
	UserID         string     `json:"user_id"`
	JoinedAt       time.Time  `json:"joined_at"`
	LastReadAt     *time.Time `json:"last_read_at"`
	FullName       string     `json:"full_name"`
	Email          string     `json:"email"`
	Role           string     `json:"role"`
}

// Message is a single message in a conversation.
type Message struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversation_id"`
	SenderID       string     `json:"sender_id"`
	Content        string     `json:"content"`
	CreatedAt      time.Time  `json:"created_at"`
	EditedAt       *time.Time `json:"edited_at,omitempty"`
}

// MessagePreview is the latest message of a conversation with truncated content.
type MessagePreview struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// MessageStamp is the minimal projection of a message used for unread counting.
type MessageStamp struct {
	ConversationID string
	CreatedAt      time.Time
}

// TruncatePreview cuts s to at most PreviewLength characters.
func TruncatePreview(s string) string {
	r := []rune(s)
	if len(r) <= PreviewLength {
		return s
	}
	return string(r[:PreviewLength])
}

// Preview builds the preview of m.
func (m Message) Preview() *MessagePreview {
	return &MessagePreview{
		ID:        m.ID,
		SenderID:  m.SenderID,
		Content:   TruncatePreview(m.Content),
		CreatedAt: m.CreatedAt,
	}
}
