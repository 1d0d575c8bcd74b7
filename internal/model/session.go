package model

import (
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTitle is the placeholder title until one is derived from
// the first message.
const DefaultSessionTitle = "新しいチャット"

// Role represents the role of a message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatSession represents a titled conversation belonging to one user.
type ChatSession struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;index" json:"updated_at"`

	User *User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// TableName overrides the GORM table name.
func (ChatSession) TableName() string { return "chat_sessions" }

// Message represents a single turn in a chat session. Messages are
// immutable once written; creation order defines conversation order.
type Message struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID uuid.UUID `gorm:"type:uuid;not null;index" json:"session_id"`
	Role      Role      `gorm:"type:varchar(16);not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`

	Session *ChatSession `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// TableName overrides the GORM table name.
func (Message) TableName() string { return "messages" }

// SessionWithMessages is a session with its full message history.
type SessionWithMessages struct {
	ChatSession
	Messages []Message `json:"messages"`
}

// CreateSessionRequest is the request to create a new chat session.
type CreateSessionRequest struct {
	Title string `json:"title,omitempty"`
}

// UpdateSessionRequest is the request to rename a session.
type UpdateSessionRequest struct {
	Title string `json:"title"`
}

// SendMessageRequest is the request to send a chat message.
type SendMessageRequest struct {
	SessionID string `json:"session_id"`
	Content   string `json:"content"`
}

// SendMessageResponse carries the persisted user message and the
// assistant's reply.
type SendMessageResponse struct {
	UserMessage *Message `json:"user_message"`
	AIResponse  *Message `json:"ai_response"`
}
