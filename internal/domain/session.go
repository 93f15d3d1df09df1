package domain

import "time"

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a conversation history.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// SessionInfo is a read-only view of a stored conversation.
type SessionInfo struct {
	ID           string
	MessageCount int
	State        CallState
	LastActivity time.Time
}
