package store

import "time"

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Chat represents a conversation thread belonging to one user.
// At most one chat per user is active at any time.
type Chat struct {
	ID        int64
	UserID    int64
	Title     string
	CreatedAt time.Time
	Active    bool
}

// Message represents a single turn of a chat. Messages are append-only.
type Message struct {
	ID        int64
	ChatID    int64
	Role      string
	Content   string
	CreatedAt time.Time
}
