package model

import (
	"time"
)

// Metadata is the open key/value bag attached to chats and messages. It must
// marshal to a JSON object; values may be arbitrarily nested JSON types.
// Numbers decode as float64, per encoding/json.
type Metadata map[string]any

// Chat stores metadata about a conversation.
type Chat struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Metadata  Metadata  `json:"metadata"`
}

// Message stores a single message in a chat. ID is derived from the insertion
// time in milliseconds and orders messages within their chat; it is unique per
// (chat_id, id), not globally.
type Message struct {
	ID        int64     `json:"id"`
	ChatID    string    `json:"chat_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Metadata  Metadata  `json:"metadata"`
}
