package models

import "time"

// Conversation is a chat thread used as generation context. The learn
// engine only ever reads these tables.
type Conversation struct {
	ID        string `gorm:"primaryKey"`
	Title     string
	CreatedAt time.Time
}

type Message struct {
	ID             string `gorm:"primaryKey"`
	ConversationID string `gorm:"index"`
	Role           string // "user" or "assistant"
	Content        string
	CreatedAt      time.Time
}
