package chat

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"learnloom/backend/generation"
	"learnloom/backend/models"
)

// Store gives the learn engine read-only access to conversation
// history for use as generation context. It never writes.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Recent returns the newest conversations with their messages in
// chronological order.
func (s *Store) Recent(ctx context.Context, limit int) ([]generation.Conversation, error) {
	if limit <= 0 {
		limit = 10
	}

	var convs []models.Conversation
	if err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&convs).Error; err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	out := make([]generation.Conversation, 0, len(convs))
	for _, c := range convs {
		conv, err := s.conversation(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, conv)
	}
	return out, nil
}

// Conversation returns a single conversation with its messages.
func (s *Store) Conversation(ctx context.Context, id string) (generation.Conversation, error) {
	var conv models.Conversation
	if err := s.db.WithContext(ctx).First(&conv, "id = ?", id).Error; err != nil {
		return generation.Conversation{}, fmt.Errorf("find conversation %s: %w", id, err)
	}
	return s.conversation(ctx, conv.ID)
}

func (s *Store) conversation(ctx context.Context, id string) (generation.Conversation, error) {
	var msgs []models.Message
	if err := s.db.WithContext(ctx).Where("conversation_id = ?", id).
		Order("created_at ASC").Find(&msgs).Error; err != nil {
		return generation.Conversation{}, fmt.Errorf("list messages for %s: %w", id, err)
	}

	conv := generation.Conversation{ID: id, Messages: make([]generation.Message, 0, len(msgs))}
	for _, m := range msgs {
		conv.Messages = append(conv.Messages, generation.Message{Role: m.Role, Content: m.Content})
	}
	return conv, nil
}
