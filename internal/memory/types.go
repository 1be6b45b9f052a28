package memory

import (
	"context"
	"time"
)

// TurnRecord is one archived exchange: what the user said, what the
// parser made of it, and what the assistant answered.
type TurnRecord struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	UserText       string    `json:"user_text"`
	Intent         string    `json:"intent"`
	Entities       string    `json:"entities"`
	Response       string    `json:"response"`
	Redacted       bool      `json:"redacted"`
	CreatedAt      time.Time `json:"created_at"`
}

// Store archives conversation transcripts.
type Store interface {
	SaveTurn(ctx context.Context, record TurnRecord) error
	RecentTranscript(ctx context.Context, conversationID string, limit int) ([]TurnRecord, error)
	Close() error
}
