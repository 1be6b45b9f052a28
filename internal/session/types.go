package session

import "time"

// CreateRequest defines payload for opening a new conversation.
type CreateRequest struct {
	Label string `json:"label"`
}

// CreateResponse returns created conversation metadata.
type CreateResponse struct {
	ConversationID  string    `json:"conversation_id"`
	Label           string    `json:"label,omitempty"`
	Status          Status    `json:"status"`
	StartedAt       time.Time `json:"started_at"`
	LastActivityAt  time.Time `json:"last_activity_at"`
	InactivityTTLMS int64     `json:"inactivity_ttl_ms"`
}
