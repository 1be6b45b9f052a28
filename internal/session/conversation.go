package session

import (
	"errors"
	"sync"
	"time"

	"github.com/ent0n29/greta/internal/dialogue"
)

type Status string

const (
	StatusActive Status = "active"
	StatusEnded  Status = "ended"
)

// ErrEnded is returned when a turn arrives for a conversation that has
// already been closed or expired.
var ErrEnded = errors.New("conversation ended")

// Conversation is one user's running exchange with the assistant. It
// owns the dialogue state and serializes access to it: the dialogue
// manager itself is not safe for concurrent use, so every reader and
// writer goes through the conversation's lock.
type Conversation struct {
	mu             sync.Mutex
	id             string
	label          string
	status         Status
	turnCount      int
	startedAt      time.Time
	lastActivityAt time.Time
	dialogue       *dialogue.Manager
}

// Snapshot is a point-in-time copy of a conversation's metadata, safe
// to hand out across the API.
type Snapshot struct {
	ID             string    `json:"conversation_id"`
	Label          string    `json:"label,omitempty"`
	Status         Status    `json:"status"`
	TurnCount      int       `json:"turn_count"`
	StartedAt      time.Time `json:"started_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

func (c *Conversation) ID() string { return c.id }

func (c *Conversation) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Conversation) snapshotLocked() Snapshot {
	return Snapshot{
		ID:             c.id,
		Label:          c.label,
		Status:         c.status,
		TurnCount:      c.turnCount,
		StartedAt:      c.startedAt,
		LastActivityAt: c.lastActivityAt,
	}
}

// WithTurn runs fn with exclusive access to the dialogue state and
// counts the exchange as activity. It refuses ended conversations.
func (c *Conversation) WithTurn(fn func(dm *dialogue.Manager) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusActive {
		return ErrEnded
	}
	if err := fn(c.dialogue); err != nil {
		return err
	}
	c.turnCount++
	c.lastActivityAt = time.Now().UTC()
	return nil
}

// WithDialogue runs fn with exclusive read access to the dialogue
// state without counting activity. Ended conversations may still be
// inspected.
func (c *Conversation) WithDialogue(fn func(dm *dialogue.Manager)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.dialogue)
}

func (c *Conversation) endLocked(now time.Time) {
	c.status = StatusEnded
	c.lastActivityAt = now
}
