// Package session tracks live conversations and their lifecycle. Each
// conversation wraps its own dialogue state; the manager handles
// lookup, inactivity expiry, and end-of-life hooks.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ent0n29/greta/internal/dialogue"
)

var ErrNotFound = errors.New("conversation not found")

type Manager struct {
	mu                sync.RWMutex
	conversations     map[string]*Conversation
	inactivityTimeout time.Duration
	onExpire          func(Snapshot)
}

func NewManager(inactivityTimeout time.Duration) *Manager {
	if inactivityTimeout <= 0 {
		inactivityTimeout = 30 * time.Minute
	}
	return &Manager{
		conversations:     make(map[string]*Conversation),
		inactivityTimeout: inactivityTimeout,
	}
}

// SetExpireHook installs a callback run for each conversation the
// janitor expires. The hook runs outside the manager lock.
func (m *Manager) SetExpireHook(hook func(Snapshot)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpire = hook
}

func (m *Manager) Create(label string) *Conversation {
	now := time.Now().UTC()
	c := &Conversation{
		id:             uuid.NewString(),
		label:          label,
		status:         StatusActive,
		startedAt:      now,
		lastActivityAt: now,
		dialogue:       dialogue.NewManager(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.conversations[c.id] = c
	return c
}

func (m *Manager) Get(conversationID string) (*Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.conversations[conversationID]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

func (m *Manager) End(conversationID string) (Snapshot, error) {
	m.mu.Lock()
	c, ok := m.conversations[conversationID]
	m.mu.Unlock()
	if !ok {
		return Snapshot{}, ErrNotFound
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.endLocked(time.Now().UTC())
	return c.snapshotLocked(), nil
}

func (m *Manager) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.expireInactive()
			}
		}
	}()
}

func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, c := range m.conversations {
		c.mu.Lock()
		if c.status == StatusActive {
			count++
		}
		c.mu.Unlock()
	}
	return count
}

func (m *Manager) expireInactive() {
	now := time.Now().UTC()
	var expired []Snapshot

	m.mu.Lock()
	for id, c := range m.conversations {
		c.mu.Lock()
		if c.status == StatusActive && now.Sub(c.lastActivityAt) >= m.inactivityTimeout {
			c.endLocked(now)
			expired = append(expired, c.snapshotLocked())
		}
		ended := c.status == StatusEnded
		c.mu.Unlock()
		if ended {
			delete(m.conversations, id)
		}
	}
	hook := m.onExpire
	m.mu.Unlock()

	if hook != nil {
		for _, snap := range expired {
			hook(snap)
		}
	}
}
