// Package dialogue holds the cross-turn conversational context of a single
// conversation and resolves anaphoric references ("there", "that one")
// against it.
package dialogue

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ent0n29/greta/internal/nlu"
)

// Turn records one request/response exchange.
type Turn struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	RawText   string            `json:"raw_text"`
	Parsed    nlu.ParsedRequest `json:"parsed"`
	Response  string            `json:"response"`
}

// State is the conversational memory consulted during reference
// resolution. Empty fields mean "nothing remembered yet".
type State struct {
	LastLocation      string     `json:"last_location,omitempty"`
	LastDay           string     `json:"last_day,omitempty"`
	LastAppointmentID string     `json:"last_appointment_id,omitempty"`
	LastIntent        nlu.Intent `json:"last_intent,omitempty"`
}

// Manager owns the context and history of exactly one conversation. It is
// not safe for concurrent use; the session layer serializes turns per
// conversation, so no locking happens here.
type Manager struct {
	state   State
	history []Turn
}

func NewManager() *Manager {
	return &Manager{}
}

// ResolveReferences fills entity gaps in parsed from remembered context.
// It scans the raw text case-insensitively for anaphoric cues and only ever
// fills absent entities, so a second call is a no-op.
func (m *Manager) ResolveReferences(parsed nlu.ParsedRequest) nlu.ParsedRequest {
	lower := strings.ToLower(parsed.RawText)
	ent := &parsed.Entities

	if ent.Location == "" && m.state.LastLocation != "" {
		switch {
		case strings.Contains(lower, "there"), strings.Contains(lower, "that place"):
			ent.Location = m.state.LastLocation
		case strings.Contains(lower, "rain") &&
			(strings.Contains(lower, "it") || strings.Contains(lower, "that")):
			ent.Location = m.state.LastLocation
		}
	}

	if ent.AppointmentID == "" && m.state.LastAppointmentID != "" &&
		strings.Contains(lower, "appointment") &&
		(strings.Contains(lower, "previous") || strings.Contains(lower, "that") || strings.Contains(lower, "it")) {
		ent.AppointmentID = m.state.LastAppointmentID
	}

	return parsed
}

// RecordTurn appends the exchange to history and refreshes the context
// fields from the resolved parse. History grows without bound; the process
// is the cap. The returned Turn carries the assigned id and timestamp.
func (m *Manager) RecordTurn(rawText string, parsed nlu.ParsedRequest, response string) Turn {
	turn := Turn{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		RawText:   rawText,
		Parsed:    parsed,
		Response:  response,
	}
	m.history = append(m.history, turn)

	if loc := parsed.Entities.Location; loc != "" {
		m.state.LastLocation = loc
	}
	if day := parsed.Entities.Day; day != "" {
		m.state.LastDay = day
	}
	// Every parse yields an intent, unknown included.
	m.state.LastIntent = parsed.Intent

	return turn
}

// SetLastAppointmentID remembers the id of the appointment a handler just
// created or updated. This is the only way the id enters context; it is
// never lifted from entities, so an id mentioned in passing cannot pollute
// later resolutions.
func (m *Manager) SetLastAppointmentID(id string) {
	m.state.LastAppointmentID = id
}

func (m *Manager) LastLocation() string { return m.state.LastLocation }

func (m *Manager) LastDay() string { return m.state.LastDay }

func (m *Manager) LastAppointmentID() string { return m.state.LastAppointmentID }

func (m *Manager) LastIntent() nlu.Intent { return m.state.LastIntent }

// History returns the last n turns in chronological order, or all of them
// when n is zero or exceeds the recorded count.
func (m *Manager) History(n int) []Turn {
	if len(m.history) == 0 {
		return nil
	}
	if n <= 0 || n > len(m.history) {
		n = len(m.history)
	}
	out := make([]Turn, n)
	copy(out, m.history[len(m.history)-n:])
	return out
}

// Clear drops both history and context. This is the only way state is
// destroyed before the conversation ends.
func (m *Manager) Clear() {
	m.state = State{}
	m.history = nil
}
