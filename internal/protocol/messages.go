// Package protocol defines the websocket wire format between clients
// and the assistant service.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ent0n29/greta/internal/nlu"
)

// MessageType identifies websocket payload variants.
type MessageType string

const (
	TypeUserText       MessageType = "user_text"
	TypeClientControl  MessageType = "client_control"
	TypeAssistantReply MessageType = "assistant_reply"
	TypeSystemEvent    MessageType = "system_event"
	TypeErrorEvent     MessageType = "error_event"
)

var ErrUnsupportedType = errors.New("unsupported message type")

type Envelope struct {
	Type MessageType `json:"type"`
}

// UserText is one user utterance sent over the socket.
type UserText struct {
	Type           MessageType `json:"type"`
	ConversationID string      `json:"conversation_id"`
	Text           string      `json:"text"`
	TSMs           int64       `json:"ts_ms"`
}

// ClientControl carries conversation-level commands such as
// "clear_context" and "end".
type ClientControl struct {
	Type           MessageType `json:"type"`
	ConversationID string      `json:"conversation_id"`
	Action         string      `json:"action"`
}

// AssistantReply is the assistant's answer to one UserText, with the
// classified intent and resolved entities alongside the response text.
type AssistantReply struct {
	Type           MessageType  `json:"type"`
	ConversationID string       `json:"conversation_id"`
	TurnID         string       `json:"turn_id"`
	Intent         nlu.Intent   `json:"intent"`
	Entities       nlu.Entities `json:"entities"`
	Text           string       `json:"text"`
}

type SystemEvent struct {
	Type           MessageType `json:"type"`
	ConversationID string      `json:"conversation_id"`
	Code           string      `json:"code"`
	Detail         string      `json:"detail,omitempty"`
}

type ErrorEvent struct {
	Type           MessageType `json:"type"`
	ConversationID string      `json:"conversation_id"`
	Code           string      `json:"code"`
	Detail         string      `json:"detail"`
}

// ParseClientMessage decodes and validates a message sent by a client.
func ParseClientMessage(raw []byte) (any, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}

	switch env.Type {
	case TypeUserText:
		var msg UserText
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.ConversationID == "" || strings.TrimSpace(msg.Text) == "" {
			return nil, errors.New("invalid user_text")
		}
		return msg, nil
	case TypeClientControl:
		var msg ClientControl
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.ConversationID == "" || msg.Action == "" {
			return nil, errors.New("invalid client_control")
		}
		return msg, nil
	default:
		return nil, ErrUnsupportedType
	}
}
