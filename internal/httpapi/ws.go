package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ent0n29/greta/internal/assistant"
	"github.com/ent0n29/greta/internal/dialogue"
	"github.com/ent0n29/greta/internal/protocol"
)

// handleConversationWS runs a streaming conversation over a websocket.
// All writes go through a single writer goroutine fed by the outbound
// channel; the read loop handles turns synchronously so dialogue state
// stays strictly ordered per connection.
func (s *Server) handleConversationWS(w http.ResponseWriter, r *http.Request) {
	conversationID := strings.TrimSpace(r.URL.Query().Get("conversation_id"))
	if conversationID == "" {
		respondError(w, http.StatusBadRequest, "missing_conversation_id", "query parameter conversation_id is required")
		return
	}

	conv, err := s.conversations.Get(conversationID)
	if err != nil {
		respondError(w, http.StatusNotFound, "conversation_not_found", err.Error())
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	s.metrics.ConversationEvents.WithLabelValues("ws_connected").Inc()

	ctx := r.Context()
	outbound := make(chan any, 64)
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range outbound {
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
			if t, ok := messageTypeOf(msg); ok {
				s.metrics.WSMessages.WithLabelValues("outbound", string(t)).Inc()
			}
		}
	}()

	conn.SetReadLimit(64 << 10)
	_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
		return nil
	})

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if msgType != websocket.TextMessage {
			continue
		}
		_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))

		parsed, err := protocol.ParseClientMessage(data)
		if err != nil {
			s.sendOutbound(outbound, protocol.ErrorEvent{
				Type:           protocol.TypeErrorEvent,
				ConversationID: conversationID,
				Code:           "invalid_client_message",
				Detail:         err.Error(),
			})
			continue
		}

		if t, ok := messageTypeOf(parsed); ok {
			s.metrics.WSMessages.WithLabelValues("inbound", string(t)).Inc()
		}

		switch msg := parsed.(type) {
		case protocol.UserText:
			var reply assistant.Reply
			turnErr := conv.WithTurn(func(dm *dialogue.Manager) error {
				reply = s.assistant.HandleTurn(ctx, conv.ID(), dm, msg.Text)
				return nil
			})
			if turnErr != nil {
				s.sendOutbound(outbound, protocol.ErrorEvent{
					Type:           protocol.TypeErrorEvent,
					ConversationID: conversationID,
					Code:           "conversation_ended",
					Detail:         turnErr.Error(),
				})
				continue
			}
			s.sendOutbound(outbound, protocol.AssistantReply{
				Type:           protocol.TypeAssistantReply,
				ConversationID: conversationID,
				TurnID:         reply.TurnID,
				Intent:         reply.Intent,
				Entities:       reply.Entities,
				Text:           reply.Text,
			})
		case protocol.ClientControl:
			s.handleWSControl(conv.ID(), msg, outbound)
		}
	}

	close(outbound)
	<-writerDone
	s.metrics.ConversationEvents.WithLabelValues("ws_disconnected").Inc()
}

func (s *Server) handleWSControl(conversationID string, msg protocol.ClientControl, outbound chan<- any) {
	switch msg.Action {
	case "clear_context":
		conv, err := s.conversations.Get(conversationID)
		if err != nil {
			s.sendOutbound(outbound, protocol.ErrorEvent{
				Type:           protocol.TypeErrorEvent,
				ConversationID: conversationID,
				Code:           "conversation_not_found",
				Detail:         err.Error(),
			})
			return
		}
		conv.WithDialogue(func(dm *dialogue.Manager) {
			dm.Clear()
		})
		s.metrics.ConversationEvents.WithLabelValues("context_cleared").Inc()
		s.sendOutbound(outbound, protocol.SystemEvent{
			Type:           protocol.TypeSystemEvent,
			ConversationID: conversationID,
			Code:           "context_cleared",
		})
	case "end":
		if _, err := s.conversations.End(conversationID); err != nil {
			s.sendOutbound(outbound, protocol.ErrorEvent{
				Type:           protocol.TypeErrorEvent,
				ConversationID: conversationID,
				Code:           "conversation_not_found",
				Detail:         err.Error(),
			})
			return
		}
		s.metrics.ActiveConversations.Set(float64(s.conversations.ActiveCount()))
		s.metrics.ConversationEvents.WithLabelValues("ended").Inc()
		s.sendOutbound(outbound, protocol.SystemEvent{
			Type:           protocol.TypeSystemEvent,
			ConversationID: conversationID,
			Code:           "conversation_ended",
		})
	default:
		s.sendOutbound(outbound, protocol.ErrorEvent{
			Type:           protocol.TypeErrorEvent,
			ConversationID: conversationID,
			Code:           "unsupported_action",
			Detail:         msg.Action,
		})
	}
}

// sendOutbound keeps websocket writes single-threaded; it drops the
// message if the outbound queue is saturated.
func (s *Server) sendOutbound(outbound chan<- any, msg any) {
	select {
	case outbound <- msg:
	default:
		if t, ok := messageTypeOf(msg); ok {
			s.metrics.WSMessages.WithLabelValues("dropped", string(t)).Inc()
		}
	}
}

func messageTypeOf(v any) (protocol.MessageType, bool) {
	switch m := v.(type) {
	case protocol.UserText:
		return m.Type, true
	case protocol.ClientControl:
		return m.Type, true
	case protocol.AssistantReply:
		return m.Type, true
	case protocol.SystemEvent:
		return m.Type, true
	case protocol.ErrorEvent:
		return m.Type, true
	default:
		return "", false
	}
}
