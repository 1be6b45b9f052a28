package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/ent0n29/greta/internal/assistant"
	"github.com/ent0n29/greta/internal/config"
	"github.com/ent0n29/greta/internal/dialogue"
	"github.com/ent0n29/greta/internal/observability"
	"github.com/ent0n29/greta/internal/session"
)

type Server struct {
	cfg           config.Config
	conversations *session.Manager
	assistant     *assistant.Service
	metrics       *observability.Metrics
	stages        *observability.StageWindow
	upgrader      websocket.Upgrader
}

func New(cfg config.Config, conversations *session.Manager, svc *assistant.Service, metrics *observability.Metrics, stages *observability.StageWindow) *Server {
	return &Server{
		cfg:           cfg,
		conversations: conversations,
		assistant:     svc,
		metrics:       metrics,
		stages:        stages,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Default: only allow browser websocket connections from the
				// same origin, so other websites cannot drive a conversation
				// if the service is ever exposed beyond localhost.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin. Allow them.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})
	r.Get("/debug/turn-stats", s.handleTurnStats)

	r.Post("/v1/conversations", s.handleCreateConversation)
	r.Post("/v1/conversations/{id}/end", s.handleEndConversation)
	r.Post("/v1/conversations/{id}/turns", s.handleTurn)
	r.Get("/v1/conversations/{id}/history", s.handleGetHistory)
	r.Delete("/v1/conversations/{id}/history", s.handleClearHistory)
	r.Get("/v1/conversations/ws", s.handleConversationWS)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":               "ready",
		"active_conversations": s.conversations.ActiveCount(),
	})
}

func (s *Server) handleTurnStats(w http.ResponseWriter, _ *http.Request) {
	if s.stages == nil {
		respondError(w, http.StatusNotFound, "unavailable", "stage window not configured")
		return
	}
	respondJSON(w, http.StatusOK, s.stages.Snapshot())
}

func (s *Server) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	var req session.CreateRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	conv := s.conversations.Create(strings.TrimSpace(req.Label))
	s.metrics.ActiveConversations.Set(float64(s.conversations.ActiveCount()))
	s.metrics.ConversationEvents.WithLabelValues("created").Inc()

	snap := conv.Snapshot()
	respondJSON(w, http.StatusCreated, session.CreateResponse{
		ConversationID:  snap.ID,
		Label:           snap.Label,
		Status:          snap.Status,
		StartedAt:       snap.StartedAt,
		LastActivityAt:  snap.LastActivityAt,
		InactivityTTLMS: s.cfg.ConversationInactivityTimeout.Milliseconds(),
	})
}

func (s *Server) handleEndConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if strings.TrimSpace(id) == "" {
		respondError(w, http.StatusBadRequest, "invalid_conversation_id", "missing conversation id")
		return
	}

	snap, err := s.conversations.End(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "conversation_not_found", err.Error())
		return
	}
	s.metrics.ActiveConversations.Set(float64(s.conversations.ActiveCount()))
	s.metrics.ConversationEvents.WithLabelValues("ended").Inc()
	respondJSON(w, http.StatusOK, snap)
}

type turnRequest struct {
	Text string `json:"text"`
}

type turnResponse struct {
	ConversationID string `json:"conversation_id"`
	assistant.Reply
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	conv, err := s.conversations.Get(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "conversation_not_found", err.Error())
		return
	}

	var req turnRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(w, http.StatusBadRequest, "empty_text", "text is required")
		return
	}

	var reply assistant.Reply
	err = conv.WithTurn(func(dm *dialogue.Manager) error {
		reply = s.assistant.HandleTurn(r.Context(), conv.ID(), dm, req.Text)
		return nil
	})
	if err != nil {
		respondError(w, http.StatusConflict, "conversation_ended", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, turnResponse{
		ConversationID: conv.ID(),
		Reply:          reply,
	})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	conv, err := s.conversations.Get(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "conversation_not_found", err.Error())
		return
	}

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be a non-negative integer")
			return
		}
	}

	var turns []dialogue.Turn
	conv.WithDialogue(func(dm *dialogue.Manager) {
		turns = dm.History(limit)
	})
	respondJSON(w, http.StatusOK, map[string]any{
		"conversation_id": conv.ID(),
		"turns":           turns,
	})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	conv, err := s.conversations.Get(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "conversation_not_found", err.Error())
		return
	}

	conv.WithDialogue(func(dm *dialogue.Manager) {
		dm.Clear()
	})
	s.metrics.ConversationEvents.WithLabelValues("context_cleared").Inc()
	respondJSON(w, http.StatusOK, map[string]any{
		"conversation_id": conv.ID(),
		"cleared":         true,
	})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
