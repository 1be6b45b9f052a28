// Package assistant orchestrates one turn: parse the utterance, fill
// missing entities from dialogue context, dispatch to the intent
// handler, record the exchange, and archive the transcript.
package assistant

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/ent0n29/greta/internal/calendar"
	"github.com/ent0n29/greta/internal/dialogue"
	"github.com/ent0n29/greta/internal/memory"
	"github.com/ent0n29/greta/internal/nlu"
	"github.com/ent0n29/greta/internal/observability"
	"github.com/ent0n29/greta/internal/policy"
	"github.com/ent0n29/greta/internal/weather"
)

// Reply is the assistant's answer to one user utterance.
type Reply struct {
	TurnID   string       `json:"turn_id"`
	Intent   nlu.Intent   `json:"intent"`
	Entities nlu.Entities `json:"entities"`
	Text     string       `json:"text"`
}

// Config wires the service's collaborators. Weather, Calendar, Archive,
// Metrics and Stages may be nil; the matching features degrade to
// apology responses or no-ops.
type Config struct {
	Parser   *nlu.Parser
	Weather  weather.Client
	Calendar calendar.Client
	Archive  memory.Store
	Metrics  *observability.Metrics
	Stages   *observability.StageWindow
	Now      func() time.Time
}

// Service handles turns for any number of conversations. It holds no
// per-conversation state; the caller passes the dialogue manager in,
// already serialized by the session layer.
type Service struct {
	parser   *nlu.Parser
	weather  weather.Client
	calendar calendar.Client
	archive  memory.Store
	metrics  *observability.Metrics
	stages   *observability.StageWindow
	now      func() time.Time
}

func NewService(cfg Config) *Service {
	parser := cfg.Parser
	if parser == nil {
		parser = nlu.NewParser(nlu.Config{})
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		parser:   parser,
		weather:  cfg.Weather,
		calendar: cfg.Calendar,
		archive:  cfg.Archive,
		metrics:  cfg.Metrics,
		stages:   cfg.Stages,
		now:      now,
	}
}

// HandleTurn processes one utterance against the conversation's
// dialogue state. The caller must hold the conversation's turn lock.
func (s *Service) HandleTurn(ctx context.Context, conversationID string, dm *dialogue.Manager, text string) Reply {
	started := s.now()

	parseStart := s.now()
	parsed := s.parser.Parse(text, dm.LastIntent())
	s.observeStage(observability.StageParse, s.now().Sub(parseStart))

	resolveStart := s.now()
	resolved := s.resolveReferences(dm, parsed)
	s.observeStage(observability.StageResolve, s.now().Sub(resolveStart))

	handleStart := s.now()
	response := s.dispatch(ctx, dm, resolved)
	s.observeStage(observability.StageHandle, s.now().Sub(handleStart))

	turn := dm.RecordTurn(text, resolved, response)

	archiveStart := s.now()
	s.archiveTurn(ctx, conversationID, turn)
	s.observeStage(observability.StageArchive, s.now().Sub(archiveStart))

	elapsed := s.now().Sub(started)
	s.observeStage(observability.StageTotal, elapsed)
	if s.metrics != nil {
		s.metrics.TurnsByIntent.WithLabelValues(string(resolved.Intent)).Inc()
		s.metrics.ObserveTurnLatency(elapsed)
	}

	return Reply{
		TurnID:   turn.ID,
		Intent:   resolved.Intent,
		Entities: resolved.Entities,
		Text:     response,
	}
}

func (s *Service) resolveReferences(dm *dialogue.Manager, parsed nlu.ParsedRequest) nlu.ParsedRequest {
	resolved := dm.ResolveReferences(parsed)
	if s.metrics == nil {
		return resolved
	}
	if resolved.Entities.Location != parsed.Entities.Location {
		s.metrics.ResolvedReferences.WithLabelValues("location").Inc()
	}
	if resolved.Entities.AppointmentID != parsed.Entities.AppointmentID {
		s.metrics.ResolvedReferences.WithLabelValues("appointment_id").Inc()
	}
	return resolved
}

func (s *Service) dispatch(ctx context.Context, dm *dialogue.Manager, req nlu.ParsedRequest) string {
	switch req.Intent {
	case nlu.IntentWeatherQuery:
		return s.handleWeatherQuery(ctx, dm, req.Entities)
	case nlu.IntentRainQuery:
		return s.handleRainQuery(ctx, dm, req.Entities)
	case nlu.IntentAppointmentQuery:
		return s.handleAppointmentQuery(ctx)
	case nlu.IntentAppointmentCreate:
		return s.handleAppointmentCreate(ctx, dm, req.Entities)
	case nlu.IntentAppointmentDelete:
		return s.handleAppointmentDelete(ctx, dm, req.Entities)
	case nlu.IntentAppointmentUpdate:
		return s.handleAppointmentUpdate(ctx, dm, req)
	default:
		return "I'm not sure I understand. Can you rephrase that?"
	}
}

func (s *Service) archiveTurn(ctx context.Context, conversationID string, turn dialogue.Turn) {
	if s.archive == nil {
		return
	}
	entities, err := json.Marshal(turn.Parsed.Entities)
	if err != nil {
		entities = []byte("{}")
	}
	// The live dialogue keeps raw text; only the archived copy is masked.
	userText, redacted := policy.RedactPII(turn.RawText)
	err = s.archive.SaveTurn(ctx, memory.TurnRecord{
		ID:             turn.ID,
		ConversationID: conversationID,
		UserText:       userText,
		Intent:         string(turn.Parsed.Intent),
		Entities:       string(entities),
		Response:       turn.Response,
		Redacted:       redacted,
		CreatedAt:      turn.Timestamp,
	})
	if err != nil {
		// Archival is best effort; the turn already succeeded.
		log.Printf("archive turn %s: %v", turn.ID, err)
		s.countCollaboratorError("archive")
	}
}

func (s *Service) observeStage(stage string, d time.Duration) {
	if s.stages != nil {
		s.stages.Observe(stage, d)
	}
}

func (s *Service) countCollaboratorError(name string) {
	if s.metrics != nil {
		s.metrics.CollaboratorErrors.WithLabelValues(name).Inc()
	}
}
