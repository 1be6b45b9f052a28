// Package nlu is the rule-based language understanding engine: it maps a
// raw utterance to an intent plus extracted entities. Parsing is a pure
// function of the utterance and an optional previous-intent hint; it never
// fails, it only leaves entities absent.
package nlu

import "time"

const defaultAppointmentHour = 9

// ParsedRequest is the structured form of one utterance. RawText keeps the
// original casing; entity extraction and downstream cue scanning work on
// their own lowered views.
type ParsedRequest struct {
	Intent   Intent   `json:"intent"`
	RawText  string   `json:"raw_text"`
	Entities Entities `json:"entities"`
}

// Config tunes a Parser. The zero value is usable.
type Config struct {
	// DefaultHour fills the time entity when an appointment utterance
	// names no clock time. Zero means 09:00.
	DefaultHour int
	// Now overrides the clock for date resolution. Nil means time.Now.
	Now func() time.Time
}

// Parser converts utterances into ParsedRequests.
type Parser struct {
	defaultHour int
	now         func() time.Time
}

func NewParser(cfg Config) *Parser {
	p := &Parser{
		defaultHour: cfg.DefaultHour,
		now:         cfg.Now,
	}
	if p.defaultHour <= 0 {
		p.defaultHour = defaultAppointmentHour
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// Parse classifies text and extracts the entity set the intent asks for.
// lastIntent is the previous turn's intent, or IntentUnknown / empty when
// there is no usable history.
func (p *Parser) Parse(text string, lastIntent Intent) ParsedRequest {
	intent := classifyIntent(text, lastIntent)
	req := ParsedRequest{Intent: intent, RawText: text}

	switch {
	case intent.WeatherFamily():
		req.Entities.Location = ExtractLocation(text)
		req.Entities.Day = ExtractDay(text)
	case intent.AppointmentFamily():
		req.Entities.Date = ExtractDate(text, p.now())
		req.Entities.Time = ExtractTime(text, p.defaultHour)
		req.Entities.Title = ExtractTitle(text)
		req.Entities.Location = ExtractLocation(text)
	}
	return req
}
