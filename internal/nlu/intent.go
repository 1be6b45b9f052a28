package nlu

import (
	"regexp"
	"strings"
)

// Intent classifies the purpose of a single utterance.
type Intent string

const (
	IntentWeatherQuery      Intent = "weather_query"
	IntentRainQuery         Intent = "rain_query"
	IntentAppointmentQuery  Intent = "appointment_query"
	IntentAppointmentCreate Intent = "appointment_create"
	IntentAppointmentUpdate Intent = "appointment_update"
	IntentAppointmentDelete Intent = "appointment_delete"
	IntentUnknown           Intent = "unknown"
)

// WeatherFamily reports whether the intent asks about weather conditions.
func (i Intent) WeatherFamily() bool {
	return strings.Contains(string(i), "weather") || strings.Contains(string(i), "rain")
}

// AppointmentFamily reports whether the intent targets the calendar.
func (i Intent) AppointmentFamily() bool {
	return strings.Contains(string(i), "appointment")
}

// intentMatcher pairs an intent with its ordered surface patterns.
type intentMatcher struct {
	intent   Intent
	patterns []*regexp.Regexp
}

// intentMatchers is evaluated top to bottom and the first pattern hit wins.
// Both the matcher order and the pattern order inside a matcher are part of
// the classification contract: ties across intents resolve by this order.
var intentMatchers = []intentMatcher{
	{
		intent: IntentWeatherQuery,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)what.*(weather|temperature|forecast)`),
			regexp.MustCompile(`(?i)(weather|temperature|forecast).*be`),
			regexp.MustCompile(`(?i)how.*(weather|warm|cold|hot)`),
			regexp.MustCompile(`(?i)(tell|show).*weather`),
			regexp.MustCompile(`(?i)what about.*in\s+[a-z]`),
			regexp.MustCompile(`(?i)how about.*in\s+[a-z]`),
		},
	},
	{
		intent: IntentRainQuery,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)will.*rain`),
			regexp.MustCompile(`(?i)is.*rain`),
			regexp.MustCompile(`(?i)rain.*forecast`),
			regexp.MustCompile(`(?i)going.*rain`),
		},
	},
	{
		intent: IntentAppointmentDelete,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(delete|remove|cancel).*(appointment|meeting|event)`),
			regexp.MustCompile(`(?i)(appointment|meeting|event).*(delete|remove|cancel)`),
		},
	},
	{
		intent: IntentAppointmentUpdate,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(change|update|modify|edit).*(appointment|meeting|event)`),
			regexp.MustCompile(`(?i)(move|reschedule).*(appointment|meeting|event)`),
		},
	},
	{
		intent: IntentAppointmentQuery,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(where|when|what).*(next|upcoming).*appointment`),
			regexp.MustCompile(`(?i)(show|tell|list).*(appointment|meeting|event)`),
			regexp.MustCompile(`(?i)do.*have.*(appointment|meeting)`),
		},
	},
	{
		intent: IntentAppointmentCreate,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(add|create|schedule|make).*(appointment|meeting|event)`),
			regexp.MustCompile(`(?i)(appointment|meeting|event).*(for|on|at)`),
			regexp.MustCompile(`(?i)book.*(appointment|meeting)`),
		},
	},
}

var continuationPattern = regexp.MustCompile(`(?i)(what|how)\s+(about|in)`)

// classifyIntent maps an utterance to an intent. A "what about in Hamburg"
// style follow-up repeats the previous intent when that intent's name
// mentions weather; the substring check is deliberately not an enum
// comparison and a rain_query does not arm the follow-up.
func classifyIntent(text string, lastIntent Intent) Intent {
	if strings.Contains(string(lastIntent), "weather") &&
		continuationPattern.MatchString(text) &&
		ExtractLocation(text) != "" {
		return lastIntent
	}

	for _, m := range intentMatchers {
		for _, p := range m.patterns {
			if p.MatchString(text) {
				return m.intent
			}
		}
	}
	return IntentUnknown
}
