package dialogue

import (
	"testing"

	"github.com/ent0n29/greta/internal/nlu"
)

func TestResolveReferencesLocationFromThere(t *testing.T) {
	m := NewManager()
	turn1 := nlu.ParsedRequest{
		Intent:   nlu.IntentWeatherQuery,
		RawText:  "What's the weather in Marburg?",
		Entities: nlu.Entities{Location: "Marburg"},
	}
	m.RecordTurn(turn1.RawText, turn1, "The weather in Marburg is sunny.")

	turn2 := nlu.ParsedRequest{
		Intent:   nlu.IntentRainQuery,
		RawText:  "Will it rain there on Saturday?",
		Entities: nlu.Entities{Day: "saturday"},
	}
	resolved := m.ResolveReferences(turn2)

	if resolved.Entities.Location != "Marburg" {
		t.Fatalf("Location = %q, want %q", resolved.Entities.Location, "Marburg")
	}
	if resolved.Entities.Day != "saturday" {
		t.Fatalf("Day = %q, want %q", resolved.Entities.Day, "saturday")
	}
}

func TestResolveReferencesNeverOverwrites(t *testing.T) {
	m := NewManager()
	seed := nlu.ParsedRequest{
		Intent:   nlu.IntentWeatherQuery,
		RawText:  "Weather in Marburg",
		Entities: nlu.Entities{Location: "Marburg"},
	}
	m.RecordTurn(seed.RawText, seed, "ok")

	parsed := nlu.ParsedRequest{
		Intent:   nlu.IntentRainQuery,
		RawText:  "Will it rain there in Hamburg?",
		Entities: nlu.Entities{Location: "Hamburg"},
	}
	resolved := m.ResolveReferences(parsed)
	if resolved.Entities.Location != "Hamburg" {
		t.Fatalf("Location = %q, want extracted %q kept", resolved.Entities.Location, "Hamburg")
	}
}

func TestResolveReferencesIdempotent(t *testing.T) {
	m := NewManager()
	seed := nlu.ParsedRequest{
		Intent:   nlu.IntentWeatherQuery,
		RawText:  "Weather in Marburg",
		Entities: nlu.Entities{Location: "Marburg"},
	}
	m.RecordTurn(seed.RawText, seed, "ok")
	m.SetLastAppointmentID("42")

	parsed := nlu.ParsedRequest{
		Intent:  nlu.IntentAppointmentDelete,
		RawText: "Delete that appointment there",
	}
	once := m.ResolveReferences(parsed)
	twice := m.ResolveReferences(once)
	if once != twice {
		t.Fatalf("resolution not idempotent: %+v vs %+v", once, twice)
	}
}

func TestResolveReferencesAppointmentID(t *testing.T) {
	m := NewManager()
	m.SetLastAppointmentID("42")

	parsed := nlu.ParsedRequest{
		Intent:  nlu.IntentAppointmentDelete,
		RawText: "Delete the previously created appointment.",
	}
	resolved := m.ResolveReferences(parsed)
	if resolved.Entities.AppointmentID != "42" {
		t.Fatalf("AppointmentID = %q, want %q", resolved.Entities.AppointmentID, "42")
	}
}

func TestResolveReferencesWithoutContextInjectsNothing(t *testing.T) {
	m := NewManager()
	parsed := nlu.ParsedRequest{
		Intent:  nlu.IntentRainQuery,
		RawText: "Will it rain there?",
	}
	resolved := m.ResolveReferences(parsed)
	if resolved.Entities != (nlu.Entities{}) {
		t.Fatalf("expected no injection, got %+v", resolved.Entities)
	}
}

func TestRecordTurnUpdatesState(t *testing.T) {
	m := NewManager()
	parsed := nlu.ParsedRequest{
		Intent:   nlu.IntentWeatherQuery,
		RawText:  "Weather today in Marburg",
		Entities: nlu.Entities{Location: "Marburg", Day: "today"},
	}
	turn := m.RecordTurn(parsed.RawText, parsed, "sunny")

	if turn.ID == "" || turn.Timestamp.IsZero() {
		t.Fatalf("turn missing id or timestamp: %+v", turn)
	}
	if m.LastLocation() != "Marburg" {
		t.Fatalf("LastLocation = %q, want %q", m.LastLocation(), "Marburg")
	}
	if m.LastDay() != "today" {
		t.Fatalf("LastDay = %q, want %q", m.LastDay(), "today")
	}
	if m.LastIntent() != nlu.IntentWeatherQuery {
		t.Fatalf("LastIntent = %q, want %q", m.LastIntent(), nlu.IntentWeatherQuery)
	}

	// An unknown turn still refreshes the intent but leaves location/day.
	m.RecordTurn("zzz", nlu.ParsedRequest{Intent: nlu.IntentUnknown, RawText: "zzz"}, "sorry")
	if m.LastIntent() != nlu.IntentUnknown {
		t.Fatalf("LastIntent = %q, want %q", m.LastIntent(), nlu.IntentUnknown)
	}
	if m.LastLocation() != "Marburg" || m.LastDay() != "today" {
		t.Fatalf("unknown turn clobbered context: %+v", m)
	}
}

func TestRecordTurnNeverLiftsAppointmentID(t *testing.T) {
	m := NewManager()
	parsed := nlu.ParsedRequest{
		Intent:   nlu.IntentAppointmentDelete,
		RawText:  "Delete that appointment",
		Entities: nlu.Entities{AppointmentID: "7"},
	}
	m.RecordTurn(parsed.RawText, parsed, "done")
	if m.LastAppointmentID() != "" {
		t.Fatalf("LastAppointmentID = %q, want empty: only the explicit setter updates it", m.LastAppointmentID())
	}
}

func TestHistoryWindowAndClear(t *testing.T) {
	m := NewManager()
	texts := []string{"one", "two", "three", "four"}
	for _, text := range texts {
		m.RecordTurn(text, nlu.ParsedRequest{Intent: nlu.IntentUnknown, RawText: text}, "r:"+text)
	}

	last2 := m.History(2)
	if len(last2) != 2 || last2[0].RawText != "three" || last2[1].RawText != "four" {
		t.Fatalf("History(2) = %+v, want last two in chronological order", last2)
	}

	all := m.History(0)
	if len(all) != 4 {
		t.Fatalf("History(0) len = %d, want 4", len(all))
	}
	if more := m.History(99); len(more) != 4 {
		t.Fatalf("History(99) len = %d, want 4", len(more))
	}

	m.Clear()
	if len(m.History(0)) != 0 {
		t.Fatalf("history not empty after Clear")
	}
	if m.LastLocation() != "" || m.LastDay() != "" || m.LastAppointmentID() != "" || m.LastIntent() != "" {
		t.Fatalf("state not reset after Clear")
	}
}
