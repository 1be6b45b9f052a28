package nlu

import (
	"testing"
	"time"
)

func testParser() *Parser {
	return NewParser(Config{Now: func() time.Time { return fixedNow }})
}

func TestParseWeatherQuery(t *testing.T) {
	p := testParser()
	got := p.Parse("What will the weather be like today in Marburg?", "")

	if got.Intent != IntentWeatherQuery {
		t.Fatalf("Intent = %q, want %q", got.Intent, IntentWeatherQuery)
	}
	if got.Entities.Location != "Marburg" {
		t.Fatalf("Location = %q, want %q", got.Entities.Location, "Marburg")
	}
	if got.Entities.Day != "today" {
		t.Fatalf("Day = %q, want %q", got.Entities.Day, "today")
	}
	if got.RawText != "What will the weather be like today in Marburg?" {
		t.Fatalf("RawText lost original casing: %q", got.RawText)
	}
	if got.Entities.Date != "" || got.Entities.Time != "" || got.Entities.Title != "" {
		t.Fatalf("weather intent extracted appointment entities: %+v", got.Entities)
	}
}

func TestParseRainQueryWithoutLocation(t *testing.T) {
	p := testParser()
	got := p.Parse("Will it rain there on Saturday?", "")

	if got.Intent != IntentRainQuery {
		t.Fatalf("Intent = %q, want %q", got.Intent, IntentRainQuery)
	}
	if got.Entities.Location != "" {
		t.Fatalf("Location = %q, want empty (resolution is the context manager's job)", got.Entities.Location)
	}
	if got.Entities.Day != "saturday" {
		t.Fatalf("Day = %q, want %q", got.Entities.Day, "saturday")
	}
}

func TestParseAppointmentCreate(t *testing.T) {
	p := testParser()
	got := p.Parse(`Add an appointment called "Team Meeting" at 3pm tomorrow`, "")

	if got.Intent != IntentAppointmentCreate {
		t.Fatalf("Intent = %q, want %q", got.Intent, IntentAppointmentCreate)
	}
	if got.Entities.Date != "2025-03-13" {
		t.Fatalf("Date = %q, want %q", got.Entities.Date, "2025-03-13")
	}
	if got.Entities.Time != "15:00" {
		t.Fatalf("Time = %q, want %q", got.Entities.Time, "15:00")
	}
	if got.Entities.Title != "Team Meeting" {
		t.Fatalf("Title = %q, want %q", got.Entities.Title, "Team Meeting")
	}
}

func TestParseAppointmentDefaultsTime(t *testing.T) {
	p := testParser()
	got := p.Parse("Delete the previously created appointment.", "")

	if got.Intent != IntentAppointmentDelete {
		t.Fatalf("Intent = %q, want %q", got.Intent, IntentAppointmentDelete)
	}
	// The time extractor always answers for appointment intents.
	if got.Entities.Time != "09:00" {
		t.Fatalf("Time = %q, want default %q", got.Entities.Time, "09:00")
	}
	if got.Entities.AppointmentID != "" {
		t.Fatalf("AppointmentID = %q, want empty: never extracted from text", got.Entities.AppointmentID)
	}
}

func TestParseUnknownExtractsNothing(t *testing.T) {
	p := testParser()
	for _, text := range []string{"", "   ", "tell me a joke about Hamburg in January"} {
		got := p.Parse(text, "")
		if text == "" || text == "   " {
			if got.Intent != IntentUnknown {
				t.Fatalf("Parse(%q).Intent = %q, want %q", text, got.Intent, IntentUnknown)
			}
		}
		if got.Intent == IntentUnknown && got.Entities != (Entities{}) {
			t.Fatalf("Parse(%q) unknown intent with entities: %+v", text, got.Entities)
		}
	}
}

func TestParseContinuationKeepsPreviousIntent(t *testing.T) {
	p := testParser()
	got := p.Parse("How about in Frankfurt?", IntentWeatherQuery)

	if got.Intent != IntentWeatherQuery {
		t.Fatalf("Intent = %q, want %q", got.Intent, IntentWeatherQuery)
	}
	if got.Entities.Location != "Frankfurt" {
		t.Fatalf("Location = %q, want %q", got.Entities.Location, "Frankfurt")
	}
}
