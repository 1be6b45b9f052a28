package nlu

import (
	"testing"
	"time"
)

// fixedNow is a Wednesday afternoon.
var fixedNow = time.Date(2025, time.March, 12, 15, 0, 0, 0, time.UTC)

func TestExtractLocation(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"in city", "What's the weather in Marburg?", "Marburg"},
		{"lowercase city", "how about in frankfurt", "Frankfurt"},
		{"rain in city", "Will it rain in Hamburg?", "Hamburg"},
		{"bounded to", "Move my appointment to Room 15 at 3pm", "Room 15"},
		{"stop word falls through", "What's the forecast for tomorrow?", ""},
		{"no preposition", "Will it rain there on Saturday?", ""},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractLocation(tc.text); got != tc.want {
				t.Fatalf("ExtractLocation(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

func TestExtractDay(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"What will the weather be like today in Marburg?", "today"},
		{"Will it rain tomorrow?", "tomorrow"},
		{"Will it rain there on Saturday?", "saturday"},
		{"Is it raining today or on Monday?", "today"},
		{"Where is my next appointment?", ""},
	}

	for _, tc := range cases {
		if got := ExtractDay(tc.text); got != tc.want {
			t.Fatalf("ExtractDay(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestExtractDate(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"today", "schedule it today", "2025-03-12"},
		{"tomorrow", "schedule it tomorrow", "2025-03-13"},
		{"upcoming weekday", "on Friday please", "2025-03-14"},
		{"passed weekday wraps", "on Monday please", "2025-03-17"},
		{"same weekday is today", "on Wednesday", "2025-03-12"},
		{"next same weekday", "next Wednesday", "2025-03-19"},
		{"day of month", "the 12th of January", "2026-01-12"},
		{"month day", "January 12", "2026-01-12"},
		{"future named date stays this year", "the 25th of December", "2025-12-25"},
		{"numeric day month year", "12/01/2025", "2025-01-12"},
		{"numeric two digit year", "05/06/26", "2026-06-05"},
		{"invalid calendar date", "31/02/2025", ""},
		{"no date", "hello there", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractDate(tc.text, fixedNow); got != tc.want {
				t.Fatalf("ExtractDate(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

func TestExtractDateTomorrowRoundTrip(t *testing.T) {
	// Holds for any clock value, not just the pinned one.
	for _, now := range []time.Time{
		time.Date(2025, time.December, 31, 23, 59, 0, 0, time.UTC),
		time.Date(2024, time.February, 28, 8, 0, 0, 0, time.UTC),
		time.Now(),
	} {
		want := now.AddDate(0, 0, 1).Format("2006-01-02")
		if got := ExtractDate("tomorrow", now); got != want {
			t.Fatalf("ExtractDate(tomorrow, %v) = %q, want %q", now, got, want)
		}
	}
}

func TestExtractTime(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"clock", "meet at 10:30", "10:30"},
		{"clock pm", "meet at 10:30pm", "22:30"},
		{"clock am midnight", "meet at 12:15am", "00:15"},
		{"hour pm", "schedule it for 5pm", "17:00"},
		{"noon pm stays", "lunch at 12pm", "12:00"},
		{"midnight am", "at 12am", "00:00"},
		{"bare at hour", "meet at 5", "05:00"},
		{"default", "schedule a meeting", "09:00"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractTime(tc.text, 9); got != tc.want {
				t.Fatalf("ExtractTime(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}

	if got := ExtractTime("no time here", 14); got != "14:00" {
		t.Fatalf("ExtractTime default hour = %q, want %q", got, "14:00")
	}
}

func TestExtractTitle(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"quoted", `Add an appointment called "Project Sync" tomorrow`, "Project Sync"},
		{"trailing title", "Add an appointment for tomorrow titled Team Meeting.", "Team Meeting"},
		{"named", "Create an event named Standup.", "Standup"},
		{"absent", "Add an appointment for tomorrow", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractTitle(tc.text); got != tc.want {
				t.Fatalf("ExtractTitle(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}
