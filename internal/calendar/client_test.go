package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNextUpcoming(t *testing.T) {
	now := time.Date(2025, time.March, 12, 15, 0, 0, 0, time.UTC)
	appointments := []Appointment{
		{ID: 1, Title: "Past", StartTime: "2025-03-10T10:00"},
		{ID: 2, Title: "Later", StartTime: "2025-03-20T09:00"},
		{ID: 3, Title: "Soonest", StartTime: "2025-03-13T08:00"},
		{ID: 4, Title: "Broken", StartTime: "not-a-time"},
	}

	next := nextUpcoming(appointments, now)
	if next == nil || next.ID != 3 {
		t.Fatalf("nextUpcoming = %+v, want id 3", next)
	}

	if got := nextUpcoming(nil, now); got != nil {
		t.Fatalf("nextUpcoming(empty) = %+v, want nil", got)
	}
	if got := nextUpcoming(appointments[:1], now); got != nil {
		t.Fatalf("nextUpcoming(only past) = %+v, want nil", got)
	}
}

func TestFormat(t *testing.T) {
	apt := &Appointment{
		ID:        7,
		Title:     "Team Meeting",
		StartTime: "2025-03-13T15:00",
		EndTime:   "2025-03-13T16:00",
		Location:  "Room 12",
	}
	got := Format(apt)
	want := "Appointment: Team Meeting\nStart: 2025-03-13T15:00\nEnd: 2025-03-13T16:00\nLocation: Room 12"
	if got != want {
		t.Fatalf("Format = %q, want %q", got, want)
	}

	if got := Format(nil); got != "No appointment found." {
		t.Fatalf("Format(nil) = %q", got)
	}
	if got := Format(&Appointment{StartTime: "2025-01-01T09:00"}); got != "Appointment: Untitled\nStart: 2025-01-01T09:00" {
		t.Fatalf("Format(untitled) = %q", got)
	}
}

func TestChangesIsZero(t *testing.T) {
	if !(Changes{}).IsZero() {
		t.Fatalf("empty Changes should be zero")
	}
	if (Changes{Location: "Room 15"}).IsZero() {
		t.Fatalf("non-empty Changes should not be zero")
	}
}

func TestHTTPClientCreate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if got := r.URL.Query().Get("calenderid"); got != "test_cal" {
			t.Errorf("calenderid = %q, want %q", got, "test_cal")
		}
		var apt Appointment
		if err := json.NewDecoder(r.Body).Decode(&apt); err != nil {
			t.Errorf("decode body: %v", err)
		}
		apt.ID = 42
		_ = json.NewEncoder(w).Encode(apt)
	}))
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "test_cal", 5*time.Second)
	created, err := client.Create(context.Background(), Appointment{
		Title:     "Team Meeting",
		StartTime: "2025-03-13T15:00",
		EndTime:   "2025-03-13T16:00",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID != 42 || created.Title != "Team Meeting" {
		t.Fatalf("unexpected appointment: %+v", created)
	}
}

func TestHTTPClientListToleratesErrorObject(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error":"no such calendar"}`))
	}))
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "test_cal", 5*time.Second)
	appointments, err := client.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if appointments != nil {
		t.Fatalf("List() = %+v, want nil for non-array body", appointments)
	}
}

func TestHTTPClientDeleteNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("id"); got != "7" {
			t.Errorf("id = %q, want %q", got, "7")
		}
		http.NotFound(w, r)
	}))
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "test_cal", 5*time.Second)
	err := client.Delete(context.Background(), 7)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete() error = %v, want ErrNotFound", err)
	}
}

func TestHTTPClientNext(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode([]Appointment{
			{ID: 1, Title: "Past", StartTime: "2025-03-10T10:00"},
			{ID: 2, Title: "Next", StartTime: "2025-03-14T09:00"},
		})
	}))
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "test_cal", 5*time.Second)
	client.now = func() time.Time {
		return time.Date(2025, time.March, 12, 15, 0, 0, 0, time.UTC)
	}

	next, err := client.Next(context.Background())
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if next == nil || next.ID != 2 {
		t.Fatalf("Next() = %+v, want id 2", next)
	}
}

func TestNewHTTPClientGeneratesCalendarID(t *testing.T) {
	client := NewHTTPClient("http://example.invalid", "", time.Second)
	if client.CalendarID() == "" {
		t.Fatalf("expected a generated calendar id")
	}
	other := NewHTTPClient("http://example.invalid", "", time.Second)
	if client.CalendarID() == other.CalendarID() {
		t.Fatalf("generated calendar ids should differ")
	}
}
