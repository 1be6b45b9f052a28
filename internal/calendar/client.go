// Package calendar is the appointment backend client. It speaks the
// calendar service's JSON protocol and keeps the wall-clock comparison
// logic for "next appointment" in one place.
package calendar

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// TimeLayout is the wire format for appointment times, a local-time
// ISO-8601 stamp without seconds or zone.
const TimeLayout = "2006-01-02T15:04"

// Appointment is one calendar entry as the backend stores it.
type Appointment struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
}

// Changes carries the fields of a partial update. Empty fields are left
// untouched on the backend.
type Changes struct {
	Title       string `json:"title,omitempty"`
	StartTime   string `json:"start_time,omitempty"`
	EndTime     string `json:"end_time,omitempty"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
}

// IsZero reports whether the update carries nothing.
func (c Changes) IsZero() bool {
	return c == Changes{}
}

// Client manages appointments in a single calendar.
type Client interface {
	Create(ctx context.Context, apt Appointment) (*Appointment, error)
	Get(ctx context.Context, id int64) (*Appointment, error)
	List(ctx context.Context) ([]Appointment, error)
	Update(ctx context.Context, id int64, changes Changes) (*Appointment, error)
	Delete(ctx context.Context, id int64) error
	Next(ctx context.Context) (*Appointment, error)
}

// nextUpcoming picks the earliest appointment strictly after now,
// skipping entries whose start time does not parse.
func nextUpcoming(appointments []Appointment, now time.Time) *Appointment {
	var upcoming []Appointment
	for _, apt := range appointments {
		start, err := time.ParseInLocation(TimeLayout, apt.StartTime, now.Location())
		if err != nil {
			continue
		}
		if start.After(now) {
			upcoming = append(upcoming, apt)
		}
	}
	if len(upcoming) == 0 {
		return nil
	}
	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].StartTime < upcoming[j].StartTime
	})
	next := upcoming[0]
	return &next
}

// Format renders an appointment as response text.
func Format(apt *Appointment) string {
	if apt == nil {
		return "No appointment found."
	}
	title := apt.Title
	if title == "" {
		title = "Untitled"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Appointment: %s", title)
	if apt.StartTime != "" {
		fmt.Fprintf(&b, "\nStart: %s", apt.StartTime)
	}
	if apt.EndTime != "" {
		fmt.Fprintf(&b, "\nEnd: %s", apt.EndTime)
	}
	if apt.Location != "" {
		fmt.Fprintf(&b, "\nLocation: %s", apt.Location)
	}
	if apt.Description != "" {
		fmt.Fprintf(&b, "\nDescription: %s", apt.Description)
	}
	return b.String()
}
