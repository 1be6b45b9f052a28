package calendar

import (
	"context"
	"time"
)

// MockClient is an in-memory Client for tests. Ids are assigned
// sequentially starting at 1.
type MockClient struct {
	Appointments map[int64]Appointment
	Err          error
	Now          time.Time

	nextID int64
}

func NewMockClient() *MockClient {
	return &MockClient{
		Appointments: make(map[int64]Appointment),
		Now:          time.Now(),
		nextID:       1,
	}
}

func (m *MockClient) Create(_ context.Context, apt Appointment) (*Appointment, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	apt.ID = m.nextID
	m.nextID++
	m.Appointments[apt.ID] = apt
	return &apt, nil
}

func (m *MockClient) Get(_ context.Context, id int64) (*Appointment, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	apt, ok := m.Appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &apt, nil
}

func (m *MockClient) List(_ context.Context) ([]Appointment, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	appointments := make([]Appointment, 0, len(m.Appointments))
	for _, apt := range m.Appointments {
		appointments = append(appointments, apt)
	}
	return appointments, nil
}

func (m *MockClient) Update(_ context.Context, id int64, changes Changes) (*Appointment, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	apt, ok := m.Appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	if changes.Title != "" {
		apt.Title = changes.Title
	}
	if changes.StartTime != "" {
		apt.StartTime = changes.StartTime
	}
	if changes.EndTime != "" {
		apt.EndTime = changes.EndTime
	}
	if changes.Location != "" {
		apt.Location = changes.Location
	}
	if changes.Description != "" {
		apt.Description = changes.Description
	}
	m.Appointments[id] = apt
	return &apt, nil
}

func (m *MockClient) Delete(_ context.Context, id int64) error {
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Appointments[id]; !ok {
		return ErrNotFound
	}
	delete(m.Appointments, id)
	return nil
}

func (m *MockClient) Next(_ context.Context) (*Appointment, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	appointments, _ := m.List(context.Background())
	return nextUpcoming(appointments, m.Now), nil
}
