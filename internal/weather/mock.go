package weather

import (
	"context"
	"errors"
	"strings"
)

var ErrUnknownPlace = errors.New("no forecast for place")

// MockClient serves canned forecasts for tests and offline development.
type MockClient struct {
	Forecasts map[string]*Forecast
	Err       error
}

func NewMockClient(forecasts ...*Forecast) *MockClient {
	m := &MockClient{Forecasts: make(map[string]*Forecast)}
	for _, f := range forecasts {
		m.Forecasts[strings.ToLower(f.Place)] = f
	}
	return m
}

func (m *MockClient) Forecast(_ context.Context, place string) (*Forecast, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	f, ok := m.Forecasts[strings.ToLower(place)]
	if !ok {
		return nil, ErrUnknownPlace
	}
	return f, nil
}
