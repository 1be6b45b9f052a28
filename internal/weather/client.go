// Package weather talks to the forecast backend on behalf of the
// assistant. The language core never calls it; handlers do, with already
// resolved entities.
package weather

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// TemperatureRange is the daily min/max in degrees Celsius.
type TemperatureRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DayForecast is one day of a forecast.
type DayForecast struct {
	Day         string           `json:"day"`
	Temperature TemperatureRange `json:"temperature"`
	Weather     string           `json:"weather"`
}

// Forecast is the backend's multi-day answer for one place.
type Forecast struct {
	Place string        `json:"place"`
	Days  []DayForecast `json:"forecast"`
}

// Client fetches forecasts for a place.
type Client interface {
	Forecast(ctx context.Context, place string) (*Forecast, error)
}

// ForDay returns the entry matching day, resolving "today" and "tomorrow"
// against now. Day names compare case-insensitively.
func (f *Forecast) ForDay(day string, now time.Time) (DayForecast, bool) {
	day = strings.ToLower(day)
	switch day {
	case "today":
		day = strings.ToLower(now.Weekday().String())
	case "tomorrow":
		day = strings.ToLower(now.AddDate(0, 0, 1).Weekday().String())
	}

	for _, d := range f.Days {
		if strings.ToLower(d.Day) == day {
			return d, true
		}
	}
	return DayForecast{}, false
}

// WillRain reports whether rain shows up on the given day, or on any
// forecast day when day is empty.
func (f *Forecast) WillRain(day string, now time.Time) bool {
	if day != "" {
		d, ok := f.ForDay(day, now)
		return ok && strings.Contains(strings.ToLower(d.Weather), "rain")
	}
	for _, d := range f.Days {
		if strings.Contains(strings.ToLower(d.Weather), "rain") {
			return true
		}
	}
	return false
}

// FormatDay renders a single-day forecast as response text.
func FormatDay(place string, d DayForecast) string {
	return fmt.Sprintf("On %s in %s, the weather will be %s with temperatures between %.0f°C and %.0f°C.",
		capitalize(d.Day), place, d.Weather, d.Temperature.Min, d.Temperature.Max)
}

// FormatForecast renders the full multi-day forecast as response text.
func FormatForecast(f *Forecast) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Here's the weather forecast for %s:", f.Place)
	for _, d := range f.Days {
		fmt.Fprintf(&b, "\n%s: %s, temperature between %.0f°C and %.0f°C.",
			capitalize(d.Day), d.Weather, d.Temperature.Min, d.Temperature.Max)
	}
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
