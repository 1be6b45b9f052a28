package assistant

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ent0n29/greta/internal/calendar"
	"github.com/ent0n29/greta/internal/dialogue"
	"github.com/ent0n29/greta/internal/nlu"
	"github.com/ent0n29/greta/internal/weather"
)

func (s *Service) handleWeatherQuery(ctx context.Context, dm *dialogue.Manager, entities nlu.Entities) string {
	location := entities.Location
	if location == "" {
		location = dm.LastLocation()
	}
	if location == "" {
		return "I need to know the location. Which city are you asking about?"
	}
	if s.weather == nil {
		return fmt.Sprintf("I couldn't find weather information for %s.", location)
	}

	forecast, err := s.weather.Forecast(ctx, location)
	if err != nil {
		s.countCollaboratorError("weather")
		return fmt.Sprintf("I couldn't find weather information for %s.", location)
	}

	if entities.Day != "" {
		d, ok := forecast.ForDay(entities.Day, s.now())
		if !ok {
			return fmt.Sprintf("I couldn't find weather information for %s in %s.", entities.Day, location)
		}
		return weather.FormatDay(forecast.Place, d)
	}

	// No day asked for: answer with the first forecast day.
	if len(forecast.Days) > 0 {
		today := forecast.Days[0]
		return fmt.Sprintf("The weather in %s for %s will be %s with temperatures between %.0f°C and %.0f°C.",
			location, capitalize(today.Day), today.Weather, today.Temperature.Min, today.Temperature.Max)
	}
	return weather.FormatForecast(forecast)
}

func (s *Service) handleRainQuery(ctx context.Context, dm *dialogue.Manager, entities nlu.Entities) string {
	location := entities.Location
	if location == "" {
		location = dm.LastLocation()
	}
	if location == "" {
		return "I need to know the location. Where are you asking about?"
	}

	willRain := false
	if s.weather != nil {
		forecast, err := s.weather.Forecast(ctx, location)
		if err != nil {
			s.countCollaboratorError("weather")
		} else {
			willRain = forecast.WillRain(entities.Day, s.now())
		}
	}

	if entities.Day != "" {
		if willRain {
			return fmt.Sprintf("Yes, it will rain in %s on %s.", location, entities.Day)
		}
		return fmt.Sprintf("No, it won't rain in %s on %s.", location, entities.Day)
	}
	if willRain {
		return fmt.Sprintf("Yes, rain is expected in %s in the upcoming days.", location)
	}
	return fmt.Sprintf("No, no rain is expected in %s in the upcoming days.", location)
}

func (s *Service) handleAppointmentQuery(ctx context.Context) string {
	if s.calendar == nil {
		return "You don't have any upcoming appointments."
	}
	next, err := s.calendar.Next(ctx)
	if err != nil {
		s.countCollaboratorError("calendar")
		return "You don't have any upcoming appointments."
	}
	if next == nil {
		return "You don't have any upcoming appointments."
	}
	return calendar.Format(next)
}

func (s *Service) handleAppointmentCreate(ctx context.Context, dm *dialogue.Manager, entities nlu.Entities) string {
	title := entities.Title
	if title == "" {
		title = "New Appointment"
	}
	date := entities.Date
	clock := entities.Time
	if clock == "" {
		clock = "09:00"
	}

	if date == "" {
		return "I need a date for the appointment. When would you like to schedule it?"
	}

	// One hour duration by default. The end hour wraps within the same
	// date, so a 23:30 start ends at 00:30 on the same day.
	startTime := date + "T" + clock
	hour, minute := splitClock(clock)
	endTime := fmt.Sprintf("%sT%02d:%02d", date, (hour+1)%24, minute)

	if s.calendar == nil {
		return "I couldn't create the appointment. Please try again."
	}
	apt, err := s.calendar.Create(ctx, calendar.Appointment{
		Title:     title,
		StartTime: startTime,
		EndTime:   endTime,
		Location:  entities.Location,
	})
	if err != nil {
		s.countCollaboratorError("calendar")
		return "I couldn't create the appointment. Please try again."
	}

	if apt.ID != 0 {
		dm.SetLastAppointmentID(strconv.FormatInt(apt.ID, 10))
	}
	return fmt.Sprintf("I've created an appointment titled '%s' for %s at %s.", title, date, clock)
}

func (s *Service) handleAppointmentDelete(ctx context.Context, dm *dialogue.Manager, entities nlu.Entities) string {
	appointmentID := entities.AppointmentID
	if appointmentID == "" {
		appointmentID = dm.LastAppointmentID()
	}
	if appointmentID == "" {
		return "I need to know which appointment to delete. Can you be more specific?"
	}

	id, err := strconv.ParseInt(appointmentID, 10, 64)
	if err != nil {
		return "I couldn't delete the appointment. It may not exist."
	}
	if s.calendar == nil {
		return "I couldn't delete the appointment. It may not exist."
	}
	if err := s.calendar.Delete(ctx, id); err != nil {
		s.countCollaboratorError("calendar")
		return "I couldn't delete the appointment. It may not exist."
	}
	return "I've deleted the appointment."
}

func (s *Service) handleAppointmentUpdate(ctx context.Context, dm *dialogue.Manager, req nlu.ParsedRequest) string {
	appointmentID := req.Entities.AppointmentID
	if appointmentID == "" {
		appointmentID = dm.LastAppointmentID()
	}
	if appointmentID == "" && s.calendar != nil {
		next, err := s.calendar.Next(ctx)
		if err != nil {
			s.countCollaboratorError("calendar")
		}
		if next != nil && next.ID != 0 {
			appointmentID = strconv.FormatInt(next.ID, 10)
		}
	}
	if appointmentID == "" {
		return "I need to know which appointment to update. Can you be more specific?"
	}

	// What to change is inferred from the wording of the request, not
	// from intent alone.
	lower := strings.ToLower(req.RawText)
	var changes calendar.Changes

	if strings.Contains(lower, "place") || strings.Contains(lower, "location") {
		if req.Entities.Location == "" {
			return "What location would you like to change it to?"
		}
		changes.Location = req.Entities.Location
	}
	if strings.Contains(lower, "title") || strings.Contains(lower, "name") {
		if req.Entities.Title != "" {
			changes.Title = req.Entities.Title
		}
	}
	if strings.Contains(lower, "time") || strings.Contains(lower, "when") {
		if req.Entities.Date != "" && req.Entities.Time != "" {
			changes.StartTime = req.Entities.Date + "T" + req.Entities.Time
		}
	}

	if changes.IsZero() {
		return "I'm not sure what you want to update. Can you be more specific?"
	}

	id, err := strconv.ParseInt(appointmentID, 10, 64)
	if err != nil {
		return "I couldn't update the appointment."
	}
	if s.calendar == nil {
		return "I couldn't update the appointment."
	}
	if _, err := s.calendar.Update(ctx, id, changes); err != nil {
		s.countCollaboratorError("calendar")
		return "I couldn't update the appointment."
	}
	return "I've updated the appointment."
}

func splitClock(clock string) (hour, minute int) {
	parts := strings.SplitN(clock, ":", 2)
	hour, _ = strconv.Atoi(parts[0])
	if len(parts) == 2 {
		minute, _ = strconv.Atoi(parts[1])
	}
	return hour, minute
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
