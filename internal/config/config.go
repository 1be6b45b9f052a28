package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the assistant service.
type Config struct {
	BindAddr                      string
	ShutdownTimeout               time.Duration
	ConversationInactivityTimeout time.Duration
	MetricsNamespace              string

	AllowAnyOrigin bool

	WeatherAPIURL       string
	CalendarAPIURL      string
	CalendarID          string
	CollaboratorTimeout time.Duration

	DefaultAppointmentHour int

	DatabaseURL string
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:         envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace: envOrDefault("APP_METRICS_NAMESPACE", "greta"),
		AllowAnyOrigin:   false,
		WeatherAPIURL:    envOrDefault("WEATHER_API_URL", "https://api.responsible-nlp.net/weather.php"),
		CalendarAPIURL:   envOrDefault("CALENDAR_API_URL", "https://api.responsible-nlp.net/calendar.php"),
		// Empty means a fresh per-process calendar id.
		CalendarID:                    stringsTrimSpace("CALENDAR_ID"),
		DatabaseURL:                   stringsTrimSpace("DATABASE_URL"),
		ShutdownTimeout:               15 * time.Second,
		ConversationInactivityTimeout: 30 * time.Minute,
		CollaboratorTimeout:           10 * time.Second,
		DefaultAppointmentHour:        9,
	}
	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.ConversationInactivityTimeout, err = durationFromEnv("APP_CONVERSATION_INACTIVITY_TIMEOUT", cfg.ConversationInactivityTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.CollaboratorTimeout, err = durationFromEnv("APP_COLLABORATOR_TIMEOUT", cfg.CollaboratorTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.DefaultAppointmentHour, err = intFromEnv("APP_DEFAULT_APPOINTMENT_HOUR", cfg.DefaultAppointmentHour)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}

	if cfg.ConversationInactivityTimeout < 5*time.Second {
		return Config{}, fmt.Errorf("APP_CONVERSATION_INACTIVITY_TIMEOUT must be at least 5s")
	}
	if cfg.CollaboratorTimeout <= 0 {
		return Config{}, fmt.Errorf("APP_COLLABORATOR_TIMEOUT must be positive")
	}
	if cfg.DefaultAppointmentHour < 0 || cfg.DefaultAppointmentHour > 23 {
		return Config{}, fmt.Errorf("APP_DEFAULT_APPOINTMENT_HOUR must be between 0 and 23")
	}
	if strings.TrimSpace(cfg.WeatherAPIURL) == "" {
		return Config{}, fmt.Errorf("WEATHER_API_URL must not be empty")
	}
	if strings.TrimSpace(cfg.CalendarAPIURL) == "" {
		return Config{}, fmt.Errorf("CALENDAR_API_URL must not be empty")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return trimSpace(os.Getenv(key))
}

func trimSpace(v string) string {
	for len(v) > 0 && (v[0] == ' ' || v[0] == '\n' || v[0] == '\t' || v[0] == '\r') {
		v = v[1:]
	}
	for len(v) > 0 {
		c := v[len(v)-1]
		if c == ' ' || c == '\n' || c == '\t' || c == '\r' {
			v = v[:len(v)-1]
			continue
		}
		break
	}
	return v
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(stringsTrimSpace(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
