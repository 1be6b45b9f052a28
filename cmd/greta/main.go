package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ent0n29/greta/internal/assistant"
	"github.com/ent0n29/greta/internal/calendar"
	"github.com/ent0n29/greta/internal/config"
	"github.com/ent0n29/greta/internal/httpapi"
	"github.com/ent0n29/greta/internal/memory"
	"github.com/ent0n29/greta/internal/nlu"
	"github.com/ent0n29/greta/internal/observability"
	"github.com/ent0n29/greta/internal/session"
	"github.com/ent0n29/greta/internal/weather"
)

func main() {
	// Local development convenience; a missing .env is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)
	stages := observability.NewStageWindow(256)

	ctx := context.Background()
	archive, err := memory.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("transcript store init failed: %v", err)
	}
	defer archive.Close()

	weatherClient := weather.NewHTTPClient(cfg.WeatherAPIURL, cfg.CollaboratorTimeout)
	calendarClient := calendar.NewHTTPClient(cfg.CalendarAPIURL, cfg.CalendarID, cfg.CollaboratorTimeout)
	log.Printf("calendar id: %s", calendarClient.CalendarID())

	svc := assistant.NewService(assistant.Config{
		Parser:   nlu.NewParser(nlu.Config{DefaultHour: cfg.DefaultAppointmentHour}),
		Weather:  weatherClient,
		Calendar: calendarClient,
		Archive:  archive,
		Metrics:  metrics,
		Stages:   stages,
	})

	conversations := session.NewManager(cfg.ConversationInactivityTimeout)
	conversations.SetExpireHook(func(_ session.Snapshot) {
		metrics.ConversationEvents.WithLabelValues("expired").Inc()
		metrics.ActiveConversations.Set(float64(conversations.ActiveCount()))
	})

	api := httpapi.New(cfg, conversations, svc, metrics, stages)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()
	conversations.StartJanitor(runCtx, 30*time.Second)

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	runCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}
