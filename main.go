package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/training-match/internal/club"
	"github.com/mauv0809/training-match/internal/config"
	"github.com/mauv0809/training-match/internal/database"
	server "github.com/mauv0809/training-match/internal/http"
	"github.com/mauv0809/training-match/internal/match"
	"github.com/mauv0809/training-match/internal/metrics"
	"github.com/mauv0809/training-match/internal/notifier"
	"github.com/mauv0809/training-match/internal/notifier/hub"
	"github.com/mauv0809/training-match/internal/notifier/slack"
	"github.com/mauv0809/training-match/internal/pubsub"
	"github.com/mauv0809/training-match/internal/sweeper"
	"github.com/mauv0809/training-match/internal/training"
)

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
	dbInitDuration := time.Since(startTime)
	log.Info("Database initialization time recorded", "duration_ms", dbInitDuration.Milliseconds())
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer func() {
		log.Info("Closing database connection")
		dbTeardown()
	}()

	clubStore := club.New(db)
	matchStore := match.New(db, cfg.DBQueryTimeout)
	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()

	// --- Notification sinks ---
	liveHub := hub.New()
	sinks := notifier.Fanout{liveHub}
	var pubsubClient pubsub.PubSubClient
	if cfg.PubSubEnabled() {
		pubsubClient, err = pubsub.New(context.Background(), cfg.ProjectID)
		if err != nil {
			log.Fatalf("Failed to initialize pubsub: %s", err)
		}
		sinks = append(sinks, pubsub.NewSink(pubsubClient, cfg.Topic))
		log.Info("Publishing match events to Pub/Sub", "project", cfg.ProjectID, "topic", cfg.Topic)
	}
	if cfg.SlackEnabled() {
		sinks = append(sinks, slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, cfg.Slack.DryRun))
		log.Info("Posting match results to Slack", "channel", cfg.Slack.ChannelID, "dryRun", cfg.Slack.DryRun)
	}
	dispatcher := notifier.NewDispatcher(sinks, cfg.NotifyBuffer, cfg.NotifyTimeout, metricsSvc)

	trainingSvc := training.New(matchStore, clubStore, cfg.Handicap, dispatcher, metricsSvc)

	sweep, err := sweeper.New(trainingSvc, cfg.SweepInterval, cfg.StaleAfter)
	if err != nil {
		log.Fatalf("Failed to initialize sweeper: %s", err)
	}
	sweep.Start()

	s := server.NewServer(trainingSvc, clubStore, liveHub, metricsHandler, cfg.StaleAfter)

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: s,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	go func() {
		log.Info("Server started", "port", cfg.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := sweep.Shutdown(); err != nil {
			log.Error("Sweeper shutdown failed", "error", err)
		}
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
		// Pending events are delivered before the sinks go away.
		if err := dispatcher.Close(ctx); err != nil {
			log.Error("Failed to drain notifications", "error", err)
		}
		liveHub.Close()
		if pubsubClient != nil {
			if err := pubsubClient.Close(); err != nil {
				log.Error("Failed to close pubsub client", "error", err)
			}
		}
	}

	log.Info("Server process shutting down")
}
