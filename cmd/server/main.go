// SentinelShield - Multi-Tenant Security Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentinelshield/sentinelshield

// Package main is the entry point for the SentinelShield backend.
//
// SentinelShield streams AI-flagged threat detections to security
// analysts over tenant-isolated WebSocket connections and turns analyst
// feedback into model retraining jobs.
//
// Startup order:
//
//  1. Configuration: koanf v2 layered loading (defaults, config.yaml,
//     SENTINEL_* environment variables)
//  2. Logging: zerolog global logger
//  3. Storage: BadgerDB for feedback items and retraining job history
//  4. Realtime: message queue store, connection registry, broadcast router
//  5. Feedback: buffer, trainer notifier, retraining orchestrator
//  6. NATS (optional): embedded or external JetStream for threat ingest
//  7. HTTP server: chi API with JWT auth, rate limiting, /metrics
//
// Shutdown is signal driven (SIGINT/SIGTERM): the supervision tree
// drains the HTTP server and messaging services, then storage closes.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sentinelshield/sentinelshield/internal/api"
	"github.com/sentinelshield/sentinelshield/internal/auth"
	"github.com/sentinelshield/sentinelshield/internal/config"
	"github.com/sentinelshield/sentinelshield/internal/feedback"
	"github.com/sentinelshield/sentinelshield/internal/ingest"
	"github.com/sentinelshield/sentinelshield/internal/logging"
	"github.com/sentinelshield/sentinelshield/internal/realtime"
	"github.com/sentinelshield/sentinelshield/internal/supervisor"
	"github.com/sentinelshield/sentinelshield/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	logging.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Msg("Starting SentinelShield")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Storage
	store, err := feedback.NewBadgerStore(cfg.Feedback.StorePath)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open feedback store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing feedback store")
		}
	}()

	// Realtime layer
	queue := realtime.NewQueueStore(cfg.Realtime.QueueCapacity)
	registry := realtime.NewRegistry(queue,
		realtime.WithHeartbeatInterval(cfg.Realtime.HeartbeatInterval))
	router := realtime.NewRouter(registry, cfg.Security.AdminRole)

	// Feedback layer
	buffer, err := feedback.NewBuffer(cfg.Feedback.RetrainThreshold, store)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load feedback buffer")
	}
	notifier := feedback.NewTrainerNotifier(feedback.TrainerConfig{
		URL:     cfg.Feedback.TrainerURL,
		Timeout: cfg.Feedback.TrainerTimeout,
	})
	orchestrator, err := feedback.NewOrchestrator(buffer, store, notifier)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load retraining orchestrator")
	}

	// Authentication
	jwtManager, err := auth.NewJWTManager(cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
	}

	// Supervision tree
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})

	// NATS threat ingest (optional)
	if cfg.NATS.Enabled {
		natsURL, embedded, err := startNATS(ctx, cfg.NATS)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to start NATS")
		}
		if embedded != nil {
			defer func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
				defer shutdownCancel()
				if err := embedded.Shutdown(shutdownCtx); err != nil {
					logging.Error().Err(err).Msg("Error stopping embedded NATS server")
				}
			}()
		}

		subscriber, err := ingest.NewSubscriber(natsURL, cfg.NATS)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to create NATS subscriber")
		}
		defer subscriber.Close()

		tree.AddMessagingService(ingest.NewBridge(subscriber, router, cfg.NATS.ThreatSubject))
		logging.Info().Str("subject", cfg.NATS.ThreatSubject).Msg("Threat ingest added to supervisor tree")
	} else {
		logging.Info().Msg("NATS ingest disabled")
	}

	// Scheduled retraining checks
	tree.AddMessagingService(feedback.NewScheduler(orchestrator, cfg.Feedback.CheckInterval))

	// HTTP server
	handler := api.NewHandler(cfg, registry, router, buffer, orchestrator, jwtManager)
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler.Routes(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// Signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	logging.Info().Msg("Application stopped gracefully")
}

// startNATS starts the embedded server when configured and provisions
// the threat stream. Returns the client URL and the embedded server
// handle (nil when using an external broker).
func startNATS(ctx context.Context, cfg config.NATSConfig) (string, *ingest.EmbeddedServer, error) {
	url := cfg.URL
	var embedded *ingest.EmbeddedServer

	if cfg.EmbeddedServer {
		var err error
		embedded, err = ingest.NewEmbeddedServer(cfg)
		if err != nil {
			return "", nil, err
		}
		url = embedded.ClientURL()
	}

	streamCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := ingest.EnsureStream(streamCtx, url, cfg); err != nil {
		if embedded != nil {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			_ = embedded.Shutdown(shutdownCtx)
		}
		return "", nil, err
	}

	return url, embedded, nil
}
