package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openvoice/agent-gateway/internal/agentstore"
	"github.com/openvoice/agent-gateway/internal/api"
	"github.com/openvoice/agent-gateway/internal/config"
	"github.com/openvoice/agent-gateway/internal/elevenlabs"
	"github.com/openvoice/agent-gateway/internal/observability"
	"github.com/openvoice/agent-gateway/internal/voice"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Use fmt for fatal errors before logger is initialized
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	observability.InitLogger(cfg.LogLevel, cfg.LogPretty)
	logger := observability.GetLogger()

	logger.Info().
		Str("port", cfg.Port).
		Str("provider_base_url", cfg.ProviderBaseURL).
		Str("log_level", cfg.LogLevel).
		Bool("metrics_enabled", cfg.MetricsEnabled).
		Msg("Agent Gateway Service starting")

	// Provider client and gateway
	provider := elevenlabs.NewClient(cfg)
	gateway := voice.NewService(provider, logger)

	// Agent store: Redis when configured, in-memory otherwise
	var store agentstore.Store
	if cfg.RedisAddr != "" {
		redisStore, err := agentstore.NewRedisStore(context.Background(), cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect agent store")
		}
		store = redisStore
		logger.Info().Str("redis_addr", cfg.RedisAddr).Msg("Using Redis agent store")
	} else {
		store = agentstore.NewMemoryStore()
		logger.Info().Msg("Using in-memory agent store (agents will not survive a restart)")
	}
	defer store.Close()

	// Readiness checks. The provider check validates configuration only;
	// an actual catalog read would spend provider quota on every check.
	readyChecks := map[string]observability.HealthCheckFunc{
		"provider": func(ctx context.Context) (bool, error) {
			if cfg.ProviderAPIKey == "" {
				return false, fmt.Errorf("provider credential not configured")
			}
			return true, nil
		},
	}
	if redisStore, ok := store.(*agentstore.RedisStore); ok {
		readyChecks["agent_store"] = func(ctx context.Context) (bool, error) {
			if err := redisStore.Ping(ctx); err != nil {
				return false, err
			}
			return true, nil
		}
	}

	router := api.NewRouter(cfg, gateway, store, api.StaticReplyGenerator{}, logger, readyChecks)

	// Create HTTP server with timeouts. Write timeout leaves headroom for
	// the longest upstream operation (enrollment).
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.EnrollmentTimeout() + 15*time.Second,
		WriteTimeout: cfg.EnrollmentTimeout() + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("endpoint", fmt.Sprintf("http://localhost:%s/v1", cfg.Port)).
			Msg("Server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			// Fatal would skip the deferred store close.
			logger.Error().Err(err).Msg("Server failed to start")
			store.Close()
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
		store.Close()
		os.Exit(1)
	}

	logger.Info().Msg("Server exited gracefully")
}
