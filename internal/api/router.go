package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/openvoice/agent-gateway/internal/agentstore"
	"github.com/openvoice/agent-gateway/internal/config"
	"github.com/openvoice/agent-gateway/internal/observability"
	"github.com/openvoice/agent-gateway/internal/voice"
)

// NewRouter constructs the HTTP router with middleware and routes.
func NewRouter(
	cfg *config.Config,
	gw voice.Gateway,
	store agentstore.Store,
	replies ReplyGenerator,
	logger zerolog.Logger,
	readyChecks map[string]observability.HealthCheckFunc,
) chi.Router {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logger))
	r.Use(CORSMiddleware)

	h := NewHandler(gw, store, replies, cfg.MaxSampleBytes, logger)

	r.Get("/health", observability.HealthCheckHandler())
	r.Get("/ready", observability.ReadinessHandler(readyChecks))
	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Get("/v1/voices", h.HandleListVoices)
	r.Post("/v1/voices", h.HandleEnrollVoice)

	r.Post("/v1/synthesize", h.HandleSynthesize)

	r.Post("/v1/agents", h.HandleCreateAgent)
	r.Get("/v1/agents", h.HandleListAgents)
	r.Get("/v1/agents/{id}", h.HandleGetAgent)
	r.Put("/v1/agents/{id}", h.HandleUpdateAgent)
	r.Delete("/v1/agents/{id}", h.HandleDeleteAgent)
	r.Post("/v1/agents/{id}/respond", h.HandleAgentRespond)

	return r
}
