package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the agent gateway service
type Config struct {
	// Server configuration
	Port string `envconfig:"PORT" default:"8080"`

	// Speech provider configuration. The API key is the one credential the
	// gateway owns; it is sent upstream on every request and never logged
	// or returned to a caller.
	ProviderAPIKey  string `envconfig:"PROVIDER_API_KEY" required:"true"`
	ProviderBaseURL string `envconfig:"PROVIDER_BASE_URL" default:"https://api.elevenlabs.io"`
	DefaultModelID  string `envconfig:"PROVIDER_MODEL_ID" default:"eleven_multilingual_v2"`
	DefaultVoiceID  string `envconfig:"PROVIDER_VOICE_ID" default:""` // empty = provider default

	// Upstream timeouts, per operation. REQUEST_TIMEOUT_SECONDS, when set,
	// overrides all three.
	RequestTimeout    int `envconfig:"REQUEST_TIMEOUT_SECONDS" default:"0"`
	ListTimeout       int `envconfig:"LIST_TIMEOUT_SECONDS" default:"15"`
	SynthesizeTimeout int `envconfig:"SYNTHESIZE_TIMEOUT_SECONDS" default:"30"`
	EnrollTimeout     int `envconfig:"ENROLL_TIMEOUT_SECONDS" default:"60"`

	// MaxSampleBytes caps enrollment uploads before they are spooled;
	// larger samples are rejected locally instead of burning provider quota.
	MaxSampleBytes int64 `envconfig:"MAX_SAMPLE_BYTES" default:"10485760"` // 10 MiB

	// Agent store configuration. Empty REDIS_ADDR selects the in-memory store.
	RedisAddr     string `envconfig:"REDIS_ADDR" default:""`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Observability configuration
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`       // Log level: debug, info, warn, error
	LogPretty      bool   `envconfig:"LOG_PRETTY" default:"false"`     // Pretty print logs (for development)
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"true"` // Enable Prometheus metrics
}

// Load reads configuration from environment variables.
// It first attempts to load from .env file if it exists, then from environment.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	return LoadFromEnv()
}

// LoadFromEnv loads configuration directly from environment variables
// without attempting to load .env file (useful for containerized deployments)
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.ProviderAPIKey == "" {
		return nil, fmt.Errorf("PROVIDER_API_KEY is required")
	}

	return &cfg, nil
}

// ListVoicesTimeout returns the effective timeout for voice catalog reads.
func (c *Config) ListVoicesTimeout() time.Duration {
	return c.timeout(c.ListTimeout)
}

// SynthesisTimeout returns the effective timeout for synthesis calls.
func (c *Config) SynthesisTimeout() time.Duration {
	return c.timeout(c.SynthesizeTimeout)
}

// EnrollmentTimeout returns the effective timeout for enrollment uploads.
func (c *Config) EnrollmentTimeout() time.Duration {
	return c.timeout(c.EnrollTimeout)
}

func (c *Config) timeout(perOp int) time.Duration {
	if c.RequestTimeout > 0 {
		return time.Duration(c.RequestTimeout) * time.Second
	}
	return time.Duration(perOp) * time.Second
}
