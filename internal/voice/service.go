package voice

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/openvoice/agent-gateway/internal/observability"
)

// Service implements Gateway over a Provider. It validates caller input,
// delegates one upstream call per operation, and records metrics. It holds
// no mutable state between calls, so concurrent use needs no locking.
type Service struct {
	provider Provider
	logger   zerolog.Logger
}

var _ Gateway = (*Service)(nil)

// NewService creates a gateway service backed by the given provider.
func NewService(provider Provider, logger zerolog.Logger) *Service {
	return &Service{
		provider: provider,
		logger:   logger.With().Str("component", "gateway").Logger(),
	}
}

// ListVoices returns the provider's voice catalog, preserving provider order.
func (s *Service) ListVoices(ctx context.Context) ([]VoiceDescriptor, error) {
	start := time.Now()
	voices, err := s.provider.ListVoices(ctx)
	observability.RecordGatewayRequest("list_voices", errorKind(err), time.Since(start))

	if err != nil {
		s.logger.Error().Err(err).Msg("list voices failed")
		return nil, err
	}

	s.logger.Debug().Int("count", len(voices)).Msg("listed voices")
	return voices, nil
}

// EnrollVoice validates and registers a new voice profile. Validation failures
// return before any network call is made.
func (s *Service) EnrollVoice(ctx context.Context, req EnrollmentRequest) (*VoiceDescriptor, error) {
	if err := validateEnrollment(req); err != nil {
		observability.RecordGatewayRequest("enroll_voice", errorKind(err), 0)
		return nil, err
	}

	start := time.Now()
	desc, err := s.provider.EnrollVoice(ctx, req)
	observability.RecordGatewayRequest("enroll_voice", errorKind(err), time.Since(start))

	if err != nil {
		s.logger.Error().Err(err).Str("name", req.Name).Msg("voice enrollment failed")
		return nil, err
	}

	s.logger.Info().
		Str("voice_id", desc.ID).
		Str("name", desc.Name).
		Int("sample_bytes", len(req.Audio)).
		Msg("voice enrolled")
	return desc, nil
}

// Synthesize validates and converts text to speech. A successful result always
// carries non-empty audio; an empty provider response is surfaced as an error.
func (s *Service) Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error) {
	if err := validateSynthesis(req); err != nil {
		observability.RecordGatewayRequest("synthesize", errorKind(err), 0)
		return nil, err
	}

	start := time.Now()
	result, err := s.provider.Synthesize(ctx, req)
	if err == nil && len(result.Audio) == 0 {
		err = &UpstreamError{StatusCode: 200, Body: "provider returned empty audio"}
		result = nil
	}
	observability.RecordGatewayRequest("synthesize", errorKind(err), time.Since(start))

	if err != nil {
		s.logger.Error().Err(err).Str("voice_id", req.VoiceID).Msg("synthesis failed")
		return nil, err
	}

	observability.RecordAudioBytes("out", int64(len(result.Audio)))
	s.logger.Debug().
		Str("voice_id", req.VoiceID).
		Int("text_chars", len(req.Text)).
		Int("audio_bytes", len(result.Audio)).
		Msg("synthesized speech")
	return result, nil
}

func validateEnrollment(req EnrollmentRequest) error {
	if req.Name == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if len(req.Audio) == 0 {
		return &ValidationError{Field: "audio", Reason: "sample must not be empty"}
	}
	if !AcceptedSampleTypes[req.MIMEType] {
		return &ValidationError{Field: "audio", Reason: "unsupported sample type " + req.MIMEType}
	}
	return nil
}

func validateSynthesis(req SynthesisRequest) error {
	if req.Text == "" {
		return &ValidationError{Field: "text", Reason: "must not be empty"}
	}
	return nil
}

// errorKind maps an error to its metric label. "ok" for success.
func errorKind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsValidation(err):
		return "validation"
	case errors.Is(err, ErrAuth):
		return "auth"
	case errors.Is(err, ErrPayloadTooLarge):
		return "payload_too_large"
	case errors.Is(err, ErrUpstreamUnavailable):
		return "upstream_unavailable"
	case errors.Is(err, ErrCancelled):
		return "cancelled"
	case IsUpstream(err):
		return "upstream_error"
	default:
		return "internal"
	}
}
