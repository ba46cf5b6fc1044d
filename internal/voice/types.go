package voice

import "context"

// VoiceDescriptor identifies a synthetic voice available for speech generation.
// Descriptors are provider-assigned and read-only.
type VoiceDescriptor struct {
	// ID is the opaque provider-assigned voice identifier
	ID string `json:"voice_id"`

	// Name is the human-readable voice name
	Name string `json:"name"`

	// Category is the provider's coarse grouping (premade, cloned, ...)
	Category string `json:"category,omitempty"`

	// Labels holds free-text tags attached by the provider
	Labels map[string]string `json:"labels,omitempty"`
}

// EnrollmentRequest registers a new voice profile from an audio sample.
// The audio bytes are never retained past the enroll call.
type EnrollmentRequest struct {
	// Name of the new voice profile (required)
	Name string

	// Description is optional free text shown alongside the voice
	Description string

	// Audio is the raw sample payload (required)
	Audio []byte

	// MIMEType declares the sample encoding (audio/wav, audio/mpeg, audio/mp4)
	MIMEType string
}

// VoiceSettings controls voice characteristics for synthesis.
type VoiceSettings struct {
	// Stability controls voice consistency (0.0-1.0)
	Stability float64 `json:"stability"`

	// SimilarityBoost controls closeness to the original voice sample (0.0-1.0)
	SimilarityBoost float64 `json:"similarity_boost"`

	// Style controls style exaggeration (0.0-1.0, v2 models only)
	Style float64 `json:"style,omitempty"`

	// SpeakerBoost enhances speaker clarity
	SpeakerBoost bool `json:"use_speaker_boost,omitempty"`
}

// DefaultVoiceSettings returns sensible defaults for voice synthesis.
func DefaultVoiceSettings() VoiceSettings {
	return VoiceSettings{
		Stability:       0.5,
		SimilarityBoost: 0.75,
	}
}

// SynthesisRequest converts text into audio using a specified or default voice.
type SynthesisRequest struct {
	// Text to synthesize (required)
	Text string `json:"text"`

	// VoiceID selects the voice; empty means the provider default
	VoiceID string `json:"voice_id,omitempty"`

	// ModelID selects the synthesis model; empty means the configured default
	ModelID string `json:"model_id,omitempty"`

	// Settings optionally tunes voice style for this request
	Settings *VoiceSettings `json:"voice_settings,omitempty"`
}

// SynthesisResult is the complete audio output of one synthesis call.
// The caller decides whether to persist or stream it; the gateway keeps nothing.
type SynthesisResult struct {
	// Audio is the raw audio byte stream
	Audio []byte

	// MIMEType declares the audio encoding (typically audio/mpeg)
	MIMEType string
}

// Gateway is the stable contract callers integrate against. Any transport
// (REST handler, CLI, RPC) can host it; the provider credential stays behind it.
type Gateway interface {
	// ListVoices returns the provider's voice catalog in provider order.
	ListVoices(ctx context.Context) ([]VoiceDescriptor, error)

	// EnrollVoice registers a new voice profile from an audio sample.
	// Not idempotent: repeated calls create distinct provider-side voices.
	EnrollVoice(ctx context.Context, req EnrollmentRequest) (*VoiceDescriptor, error)

	// Synthesize converts text to speech with the requested or default voice.
	Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error)
}

// Provider is the upstream transport behind the gateway. Implementations speak
// to the speech provider over whatever protocol they like; input has already
// been validated by the time a Provider method is called.
type Provider interface {
	ListVoices(ctx context.Context) ([]VoiceDescriptor, error)
	EnrollVoice(ctx context.Context, req EnrollmentRequest) (*VoiceDescriptor, error)
	Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error)
}

// AcceptedSampleTypes lists the MIME types accepted for enrollment samples.
var AcceptedSampleTypes = map[string]bool{
	"audio/wav":   true,
	"audio/x-wav": true,
	"audio/wave":  true,
	"audio/mpeg":  true,
	"audio/mp3":   true,
	"audio/mp4":   true,
	"audio/x-m4a": true,
}
