// Package elevenlabs speaks to the ElevenLabs HTTP API. It is the one place
// that knows the provider's wire format; callers only see the voice.Provider
// contract and the normalized error kinds.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/openvoice/agent-gateway/internal/config"
	"github.com/openvoice/agent-gateway/internal/voice"
)

// DefaultVoiceID is the documented fallback voice used when a synthesis
// request names no voice and none is configured.
const DefaultVoiceID = "21m00Tcm4TlvDq8ikWAM" // "Rachel", American female, calm

const apiKeyHeader = "xi-api-key"

// Client implements voice.Provider against the ElevenLabs API.
// Each operation is a single upstream attempt bounded by its own timeout;
// the client holds no per-call state, so concurrent use is safe.
type Client struct {
	baseURL        string
	apiKey         string
	defaultModelID string
	defaultVoiceID string
	httpClient     *http.Client

	listTimeout   time.Duration
	enrollTimeout time.Duration
	synthTimeout  time.Duration
}

var _ voice.Provider = (*Client)(nil)

// NewClient creates an ElevenLabs client with connection pooling.
func NewClient(cfg *config.Config) *Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
	}

	defaultVoice := cfg.DefaultVoiceID
	if defaultVoice == "" {
		defaultVoice = DefaultVoiceID
	}

	return &Client{
		baseURL:        strings.TrimRight(cfg.ProviderBaseURL, "/"),
		apiKey:         cfg.ProviderAPIKey,
		defaultModelID: cfg.DefaultModelID,
		defaultVoiceID: defaultVoice,
		httpClient:     &http.Client{Transport: transport},
		listTimeout:    cfg.ListVoicesTimeout(),
		enrollTimeout:  cfg.EnrollmentTimeout(),
		synthTimeout:   cfg.SynthesisTimeout(),
	}
}

type voicesResponse struct {
	Voices []voice.VoiceDescriptor `json:"voices"`
}

// ListVoices reads the provider's voice catalog, preserving response order.
func (c *Client) ListVoices(ctx context.Context) ([]voice.VoiceDescriptor, error) {
	ctx, cancel := context.WithTimeout(ctx, c.listTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/voices", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.transportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, mapStatus(resp)
	}

	var result voicesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode voice list: %w", err)
	}

	return result.Voices, nil
}

// EnrollVoice uploads an audio sample as a multipart form and returns the
// created voice. The sample bytes are not retained after the call returns.
func (c *Client) EnrollVoice(ctx context.Context, req voice.EnrollmentRequest) (*voice.VoiceDescriptor, error) {
	ctx, cancel := context.WithTimeout(ctx, c.enrollTimeout)
	defer cancel()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if err := form.WriteField("name", req.Name); err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}
	if req.Description != "" {
		if err := form.WriteField("description", req.Description); err != nil {
			return nil, fmt.Errorf("failed to build form: %w", err)
		}
	}
	part, err := form.CreateFormFile("files", "sample"+sampleExtension(req.MIMEType))
	if err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}
	if _, err := part.Write(req.Audio); err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/voices/add", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set(apiKeyHeader, c.apiKey)
	httpReq.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.transportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, mapStatus(resp)
	}

	var desc voice.VoiceDescriptor
	if err := json.NewDecoder(resp.Body).Decode(&desc); err != nil {
		return nil, fmt.Errorf("failed to decode enrollment response: %w", err)
	}
	if desc.Name == "" {
		// The add endpoint may return only the voice_id.
		desc.Name = req.Name
	}

	return &desc, nil
}

type synthesisPayload struct {
	Text          string               `json:"text"`
	ModelID       string               `json:"model_id,omitempty"`
	VoiceSettings *voice.VoiceSettings `json:"voice_settings,omitempty"`
}

// Synthesize converts text to audio. Invalid voice references surface as
// provider 4xx responses, which are mapped to ValidationError.
func (c *Client) Synthesize(ctx context.Context, req voice.SynthesisRequest) (*voice.SynthesisResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.synthTimeout)
	defer cancel()

	voiceID := req.VoiceID
	if voiceID == "" {
		voiceID = c.defaultVoiceID
	}
	modelID := req.ModelID
	if modelID == "" {
		modelID = c.defaultModelID
	}

	payload, err := json.Marshal(synthesisPayload{
		Text:          req.Text,
		ModelID:       modelID,
		VoiceSettings: req.Settings,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := c.baseURL + "/v1/text-to-speech/" + url.PathEscape(voiceID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set(apiKeyHeader, c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "audio/mpeg")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.transportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		mapped := mapStatus(resp)
		// A 4xx here means the caller sent something the provider rejected,
		// typically an unknown voice id.
		var ue *voice.UpstreamError
		if errors.As(mapped, &ue) && ue.StatusCode >= 400 && ue.StatusCode < 500 {
			return nil, &voice.ValidationError{Reason: fmt.Sprintf("provider rejected request (status %d): %s", ue.StatusCode, ue.Body)}
		}
		return nil, mapped
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		// The body read can fail for the same reasons the round trip can.
		return nil, c.transportError(ctx, fmt.Errorf("reading audio response: %w", err))
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "audio/mpeg"
	}

	return &voice.SynthesisResult{Audio: audio, MIMEType: mimeType}, nil
}

// transportError normalizes a failed round trip. Caller cancellation is
// distinguished from a stalled or unreachable provider.
func (c *Client) transportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("%w: %v", voice.ErrCancelled, err)
	}
	return fmt.Errorf("%w: %v", voice.ErrUpstreamUnavailable, err)
}

// mapStatus converts a non-2xx provider response into a typed error.
// The body is read in full so the connection can be reused; it never
// contains the credential.
func mapStatus(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w (status %d)", voice.ErrAuth, resp.StatusCode)
	case http.StatusRequestEntityTooLarge:
		return fmt.Errorf("%w (status %d)", voice.ErrPayloadTooLarge, resp.StatusCode)
	default:
		return &voice.UpstreamError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
}

func sampleExtension(mimeType string) string {
	switch mimeType {
	case "audio/wav", "audio/x-wav", "audio/wave":
		return ".wav"
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/mp4", "audio/x-m4a":
		return ".m4a"
	default:
		return ""
	}
}
