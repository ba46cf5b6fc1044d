package elevenlabs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openvoice/agent-gateway/internal/config"
	"github.com/openvoice/agent-gateway/internal/voice"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		ProviderAPIKey:    "test-key",
		ProviderBaseURL:   baseURL,
		DefaultModelID:    "eleven_multilingual_v2",
		ListTimeout:       15,
		SynthesizeTimeout: 30,
		EnrollTimeout:     60,
	}
}

func TestListVoices_PreservesProviderOrder(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/voices", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("xi-api-key"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"voices":[
			{"voice_id":"v1","name":"alpha","category":"premade"},
			{"voice_id":"v2","name":"beta","category":"cloned","labels":{"accent":"british"}},
			{"voice_id":"v3","name":"gamma"}
		]}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	voices, err := client.ListVoices(context.Background())
	require.NoError(t, err)

	require.Len(t, voices, 3)
	assert.Equal(t, "v1", voices[0].ID)
	assert.Equal(t, "v2", voices[1].ID)
	assert.Equal(t, "v3", voices[2].ID)
	assert.Equal(t, "british", voices[1].Labels["accent"])
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
}

func TestEnrollVoice_RoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/voices/add", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "demo-voice", r.FormValue("name"))

		file, header, err := r.FormFile("files")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "sample.wav", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"voice_id":"v123","name":"demo-voice"}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	desc, err := client.EnrollVoice(context.Background(), voice.EnrollmentRequest{
		Name:     "demo-voice",
		Audio:    []byte("RIFF0000WAVE"),
		MIMEType: "audio/wav",
	})
	require.NoError(t, err)

	assert.Equal(t, "v123", desc.ID)
	assert.Equal(t, "demo-voice", desc.Name)
}

func TestEnrollVoice_NameFallback(t *testing.T) {
	// The add endpoint may return only the voice_id.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"voice_id":"v9"}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	desc, err := client.EnrollVoice(context.Background(), voice.EnrollmentRequest{
		Name:     "fallback",
		Audio:    []byte("abc"),
		MIMEType: "audio/mpeg",
	})
	require.NoError(t, err)

	assert.Equal(t, "v9", desc.ID)
	assert.Equal(t, "fallback", desc.Name)
}

func TestEnrollVoice_PayloadTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "sample too large", http.StatusRequestEntityTooLarge)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	_, err := client.EnrollVoice(context.Background(), voice.EnrollmentRequest{
		Name:     "big",
		Audio:    []byte("abc"),
		MIMEType: "audio/wav",
	})
	assert.ErrorIs(t, err, voice.ErrPayloadTooLarge)
}

func TestSynthesize_ReturnsExactAudio(t *testing.T) {
	audio := []byte{0xFF, 0xFB, 0x90, 0x44, 0x00}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/text-to-speech/v123", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("xi-api-key"))

		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write(audio)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	result, err := client.Synthesize(context.Background(), voice.SynthesisRequest{
		Text:    "Hello world",
		VoiceID: "v123",
	})
	require.NoError(t, err)

	assert.Equal(t, audio, result.Audio)
	assert.Equal(t, "audio/mpeg", result.MIMEType)
}

func TestSynthesize_DefaultVoiceFallback(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte{0x01})
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	_, err := client.Synthesize(context.Background(), voice.SynthesisRequest{Text: "hi"})
	require.NoError(t, err)

	assert.Equal(t, "/v1/text-to-speech/"+DefaultVoiceID, gotPath)
}

func TestSynthesize_UnknownVoiceIsValidationError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"voice not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	_, err := client.Synthesize(context.Background(), voice.SynthesisRequest{
		Text:    "hi",
		VoiceID: "nope",
	})
	require.Error(t, err)
	assert.True(t, voice.IsValidation(err), "expected ValidationError, got %v", err)
}

func TestSynthesize_ServerErrorIsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	_, err := client.Synthesize(context.Background(), voice.SynthesisRequest{Text: "hi", VoiceID: "v1"})
	require.Error(t, err)

	var ue *voice.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusInternalServerError, ue.StatusCode)
	assert.Equal(t, "internal", ue.Body)
}

func TestAuthError_AllOperations_SingleAttempt(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		http.Error(w, `{"detail":"invalid api key"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	ctx := context.Background()

	_, err := client.ListVoices(ctx)
	assert.ErrorIs(t, err, voice.ErrAuth)
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))

	_, err = client.EnrollVoice(ctx, voice.EnrollmentRequest{
		Name: "x", Audio: []byte("abc"), MIMEType: "audio/wav",
	})
	assert.ErrorIs(t, err, voice.ErrAuth)
	assert.Equal(t, int64(2), atomic.LoadInt64(&calls))

	_, err = client.Synthesize(ctx, voice.SynthesisRequest{Text: "hi", VoiceID: "v1"})
	assert.ErrorIs(t, err, voice.ErrAuth)
	assert.Equal(t, int64(3), atomic.LoadInt64(&calls))
}

func TestSynthesize_TimeoutIsUpstreamUnavailable(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	cfg := testConfig(server.URL)
	cfg.RequestTimeout = 1 // override all operations down to 1s

	client := NewClient(cfg)
	start := time.Now()
	_, err := client.Synthesize(context.Background(), voice.SynthesisRequest{Text: "hi", VoiceID: "v1"})
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, voice.ErrUpstreamUnavailable)
	assert.Less(t, elapsed, 5*time.Second, "timeout must be bounded")
}

func TestSynthesize_CancellationMidBody(t *testing.T) {
	started := make(chan struct{})
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte{0xFF, 0xFB})
		w.(http.Flusher).Flush()
		close(started)
		<-block
	}))
	defer server.Close()
	defer close(block)

	client := NewClient(testConfig(server.URL))
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	// Headers arrive, then the caller cancels while the body is streaming.
	_, err := client.Synthesize(ctx, voice.SynthesisRequest{Text: "hi", VoiceID: "v1"})
	assert.ErrorIs(t, err, voice.ErrCancelled)
}

func TestSynthesize_CallerCancellation(t *testing.T) {
	started := make(chan struct{})
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-block
	}))
	defer server.Close()
	defer close(block)

	client := NewClient(testConfig(server.URL))
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := client.Synthesize(ctx, voice.SynthesisRequest{Text: "hi", VoiceID: "v1"})
	assert.ErrorIs(t, err, voice.ErrCancelled)
}
