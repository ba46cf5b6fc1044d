package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/openvoice/agent-gateway/internal/agentstore"
	"github.com/openvoice/agent-gateway/internal/scratch"
	"github.com/openvoice/agent-gateway/internal/voice"
)

// Handler hosts the gateway contract over REST. The agent store and reply
// generator are collaborators of the caller side; the gateway itself stays
// stateless behind the voice.Gateway interface.
type Handler struct {
	gateway        voice.Gateway
	store          agentstore.Store
	replies        ReplyGenerator
	maxSampleBytes int64
	logger         zerolog.Logger
}

// NewHandler creates the REST handler set.
func NewHandler(gw voice.Gateway, store agentstore.Store, replies ReplyGenerator, maxSampleBytes int64, logger zerolog.Logger) *Handler {
	return &Handler{
		gateway:        gw,
		store:          store,
		replies:        replies,
		maxSampleBytes: maxSampleBytes,
		logger:         logger.With().Str("component", "api").Logger(),
	}
}

type voicesListResponse struct {
	Voices []voice.VoiceDescriptor `json:"voices"`
}

// HandleListVoices serves GET /v1/voices.
func (h *Handler) HandleListVoices(w http.ResponseWriter, r *http.Request) {
	voices, err := h.gateway.ListVoices(r.Context())
	if err != nil {
		WriteGatewayError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, voicesListResponse{Voices: voices})
}

// formOverheadBytes is the allowance for multipart boundaries and the
// name/description fields on top of the sample itself.
const formOverheadBytes = 1 << 20

// HandleEnrollVoice serves POST /v1/voices. The request is a multipart form
// with a "name" field, optional "description", and one "sample" file part.
// The body is capped before parsing so an oversize upload is cut off on the
// wire, not buffered; the sample is then spooled to a call-scoped temp file
// that is removed on every exit path.
func (h *Handler) HandleEnrollVoice(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxSampleBytes+formOverheadBytes)

	file, header, err := r.FormFile("sample")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			WriteError(w, http.StatusRequestEntityTooLarge, "payload_too_large",
				"upload exceeds size limit", hintFixInput)
			return
		}
		WriteError(w, http.StatusBadRequest, "validation_error", "missing sample file part", hintFixInput)
		return
	}
	defer file.Close()

	sp, err := scratch.Write(file, h.maxSampleBytes)
	if err != nil {
		if errors.Is(err, scratch.ErrTooLarge) {
			WriteError(w, http.StatusRequestEntityTooLarge, "payload_too_large", err.Error(), hintFixInput)
			return
		}
		h.logger.Error().Err(err).Msg("failed to spool upload")
		WriteError(w, http.StatusInternalServerError, "internal", "failed to buffer upload", hintRetryLater)
		return
	}
	defer sp.Close()

	audio, err := sp.Bytes()
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to read spooled upload")
		WriteError(w, http.StatusInternalServerError, "internal", "failed to buffer upload", hintRetryLater)
		return
	}

	desc, err := h.gateway.EnrollVoice(r.Context(), voice.EnrollmentRequest{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Audio:       audio,
		MIMEType:    sampleMIMEType(header.Header.Get("Content-Type"), header.Filename),
	})
	if err != nil {
		WriteGatewayError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, desc)
}

// HandleSynthesize serves POST /v1/synthesize, returning raw audio bytes.
func (h *Handler) HandleSynthesize(w http.ResponseWriter, r *http.Request) {
	var req voice.SynthesisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "validation_error", "invalid JSON body: "+err.Error(), hintFixInput)
		return
	}

	result, err := h.gateway.Synthesize(r.Context(), req)
	if err != nil {
		WriteGatewayError(w, err)
		return
	}

	WriteAudio(w, result.MIMEType, result.Audio)
}

type agentRequest struct {
	Name           string `json:"name"`
	Persona        string `json:"persona"`
	DefaultVoiceID string `json:"default_voice_id"`
}

type agentsListResponse struct {
	Agents []*agentstore.Agent `json:"agents"`
}

// HandleCreateAgent serves POST /v1/agents.
func (h *Handler) HandleCreateAgent(w http.ResponseWriter, r *http.Request) {
	var req agentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "validation_error", "invalid JSON body: "+err.Error(), hintFixInput)
		return
	}
	if req.Name == "" {
		WriteError(w, http.StatusBadRequest, "validation_error", "agent name must not be empty", hintFixInput)
		return
	}

	agent := &agentstore.Agent{
		ID:             uuid.New().String(),
		Name:           req.Name,
		Persona:        req.Persona,
		DefaultVoiceID: req.DefaultVoiceID,
		CreatedAt:      time.Now().UTC(),
	}
	if err := h.store.Put(r.Context(), agent); err != nil {
		h.logger.Error().Err(err).Msg("failed to store agent")
		WriteError(w, http.StatusInternalServerError, "internal", "failed to store agent", hintRetryLater)
		return
	}

	h.logger.Info().Str("agent_id", agent.ID).Str("name", agent.Name).Msg("agent created")
	WriteJSON(w, http.StatusCreated, agent)
}

// HandleListAgents serves GET /v1/agents.
func (h *Handler) HandleListAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list agents")
		WriteError(w, http.StatusInternalServerError, "internal", "failed to list agents", hintRetryLater)
		return
	}
	if agents == nil {
		agents = []*agentstore.Agent{}
	}
	WriteJSON(w, http.StatusOK, agentsListResponse{Agents: agents})
}

// HandleGetAgent serves GET /v1/agents/{id}.
func (h *Handler) HandleGetAgent(w http.ResponseWriter, r *http.Request) {
	agent, ok := h.loadAgent(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, agent)
}

// updateAgentRequest uses pointer fields so an omitted field is
// distinguishable from an explicitly cleared one.
type updateAgentRequest struct {
	Name           *string `json:"name"`
	Persona        *string `json:"persona"`
	DefaultVoiceID *string `json:"default_voice_id"`
}

// HandleUpdateAgent serves PUT /v1/agents/{id}. Only fields present in the
// body are changed; omitted fields keep their stored values.
func (h *Handler) HandleUpdateAgent(w http.ResponseWriter, r *http.Request) {
	agent, ok := h.loadAgent(w, r)
	if !ok {
		return
	}

	var req updateAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "validation_error", "invalid JSON body: "+err.Error(), hintFixInput)
		return
	}

	if req.Name != nil {
		if *req.Name == "" {
			WriteError(w, http.StatusBadRequest, "validation_error", "agent name must not be empty", hintFixInput)
			return
		}
		agent.Name = *req.Name
	}
	if req.Persona != nil {
		agent.Persona = *req.Persona
	}
	if req.DefaultVoiceID != nil {
		agent.DefaultVoiceID = *req.DefaultVoiceID
	}

	if err := h.store.Put(r.Context(), agent); err != nil {
		h.logger.Error().Err(err).Msg("failed to store agent")
		WriteError(w, http.StatusInternalServerError, "internal", "failed to store agent", hintRetryLater)
		return
	}
	WriteJSON(w, http.StatusOK, agent)
}

// HandleDeleteAgent serves DELETE /v1/agents/{id}.
func (h *Handler) HandleDeleteAgent(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.logger.Error().Err(err).Msg("failed to delete agent")
		WriteError(w, http.StatusInternalServerError, "internal", "failed to delete agent", hintRetryLater)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type respondRequest struct {
	Text string `json:"text"`
}

type respondResponse struct {
	Reply    string `json:"reply"`
	Audio    []byte `json:"audio"` // base64 in JSON
	MIMEType string `json:"mime_type"`
}

// HandleAgentRespond serves POST /v1/agents/{id}/respond: generate the
// agent's reply to user input and synthesize it with the agent's voice.
func (h *Handler) HandleAgentRespond(w http.ResponseWriter, r *http.Request) {
	agent, ok := h.loadAgent(w, r)
	if !ok {
		return
	}

	var req respondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "validation_error", "invalid JSON body: "+err.Error(), hintFixInput)
		return
	}
	if req.Text == "" {
		WriteError(w, http.StatusBadRequest, "validation_error", "text must not be empty", hintFixInput)
		return
	}

	reply, err := h.replies.Reply(r.Context(), agent, req.Text)
	if err != nil {
		h.logger.Error().Err(err).Str("agent_id", agent.ID).Msg("reply generation failed")
		WriteError(w, http.StatusBadGateway, "upstream_error", "reply generation failed", hintRetryLater)
		return
	}

	result, err := h.gateway.Synthesize(r.Context(), voice.SynthesisRequest{
		Text:    reply,
		VoiceID: agent.DefaultVoiceID,
	})
	if err != nil {
		WriteGatewayError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, respondResponse{
		Reply:    reply,
		Audio:    result.Audio,
		MIMEType: result.MIMEType,
	})
}

func (h *Handler) loadAgent(w http.ResponseWriter, r *http.Request) (*agentstore.Agent, bool) {
	id := chi.URLParam(r, "id")
	agent, err := h.store.Get(r.Context(), id)
	if errors.Is(err, agentstore.ErrNotFound) {
		WriteError(w, http.StatusNotFound, "not_found", "no agent with id "+id, hintFixInput)
		return nil, false
	}
	if err != nil {
		h.logger.Error().Err(err).Str("agent_id", id).Msg("failed to load agent")
		WriteError(w, http.StatusInternalServerError, "internal", "failed to load agent", hintRetryLater)
		return nil, false
	}
	return agent, true
}

// sampleMIMEType resolves the enrollment sample type from the declared part
// header, falling back to the filename extension when the browser sent a
// generic content type.
func sampleMIMEType(declared, filename string) string {
	declared = strings.TrimSpace(strings.Split(declared, ";")[0])
	if voice.AcceptedSampleTypes[declared] {
		return declared
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".wav":
		return "audio/wav"
	case ".mp3":
		return "audio/mpeg"
	case ".m4a":
		return "audio/mp4"
	}
	return declared
}
