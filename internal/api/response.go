package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/openvoice/agent-gateway/internal/voice"
)

// ErrorResponse is the JSON error body returned to callers.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries enough for a caller to render a user-facing message.
// The provider credential never appears here.
type ErrorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
	Status  int    `json:"upstream_status,omitempty"`
}

// WriteJSON writes the data structure as JSON.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes a plain error response.
func WriteError(w http.ResponseWriter, status int, kind, message, hint string) {
	WriteJSON(w, status, ErrorResponse{Error: ErrorDetail{
		Kind:    kind,
		Message: message,
		Hint:    hint,
	}})
}

// WriteAudio writes binary audio data with its declared content type.
func WriteAudio(w http.ResponseWriter, mimeType string, data []byte) {
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Disposition", "attachment; filename=audio"+audioExtension(mimeType))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Caller guidance, per error kind: fix your input, try again later,
// or contact the operator.
const (
	hintFixInput   = "fix your input"
	hintRetryLater = "try again later"
	hintOperator   = "contact operator"
)

// WriteGatewayError maps the gateway error taxonomy onto HTTP status codes.
func WriteGatewayError(w http.ResponseWriter, err error) {
	var ve *voice.ValidationError
	if errors.As(err, &ve) {
		WriteError(w, http.StatusBadRequest, "validation_error", ve.Error(), hintFixInput)
		return
	}

	switch {
	case errors.Is(err, voice.ErrPayloadTooLarge):
		WriteError(w, http.StatusRequestEntityTooLarge, "payload_too_large", err.Error(), hintFixInput)
	case errors.Is(err, voice.ErrAuth):
		WriteError(w, http.StatusBadGateway, "auth_error", "provider rejected the configured credential", hintOperator)
	case errors.Is(err, voice.ErrUpstreamUnavailable):
		w.Header().Set("Retry-After", "5")
		WriteError(w, http.StatusServiceUnavailable, "upstream_unavailable", err.Error(), hintRetryLater)
	case errors.Is(err, voice.ErrCancelled):
		// Client went away; 499 is the conventional (non-standard) code.
		WriteError(w, 499, "cancelled", err.Error(), "")
	default:
		var ue *voice.UpstreamError
		if errors.As(err, &ue) {
			WriteJSON(w, http.StatusBadGateway, ErrorResponse{Error: ErrorDetail{
				Kind:    "upstream_error",
				Message: ue.Body,
				Hint:    hintRetryLater,
				Status:  ue.StatusCode,
			}})
			return
		}
		WriteError(w, http.StatusInternalServerError, "internal", err.Error(), hintOperator)
	}
}

func audioExtension(mimeType string) string {
	switch mimeType {
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/wav", "audio/x-wav", "audio/wave":
		return ".wav"
	case "audio/mp4", "audio/x-m4a":
		return ".m4a"
	default:
		return ""
	}
}
