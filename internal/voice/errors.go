package voice

import (
	"errors"
	"fmt"
)

// ErrUpstreamUnavailable indicates the provider could not be reached or timed out.
// Callers may retry with backoff; the gateway itself never retries.
var ErrUpstreamUnavailable = errors.New("provider unavailable")

// ErrAuth indicates the provider rejected the configured credential.
var ErrAuth = errors.New("provider rejected credential")

// ErrPayloadTooLarge indicates the provider rejected the sample size.
var ErrPayloadTooLarge = errors.New("audio payload too large")

// ErrCancelled indicates the caller cancelled the in-flight request.
var ErrCancelled = errors.New("request cancelled")

// ValidationError reports malformed caller input. It is always recoverable
// by the caller correcting the input and is never retried automatically.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid input: %s", e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// UpstreamError reports a non-2xx provider response the gateway does not
// otherwise classify. The body never contains the credential.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("provider error (status %d): %s", e.StatusCode, e.Body)
}

// IsValidation checks if an error is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsUpstream checks if an error is an UpstreamError.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

// IsAuth checks if an error indicates a rejected credential.
func IsAuth(err error) bool {
	return errors.Is(err, ErrAuth)
}

// IsUnavailable checks if an error indicates an unreachable provider.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUpstreamUnavailable)
}
