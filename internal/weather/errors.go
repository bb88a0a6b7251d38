package weather

import (
	"errors"
	"fmt"
)

// Sentinel errors classifying provider failures. Adapters wrap one of these
// so the orchestrator can inspect the failure kind with errors.Is instead of
// relying on error strings.
var (
	// ErrQuota marks an explicit rate-limit signal (HTTP 429 or a
	// provider-specific quota response).
	ErrQuota = errors.New("provider quota exceeded")

	// ErrTransient marks a network error, timeout or 5xx response.
	ErrTransient = errors.New("provider temporarily unavailable")

	// ErrMalformed marks a response whose shape violates the provider
	// contract (bad JSON, missing required fields).
	ErrMalformed = errors.New("malformed provider response")
)

// ProviderFailure records one provider's failed attempt during a resolution.
type ProviderFailure struct {
	Provider string
	Err      error
}

// AllFailedError is raised when every configured provider failed to produce
// a result for a request. It keeps the individual failures, with the first
// one exposed through Unwrap for diagnostics.
type AllFailedError struct {
	Kind     Kind
	Failures []ProviderFailure
}

func (e *AllFailedError) Error() string {
	if len(e.Failures) == 0 {
		return fmt.Sprintf("weather: no providers configured for %s", e.Kind)
	}
	first := e.Failures[0]
	return fmt.Sprintf("weather: all %d providers failed for %s; first: %s: %v",
		len(e.Failures), e.Kind, first.Provider, first.Err)
}

// Unwrap returns the first underlying provider error.
func (e *AllFailedError) Unwrap() error {
	if len(e.Failures) == 0 {
		return nil
	}
	return e.Failures[0].Err
}
