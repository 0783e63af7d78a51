package dispatch

import (
	"fmt"
)

// FailureMarker prefixes rendered failures so a UI can style them as errors
const FailureMarker = "❌"

// Status tags an invocation outcome
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// FailureKind classifies why an invocation failed
type FailureKind string

const (
	// KindExhausted: every credential returned an auth or quota status
	KindExhausted FailureKind = "exhausted"

	// KindProviderError: a non-200 non-auth status, or a malformed 200
	KindProviderError FailureKind = "provider_error"

	// KindTransportError: no response was received
	KindTransportError FailureKind = "transport_error"

	// KindTimeout: the per-call deadline expired or the caller cancelled
	KindTimeout FailureKind = "timeout"

	// KindNotConfigured: the provider has no credentials or no transport
	KindNotConfigured FailureKind = "not_configured"
)

// Failure carries enough detail to render a diagnostic
type Failure struct {
	Kind FailureKind `json:"kind"`

	// Provider is the display name used in diagnostics
	Provider   string `json:"provider"`
	StatusCode int    `json:"status_code,omitempty"`
	Body       string `json:"body,omitempty"`
	Message    string `json:"message"`
	Attempts   int    `json:"attempts"`
}

// Reason formats the failure without the marker
func (f *Failure) Reason() string {
	switch f.Kind {
	case KindExhausted:
		return fmt.Sprintf("All %s API keys failed or were rate-limited.", f.Provider)
	case KindProviderError:
		if f.StatusCode != 0 {
			return fmt.Sprintf("%s Error %d: %s", f.Provider, f.StatusCode, f.Body)
		}
		return fmt.Sprintf("%s Error: %s", f.Provider, f.Message)
	case KindTransportError:
		return fmt.Sprintf("%s Exception: %s", f.Provider, f.Message)
	default:
		return fmt.Sprintf("%s Error: %s", f.Provider, f.Message)
	}
}

// Result is the normalized outcome of one invocation: either a success with
// text or a failure with a reason, never both.
type Result struct {
	Status   Status   `json:"status"`
	Text     string   `json:"text,omitempty"`
	Provider string   `json:"provider"`
	Model    string   `json:"model"`
	Failure  *Failure `json:"failure,omitempty"`
}

// Success builds a successful result
func Success(provider, model, text string) Result {
	return Result{Status: StatusSuccess, Text: text, Provider: provider, Model: model}
}

// Fail builds a failed result
func Fail(provider, model string, f *Failure) Result {
	return Result{Status: StatusFailure, Provider: provider, Model: model, Failure: f}
}

// OK reports whether the invocation succeeded
func (r Result) OK() bool {
	return r.Status == StatusSuccess
}

// Render returns the user-facing text: the assistant text, or the marked failure
func (r Result) Render() string {
	if r.OK() {
		return r.Text
	}
	if r.Failure == nil {
		return FailureMarker + " unknown failure"
	}
	return FailureMarker + " " + r.Failure.Reason()
}
