package providers

import (
	"context"
	"errors"
	"time"
)

// Transport executes a single chat completion against one provider backend
// with one credential. Credential fallback is the caller's concern.
type Transport interface {
	// Name returns the transport name (e.g., "chat_completions", "gemini")
	Name() string

	// Complete performs one chat completion request
	Complete(ctx context.Context, target Target, req *ChatRequest) (*ChatResponse, error)
}

// Target identifies where and as whom a request is sent
type Target struct {
	// Provider is the profile name, used for error attribution
	Provider string

	// Endpoint is the full URL (or base URL for library-style providers)
	Endpoint string

	// Credential is the secret presented to the provider
	Credential string
}

// ChatRequest represents a unified chat completion request
type ChatRequest struct {
	// Model identifier (e.g., "llama3-8b-8192", "gemini-1.5-flash")
	Model string `json:"model"`

	// Messages in the conversation
	Messages []Message `json:"messages"`
}

// Message represents a single message in a conversation
type Message struct {
	// Role can be "system", "user", or "assistant"
	Role string `json:"role"`

	// Content is the message text
	Content string `json:"content"`
}

// NewUserRequest builds a stateless single-turn request holding only the prompt
func NewUserRequest(model, prompt string) *ChatRequest {
	return &ChatRequest{
		Model: model,
		Messages: []Message{
			{Role: "user", Content: prompt},
		},
	}
}

// ChatResponse represents a unified chat completion response
type ChatResponse struct {
	// ID is the provider's identifier for this completion, if any
	ID string `json:"id,omitempty"`

	// Model used for the completion
	Model string `json:"model"`

	// Provider that handled the request
	Provider string `json:"provider"`

	// Content is the assistant text
	Content string `json:"content"`

	// FinishReason as reported by the provider
	FinishReason string `json:"finish_reason,omitempty"`

	// Usage statistics
	Usage Usage `json:"usage"`

	// Latency of the request
	Latency time.Duration `json:"latency"`
}

// Usage represents token usage statistics
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Error codes carried by ProviderError
const (
	CodeHTTPError      = "HTTP_ERROR"
	CodeStatusError    = "STATUS_ERROR"
	CodeEmptyResponse  = "EMPTY_RESPONSE"
	CodeMarshalError   = "MARSHAL_ERROR"
	CodeUnmarshalError = "UNMARSHAL_ERROR"
	CodeRequestError   = "REQUEST_ERROR"
	CodeReadError      = "READ_ERROR"
)

// ProviderError represents an error from a provider
type ProviderError struct {
	// Provider that generated the error
	Provider string

	// Code is the error code
	Code string

	// Message is the error message
	Message string

	// StatusCode is the HTTP status code, zero when no response was received
	StatusCode int

	// Body is the raw response body for non-200 responses
	Body string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap implements error unwrapping
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// NewProviderError creates a new provider error
func NewProviderError(provider, code, message string, statusCode int, cause error) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Cause:      cause,
	}
}

// NewStatusError creates an error for a non-200 response, keeping the body verbatim
func NewStatusError(provider string, statusCode int, body []byte) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		Code:       CodeStatusError,
		Message:    "unexpected status from provider",
		StatusCode: statusCode,
		Body:       string(body),
	}
}

// StatusCode returns the HTTP status carried by err, if the provider answered at all
func StatusCode(err error) (int, bool) {
	var provErr *ProviderError
	if errors.As(err, &provErr) && provErr.StatusCode != 0 {
		return provErr.StatusCode, true
	}
	return 0, false
}
