package compat

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/24kshah/nemhem-ai/services/providers"
)

const (
	// DefaultTimeout applies when no HTTP client is supplied
	DefaultTimeout = 60 * time.Second

	// maxErrorBody caps how much of a failed response body is kept for diagnostics
	maxErrorBody = 64 << 10
)

// Default endpoints of the OpenAI-compatible providers
const (
	GroqEndpoint       = "https://api.groq.com/openai/v1/chat/completions"
	MistralEndpoint    = "https://api.mistral.ai/v1/chat/completions"
	TogetherEndpoint   = "https://api.together.xyz/v1/chat/completions"
	OpenRouterEndpoint = "https://openrouter.ai/api/v1/chat/completions"
)

// Client implements providers.Transport for OpenAI-compatible chat completion endpoints
type Client struct {
	httpClient *http.Client
}

// NewClient creates a new chat completions client
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{httpClient: httpClient}
}

// Name returns the transport name
func (c *Client) Name() string {
	return string(providers.KindChatCompletions)
}

// Complete performs one POST to the target endpoint with bearer authorization
func (c *Client) Complete(ctx context.Context, target providers.Target, req *providers.ChatRequest) (*providers.ChatResponse, error) {
	startTime := time.Now()

	reqBody, err := json.Marshal(buildRequest(req))
	if err != nil {
		return nil, providers.NewProviderError(target.Provider, providers.CodeMarshalError, "failed to marshal request", 0, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, target.Endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, providers.NewProviderError(target.Provider, providers.CodeRequestError, "failed to create request", 0, err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+target.Credential)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, providers.NewProviderError(target.Provider, providers.CodeHTTPError, "HTTP request failed", 0, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(httpResp.Body, maxErrorBody))
		return nil, providers.NewStatusError(target.Provider, httpResp.StatusCode, body)
	}

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, providers.NewProviderError(target.Provider, providers.CodeReadError, "failed to read response", 0, err)
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return nil, providers.NewProviderError(target.Provider, providers.CodeUnmarshalError, "failed to unmarshal response", 0, err)
	}

	if len(completion.Choices) == 0 {
		return nil, providers.NewProviderError(target.Provider, providers.CodeEmptyResponse, "response contained no choices", 0, nil)
	}

	return convertResponse(target.Provider, &completion, req, time.Since(startTime)), nil
}

// buildRequest converts the unified request to the wire format
func buildRequest(req *providers.ChatRequest) *chatCompletionRequest {
	wire := &chatCompletionRequest{
		Model:    req.Model,
		Messages: make([]chatMessage, len(req.Messages)),
	}
	for i, msg := range req.Messages {
		wire.Messages[i] = chatMessage{Role: msg.Role, Content: msg.Content}
	}
	return wire
}

// convertResponse extracts choices[0].message.content into the unified response
func convertResponse(provider string, wire *chatCompletionResponse, req *providers.ChatRequest, latency time.Duration) *providers.ChatResponse {
	model := wire.Model
	if model == "" {
		model = req.Model
	}

	first := wire.Choices[0]
	return &providers.ChatResponse{
		ID:           wire.ID,
		Model:        model,
		Provider:     provider,
		Content:      first.Message.Content,
		FinishReason: first.FinishReason,
		Usage: providers.Usage{
			PromptTokens:     wire.Usage.PromptTokens,
			CompletionTokens: wire.Usage.CompletionTokens,
			TotalTokens:      wire.Usage.TotalTokens,
		},
		Latency: latency,
	}
}

// Wire types

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
