// Package gemini implements providers.Transport for the Gemini generateContent API.
//
// Gemini differs from the chat completions shape in three ways that matter here:
// the model is part of the URL path, auth uses the x-goog-api-key header, and
// messages are "contents" with "parts" where the assistant role is "model".
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/24kshah/nemhem-ai/services/providers"
)

const (
	// DefaultBaseURL for the Gemini REST API
	DefaultBaseURL = "https://generativelanguage.googleapis.com"

	// DefaultModel is used when the selector carries no concrete Gemini model
	DefaultModel = "gemini-1.5-flash"

	// DefaultTimeout applies when no HTTP client is supplied
	DefaultTimeout = 60 * time.Second

	maxErrorBody = 64 << 10
)

// Client calls generateContent with one API key per request
type Client struct {
	httpClient *http.Client
}

// NewClient creates a new Gemini client
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{httpClient: httpClient}
}

// Name returns the transport name
func (c *Client) Name() string {
	return string(providers.KindGemini)
}

// Complete sends the request to <endpoint>/v1beta/models/<model>:generateContent
func (c *Client) Complete(ctx context.Context, target providers.Target, req *providers.ChatRequest) (*providers.ChatResponse, error) {
	startTime := time.Now()
	model := NormalizeModel(req.Model)

	jsonData, err := json.Marshal(mapRequest(req))
	if err != nil {
		return nil, providers.NewProviderError(target.Provider, providers.CodeMarshalError, "failed to marshal request", 0, err)
	}

	base := strings.TrimRight(target.Endpoint, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", base, url.PathEscape(model))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, providers.NewProviderError(target.Provider, providers.CodeRequestError, "failed to create request", 0, err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", target.Credential)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, providers.NewProviderError(target.Provider, providers.CodeHTTPError, "HTTP request failed", 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, providers.NewStatusError(target.Provider, resp.StatusCode, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, providers.NewProviderError(target.Provider, providers.CodeReadError, "failed to read response", 0, err)
	}

	var nativeResp generateContentResponse
	if err := json.Unmarshal(body, &nativeResp); err != nil {
		return nil, providers.NewProviderError(target.Provider, providers.CodeUnmarshalError, "failed to decode response", 0, err)
	}

	if len(nativeResp.Candidates) == 0 {
		return nil, providers.NewProviderError(target.Provider, providers.CodeEmptyResponse, "response contained no candidates", 0, nil)
	}

	out := mapResponse(&nativeResp)
	out.Provider = target.Provider
	if out.Model == "" {
		out.Model = model
	}
	out.Latency = time.Since(startTime)
	return out, nil
}

// NormalizeModel strips the "gemini/" catalog prefix and the "models/" API prefix
func NormalizeModel(model string) string {
	m := strings.TrimSpace(model)
	m = strings.TrimPrefix(m, "gemini/")
	m = strings.TrimPrefix(m, "models/")
	if m == "" {
		return DefaultModel
	}
	return m
}

func mapRequest(req *providers.ChatRequest) *generateContentRequest {
	native := &generateContentRequest{
		Contents: make([]content, 0, len(req.Messages)),
	}
	for _, msg := range req.Messages {
		role := "user"
		if msg.Role == "assistant" {
			role = "model"
		}
		native.Contents = append(native.Contents, content{
			Role:  role,
			Parts: []part{{Text: msg.Content}},
		})
	}
	return native
}

// mapResponse joins the text parts of the first candidate
func mapResponse(resp *generateContentResponse) *providers.ChatResponse {
	first := resp.Candidates[0]

	var sb strings.Builder
	for _, p := range first.Content.Parts {
		sb.WriteString(p.Text)
	}

	out := &providers.ChatResponse{
		Model:        resp.ModelVersion,
		Content:      sb.String(),
		FinishReason: strings.ToLower(first.FinishReason),
	}
	if resp.UsageMetadata != nil {
		out.Usage = providers.Usage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      resp.UsageMetadata.TotalTokenCount,
		}
	}
	return out
}

type generateContentRequest struct {
	Contents []content `json:"contents"`
}

// content is a single turn; Gemini only knows "user" and "model"
type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text,omitempty"`
}

type generateContentResponse struct {
	Candidates    []candidate `json:"candidates"`
	UsageMetadata *usage      `json:"usageMetadata,omitempty"`
	ModelVersion  string      `json:"modelVersion,omitempty"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason"`
	Index        int     `json:"index"`
}

type usage struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}
