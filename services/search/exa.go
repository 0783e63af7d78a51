package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/24kshah/nemhem-ai/internal/redact"
	"github.com/24kshah/nemhem-ai/services"
)

const (
	// DefaultExaURL is the Exa search endpoint
	DefaultExaURL = "https://api.exa.ai/search"

	// DefaultTimeout applies when no HTTP client is supplied
	DefaultTimeout = 30 * time.Second

	exaNumResults = 3
	maxErrorBody  = 64 << 10
)

// WebResult is one Exa hit
type WebResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Text    string `json:"text,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// StatusError is returned when a search API answers with a non-200 status
type StatusError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s search returned %d", e.Service, e.StatusCode)
}

// ExaClient queries the Exa web search API
type ExaClient struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// NewExaClient creates a new Exa client. An empty endpoint uses DefaultExaURL.
func NewExaClient(apiKey, endpoint string, httpClient *http.Client) *ExaClient {
	if endpoint == "" {
		endpoint = DefaultExaURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &ExaClient{apiKey: strings.TrimSpace(apiKey), endpoint: endpoint, httpClient: httpClient}
}

// Configured reports whether an API key is set
func (c *ExaClient) Configured() bool {
	return c != nil && c.apiKey != ""
}

// Search returns the top web results for query
func (c *ExaClient) Search(ctx context.Context, query string) ([]WebResult, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("exa: %w", services.ErrSearchNotConfigured)
	}

	payload := struct {
		Query      string `json:"query"`
		NumResults int    `json:"numResults"`
	}{Query: query, NumResults: exaNumResults}

	var resp struct {
		Results []WebResult `json:"results"`
	}
	if err := postJSON(ctx, c.httpClient, "exa", c.endpoint, c.apiKey, payload, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// postJSON sends payload with bearer auth and decodes a 200 response into out
func postJSON(ctx context.Context, client *http.Client, service, endpoint, apiKey string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", service, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", service, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", service, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Service: service, StatusCode: resp.StatusCode, Body: redact.New(apiKey).Redact(string(errBody))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", service, err)
	}
	return nil
}
