package compat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/24kshah/nemhem-ai/services/providers"
)

func TestNewClient(t *testing.T) {
	client := NewClient(nil)

	if client == nil {
		t.Fatal("NewClient() returned nil")
	}

	if client.Name() != "chat_completions" {
		t.Errorf("Name() = %s, want chat_completions", client.Name())
	}

	if client.httpClient.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %s, want %s", client.httpClient.Timeout, DefaultTimeout)
	}
}

func TestClient_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST request, got %s", r.Method)
		}

		if r.URL.Path != "/openai/v1/chat/completions" {
			t.Errorf("Expected path /openai/v1/chat/completions, got %s", r.URL.Path)
		}

		if auth := r.Header.Get("Authorization"); auth != "Bearer gsk-test" {
			t.Errorf("Authorization = %q, want %q", auth, "Bearer gsk-test")
		}

		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}

		body, _ := io.ReadAll(r.Body)
		var raw map[string]interface{}
		if err := json.Unmarshal(body, &raw); err != nil {
			t.Fatalf("request body is not JSON: %v", err)
		}
		if len(raw) != 2 {
			t.Errorf("request body has %d fields, want only model and messages", len(raw))
		}

		var req chatCompletionRequest
		_ = json.Unmarshal(body, &req)
		if req.Model != "llama3-8b-8192" {
			t.Errorf("model = %s, want llama3-8b-8192", req.Model)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" || req.Messages[0].Content != "Hello" {
			t.Errorf("messages = %+v, want one user turn", req.Messages)
		}

		resp := chatCompletionResponse{
			ID:      "chatcmpl-test123",
			Object:  "chat.completion",
			Created: time.Now().Unix(),
			Model:   req.Model,
			Choices: []chatChoice{
				{
					Index:        0,
					Message:      chatMessage{Role: "assistant", Content: "This is a test response"},
					FinishReason: "stop",
				},
			},
			Usage: chatUsage{PromptTokens: 10, CompletionTokens: 20, TotalTokens: 30},
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.Client())
	target := providers.Target{
		Provider:   "groq",
		Endpoint:   server.URL + "/openai/v1/chat/completions",
		Credential: "gsk-test",
	}

	resp, err := client.Complete(context.Background(), target, providers.NewUserRequest("llama3-8b-8192", "Hello"))
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if resp.Content != "This is a test response" {
		t.Errorf("Unexpected response content: %s", resp.Content)
	}

	if resp.Provider != "groq" {
		t.Errorf("Provider = %s, want groq", resp.Provider)
	}

	if resp.Usage.TotalTokens != 30 {
		t.Errorf("TotalTokens = %d, want 30", resp.Usage.TotalTokens)
	}

	if resp.FinishReason != "stop" {
		t.Errorf("FinishReason = %s, want stop", resp.FinishReason)
	}
}

func TestClient_Complete_StatusError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{"error":{"message":"slow down"}}`},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"error":{"message":"bad key"}}`},
		{name: "server error with plain body", status: http.StatusInternalServerError, body: "upstream exploded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(server.Client())
			_, err := client.Complete(context.Background(), providers.Target{Provider: "mistral", Endpoint: server.URL, Credential: "k"},
				providers.NewUserRequest("mistral-small-latest", "test"))

			if err == nil {
				t.Fatal("Expected error but got none")
			}

			var provErr *providers.ProviderError
			if !errors.As(err, &provErr) {
				t.Fatalf("Expected ProviderError, got %T", err)
			}

			if provErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", provErr.StatusCode, tt.status)
			}

			if provErr.Body != tt.body {
				t.Errorf("Body = %q, want %q", provErr.Body, tt.body)
			}

			if provErr.Provider != "mistral" {
				t.Errorf("Provider = %s, want mistral", provErr.Provider)
			}
		})
	}
}

func TestClient_Complete_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","choices":[]}`))
	}))
	defer server.Close()

	client := NewClient(server.Client())
	_, err := client.Complete(context.Background(), providers.Target{Provider: "openrouter", Endpoint: server.URL},
		providers.NewUserRequest("m", "p"))

	var provErr *providers.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("Expected ProviderError, got %T", err)
	}

	if provErr.Code != providers.CodeEmptyResponse {
		t.Errorf("Code = %s, want %s", provErr.Code, providers.CodeEmptyResponse)
	}

	if _, ok := providers.StatusCode(err); ok {
		t.Error("empty response should not carry a status code")
	}
}

func TestClient_Complete_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(&http.Client{Timeout: time.Second})
	_, err := client.Complete(context.Background(), providers.Target{Provider: "groq", Endpoint: url},
		providers.NewUserRequest("m", "p"))

	var provErr *providers.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("Expected ProviderError, got %T", err)
	}

	if provErr.Code != providers.CodeHTTPError {
		t.Errorf("Code = %s, want %s", provErr.Code, providers.CodeHTTPError)
	}

	if provErr.Cause == nil {
		t.Error("Cause should carry the transport error")
	}
}
