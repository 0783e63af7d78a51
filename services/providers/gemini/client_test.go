package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/24kshah/nemhem-ai/services/providers"
)

func TestNormalizeModel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "gemini/gemini-1.5-flash", want: "gemini-1.5-flash"},
		{in: "models/gemini-1.5-pro", want: "gemini-1.5-pro"},
		{in: " gemini-2.0-flash ", want: "gemini-2.0-flash"},
		{in: "gemini/", want: DefaultModel},
		{in: "", want: DefaultModel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeModel(tt.in))
		})
	}
}

func TestClient_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/gemini-1.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "AIza-test", r.Header.Get("x-goog-api-key"))
		assert.Empty(t, r.Header.Get("Authorization"))

		var req generateContentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Equal(t, "user", req.Contents[0].Role)
		assert.Equal(t, "Explain DNS", req.Contents[0].Parts[0].Text)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "DNS maps "}, {"text": "names."}]}, "finishReason": "STOP"}],
			"usageMetadata": {"promptTokenCount": 3, "candidatesTokenCount": 4, "totalTokenCount": 7},
			"modelVersion": "gemini-1.5-flash-002"
		}`))
	}))
	defer server.Close()

	client := NewClient(server.Client())
	resp, err := client.Complete(context.Background(),
		providers.Target{Provider: "gemini", Endpoint: server.URL + "/", Credential: "AIza-test"},
		providers.NewUserRequest("gemini/gemini-1.5-flash", "Explain DNS"))

	require.NoError(t, err)
	assert.Equal(t, "DNS maps names.", resp.Content)
	assert.Equal(t, "gemini", resp.Provider)
	assert.Equal(t, "gemini-1.5-flash-002", resp.Model)
	assert.Equal(t, "stop", resp.FinishReason)
	assert.Equal(t, 7, resp.Usage.TotalTokens)
}

func TestClient_Complete_Errors(t *testing.T) {
	t.Run("non-200 keeps status and body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":{"status":"PERMISSION_DENIED"}}`))
		}))
		defer server.Close()

		_, err := NewClient(server.Client()).Complete(context.Background(),
			providers.Target{Provider: "gemini", Endpoint: server.URL, Credential: "bad"},
			providers.NewUserRequest("gemini-1.5-flash", "hi"))

		var provErr *providers.ProviderError
		require.True(t, errors.As(err, &provErr))
		assert.Equal(t, http.StatusForbidden, provErr.StatusCode)
		assert.Contains(t, provErr.Body, "PERMISSION_DENIED")
	})

	t.Run("no candidates", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"candidates": []}`))
		}))
		defer server.Close()

		_, err := NewClient(server.Client()).Complete(context.Background(),
			providers.Target{Provider: "gemini", Endpoint: server.URL, Credential: "k"},
			providers.NewUserRequest("gemini-1.5-flash", "hi"))

		var provErr *providers.ProviderError
		require.True(t, errors.As(err, &provErr))
		assert.Equal(t, providers.CodeEmptyResponse, provErr.Code)
	})
}
