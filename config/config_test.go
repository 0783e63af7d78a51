package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/24kshah/nemhem-ai/services/providers/compat"
	"github.com/24kshah/nemhem-ai/services/providers/gemini"
	"github.com/24kshah/nemhem-ai/services/search"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr bool
		check   func(*testing.T, *Config)
	}{
		{
			name: "default configuration",
			envVars: map[string]string{
				"ENVIRONMENT": "development",
			},
			wantErr: false,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "development", cfg.Environment)
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 60*time.Second, cfg.Dispatch.Timeout)
				assert.Equal(t, "https://openrouter.ai/api/v1/chat/completions", cfg.Providers.OpenRouter.BaseURL)
				assert.Equal(t, compat.GroqEndpoint, cfg.Providers.Groq.BaseURL)
				assert.Equal(t, compat.TogetherEndpoint, cfg.Providers.Together.BaseURL)
				assert.Equal(t, gemini.DefaultBaseURL, cfg.Providers.Gemini.BaseURL)
				assert.Equal(t, search.DefaultExaURL, cfg.Search.ExaBaseURL)
				assert.Equal(t, search.DefaultTavilyURL, cfg.Search.TavilyBaseURL)
				assert.Equal(t, "ordered", cfg.Providers.OpenRouter.KeyOrder)
				assert.Empty(t, cfg.Providers.OpenRouter.APIKeys)
				assert.False(t, cfg.Providers.AnyConfigured())
				assert.Len(t, cfg.Catalog.Models, 11)
			},
		},
		{
			name: "production with an openrouter key list",
			envVars: map[string]string{
				"ENVIRONMENT":          "production",
				"SERVER_PORT":          "9000",
				"OPENROUTER_API_KEYS":  "sk-or-1, sk-or-2,,sk-or-3 ",
				"OPENROUTER_KEY_ORDER": "Shuffle",
			},
			wantErr: false,
			check: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.IsProduction())
				assert.False(t, cfg.IsDevelopment())
				assert.Equal(t, 9000, cfg.Server.Port)
				assert.Equal(t, []string{"sk-or-1", "sk-or-2", "sk-or-3"}, cfg.Providers.OpenRouter.APIKeys)
				assert.Equal(t, "shuffle", cfg.Providers.OpenRouter.KeyOrder)
				assert.True(t, cfg.Providers.AnyConfigured())
			},
		},
		{
			name: "single key providers and search",
			envVars: map[string]string{
				"GEMINI_API_KEY":   "g-key",
				"GROQ_API_KEY":     "gsk-key",
				"GROQ_BASE_URL":    "http://localhost:9999/groq",
				"MISTRAL_API_KEY":  "m-key",
				"TOGETHER_API_KEY": "t-key",
				"EXA_API_KEY":      "exa-key",
				"TAVILY_API_KEY":   "tvly-key",
				"SEARCH_TIMEOUT":   "5s",
			},
			wantErr: false,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "g-key", cfg.Providers.Gemini.APIKey)
				assert.Equal(t, "http://localhost:9999/groq", cfg.Providers.Groq.BaseURL)
				assert.Equal(t, compat.MistralEndpoint, cfg.Providers.Mistral.BaseURL)
				assert.Equal(t, "t-key", cfg.Providers.Together.APIKey)
				assert.Equal(t, "exa-key", cfg.Search.ExaAPIKey)
				assert.Equal(t, "tvly-key", cfg.Search.TavilyAPIKey)
				assert.Equal(t, 5*time.Second, cfg.Search.Timeout)
			},
		},
		{
			name: "custom timeouts and session limits",
			envVars: map[string]string{
				"SERVER_READ_TIMEOUT":  "60s",
				"SERVER_WRITE_TIMEOUT": "90s",
				"DISPATCH_TIMEOUT":     "15s",
				"SESSION_MAX":          "50",
				"SESSION_IDLE_TTL":     "1h",
			},
			wantErr: false,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 60*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 90*time.Second, cfg.Server.WriteTimeout)
				assert.Equal(t, 15*time.Second, cfg.Dispatch.Timeout)
				assert.Equal(t, 50, cfg.Sessions.MaxSessions)
				assert.Equal(t, time.Hour, cfg.Sessions.IdleTTL)
			},
		},
		{
			name: "observability and cors configuration",
			envVars: map[string]string{
				"LOG_LEVEL":            "debug",
				"LOG_FORMAT":           "text",
				"CORS_ALLOWED_ORIGINS": "http://localhost:5173,https://chat.example.com",
			},
			wantErr: false,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "debug", cfg.Observability.LogLevel)
				assert.Equal(t, "text", cfg.Observability.LogFormat)
				assert.Equal(t, []string{"http://localhost:5173", "https://chat.example.com"}, cfg.CORS.AllowedOrigins)
			},
		},
		{
			name: "PORT env var takes precedence over SERVER_PORT",
			envVars: map[string]string{
				"PORT":        "9443",
				"SERVER_PORT": "9000",
			},
			wantErr: false,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9443, cfg.Server.Port)
			},
		},
		{
			name: "production without any provider",
			envVars: map[string]string{
				"ENVIRONMENT": "production",
			},
			wantErr: true,
		},
		{
			name: "invalid key order",
			envVars: map[string]string{
				"OPENROUTER_KEY_ORDER": "random",
			},
			wantErr: true,
		},
		{
			name: "missing catalog file",
			envVars: map[string]string{
				"MODEL_CATALOG_FILE": "/does/not/exist.yaml",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear environment
			os.Clearenv()

			// Set test environment variables
			for k, v := range tt.envVars {
				os.Setenv(k, v)
			}

			// Create config
			cfg, err := New(context.Background())

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)

			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestNew_CatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
models:
  - label: "🟧 Groq: llama3-8b-8192"
  - label: "🟩 OpenRouter: openrouter/auto"
    description: catch-all
`), 0o600))

	os.Clearenv()
	os.Setenv("MODEL_CATALOG_FILE", path)

	cfg, err := New(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"🟧 Groq: llama3-8b-8192", "🟩 OpenRouter: openrouter/auto"}, cfg.Catalog.Labels())
	assert.Equal(t, "catch-all", cfg.Catalog.Models[1].Description)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid development config",
			config: &Config{
				Environment:   "development",
				Observability: ObservabilityConfig{LogLevel: "info"},
			},
			wantErr: false,
		},
		{
			name: "valid production config",
			config: &Config{
				Environment:   "production",
				Providers:     ProvidersConfig{Groq: ProviderConfig{APIKey: "gsk"}},
				Observability: ObservabilityConfig{LogLevel: "info"},
			},
			wantErr: false,
		},
		{
			name: "missing log level",
			config: &Config{
				Environment: "development",
			},
			wantErr: true,
			errMsg:  "log level is required",
		},
		{
			name: "production without provider",
			config: &Config{
				Environment:   "prod",
				Observability: ObservabilityConfig{LogLevel: "info"},
			},
			wantErr: true,
			errMsg:  "at least one LLM provider",
		},
		{
			name: "negative dispatch timeout",
			config: &Config{
				Dispatch:      DispatchConfig{Timeout: -time.Second},
				Observability: ObservabilityConfig{LogLevel: "info"},
			},
			wantErr: true,
			errMsg:  "dispatch timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()

			if tt.wantErr {
				assert.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_IsProduction(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		want        bool
	}{
		{"production", "production", true},
		{"prod", "prod", true},
		{"development", "development", false},
		{"dev", "dev", false},
		{"staging", "staging", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Environment: tt.environment}
			assert.Equal(t, tt.want, cfg.IsProduction())
		})
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		want        bool
	}{
		{"development", "development", true},
		{"dev", "dev", true},
		{"production", "production", false},
		{"staging", "staging", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Environment: tt.environment}
			assert.Equal(t, tt.want, cfg.IsDevelopment())
		})
	}
}

func TestServerConfig_Address(t *testing.T) {
	cfg := ServerConfig{
		Host: "0.0.0.0",
		Port: 8080,
	}

	assert.Equal(t, "0.0.0.0:8080", cfg.Address())
}

func TestGetEnvAsInt(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		value        string
		defaultValue int
		want         int
	}{
		{"valid int", "TEST_INT", "42", 10, 42},
		{"empty value", "TEST_INT", "", 10, 10},
		{"invalid int", "TEST_INT", "not-a-number", 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			if tt.value != "" {
				os.Setenv(tt.key, tt.value)
			}
			got := getEnvAsInt(tt.key, tt.defaultValue)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		value        string
		defaultValue time.Duration
		want         time.Duration
	}{
		{"valid duration", "TEST_DURATION", "30s", 10 * time.Second, 30 * time.Second},
		{"empty value", "TEST_DURATION", "", 10 * time.Second, 10 * time.Second},
		{"invalid duration", "TEST_DURATION", "not-a-duration", 10 * time.Second, 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			if tt.value != "" {
				os.Setenv(tt.key, tt.value)
			}
			got := getEnvAsDuration(tt.key, tt.defaultValue)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetEnvAsList(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  []string
	}{
		{"unset", "", nil},
		{"single", "k1", []string{"k1"}},
		{"trims and drops blanks", " k1 ,, k2,", []string{"k1", "k2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			if tt.value != "" {
				os.Setenv("TEST_LIST", tt.value)
			}
			assert.Equal(t, tt.want, getEnvAsList("TEST_LIST"))
		})
	}
}
