package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/24kshah/nemhem-ai/services/providers/compat"
	"github.com/24kshah/nemhem-ai/services/providers/gemini"
	"github.com/24kshah/nemhem-ai/services/search"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	Providers     ProvidersConfig
	Search        SearchConfig
	Dispatch      DispatchConfig
	Sessions      SessionConfig
	Observability ObservabilityConfig
	CORS          CORSConfig
	Catalog       Catalog
	Environment   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// ProvidersConfig holds LLM provider configurations
type ProvidersConfig struct {
	Gemini     ProviderConfig
	Together   ProviderConfig
	Groq       ProviderConfig
	Mistral    ProviderConfig
	OpenRouter OpenRouterConfig
}

// ProviderConfig holds a single-key provider configuration
type ProviderConfig struct {
	APIKey  string
	BaseURL string
}

// OpenRouterConfig holds the OpenRouter key list
type OpenRouterConfig struct {
	APIKeys  []string
	BaseURL  string
	KeyOrder string // ordered or shuffle
}

// SearchConfig holds the enrichment search APIs
type SearchConfig struct {
	ExaAPIKey     string
	ExaBaseURL    string
	TavilyAPIKey  string
	TavilyBaseURL string
	Timeout       time.Duration
}

// DispatchConfig holds per-call dispatch settings
type DispatchConfig struct {
	Timeout time.Duration
}

// SessionConfig holds in-memory session store limits
type SessionConfig struct {
	MaxSessions     int
	IdleTTL         time.Duration
	CleanupInterval time.Duration
}

// ObservabilityConfig holds logging configuration
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string // json or text
}

// CORSConfig holds allowed browser origins
type CORSConfig struct {
	AllowedOrigins []string
}

// New creates a new Config instance by loading environment variables
func New(ctx context.Context) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getPort(),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 180*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Providers: ProvidersConfig{
			Gemini: ProviderConfig{
				APIKey:  getEnv("GEMINI_API_KEY", ""),
				BaseURL: getEnv("GEMINI_BASE_URL", gemini.DefaultBaseURL),
			},
			Together: ProviderConfig{
				APIKey:  getEnv("TOGETHER_API_KEY", ""),
				BaseURL: getEnv("TOGETHER_BASE_URL", compat.TogetherEndpoint),
			},
			Groq: ProviderConfig{
				APIKey:  getEnv("GROQ_API_KEY", ""),
				BaseURL: getEnv("GROQ_BASE_URL", compat.GroqEndpoint),
			},
			Mistral: ProviderConfig{
				APIKey:  getEnv("MISTRAL_API_KEY", ""),
				BaseURL: getEnv("MISTRAL_BASE_URL", compat.MistralEndpoint),
			},
			OpenRouter: OpenRouterConfig{
				APIKeys:  getEnvAsList("OPENROUTER_API_KEYS"),
				BaseURL:  getEnv("OPENROUTER_BASE_URL", compat.OpenRouterEndpoint),
				KeyOrder: strings.ToLower(getEnv("OPENROUTER_KEY_ORDER", "ordered")),
			},
		},
		Search: SearchConfig{
			ExaAPIKey:     getEnv("EXA_API_KEY", ""),
			ExaBaseURL:    getEnv("EXA_BASE_URL", search.DefaultExaURL),
			TavilyAPIKey:  getEnv("TAVILY_API_KEY", ""),
			TavilyBaseURL: getEnv("TAVILY_BASE_URL", search.DefaultTavilyURL),
			Timeout:       getEnvAsDuration("SEARCH_TIMEOUT", 30*time.Second),
		},
		Dispatch: DispatchConfig{
			Timeout: getEnvAsDuration("DISPATCH_TIMEOUT", 60*time.Second),
		},
		Sessions: SessionConfig{
			MaxSessions:     getEnvAsInt("SESSION_MAX", 1000),
			IdleTTL:         getEnvAsDuration("SESSION_IDLE_TTL", 24*time.Hour),
			CleanupInterval: getEnvAsDuration("SESSION_CLEANUP_INTERVAL", 10*time.Minute),
		},
		Observability: ObservabilityConfig{
			LogLevel:  getEnv("LOG_LEVEL", "info"),
			LogFormat: getEnv("LOG_FORMAT", "json"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		},
	}

	catalog, err := LoadCatalog(getEnv("MODEL_CATALOG_FILE", ""))
	if err != nil {
		return nil, fmt.Errorf("failed to load model catalog: %w", err)
	}
	cfg.Catalog = catalog

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	// Provider validation (at least one provider API key required in production)
	if c.IsProduction() && !c.Providers.AnyConfigured() {
		return fmt.Errorf("at least one LLM provider must be configured in production")
	}

	switch c.Providers.OpenRouter.KeyOrder {
	case "", "ordered", "shuffle":
	default:
		return fmt.Errorf("invalid OPENROUTER_KEY_ORDER %q: use ordered or shuffle", c.Providers.OpenRouter.KeyOrder)
	}

	if c.Dispatch.Timeout < 0 {
		return fmt.Errorf("dispatch timeout must not be negative")
	}

	// Observability validation
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}

	return nil
}

// AnyConfigured reports whether any provider has a credential
func (p *ProvidersConfig) AnyConfigured() bool {
	return p.Gemini.APIKey != "" ||
		p.Together.APIKey != "" ||
		p.Groq.APIKey != "" ||
		p.Mistral.APIKey != "" ||
		len(p.OpenRouter.APIKeys) > 0
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Helper functions

// getPort returns the server port from PORT or SERVER_PORT env vars (default: 8080)
func getPort() int {
	if value := os.Getenv("PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	if value := os.Getenv("SERVER_PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	return 8080
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList splits a comma-separated value, dropping blanks
func getEnvAsList(key string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return nil
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
