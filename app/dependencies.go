package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/24kshah/nemhem-ai/config"
	"github.com/24kshah/nemhem-ai/internal/observability"
	"github.com/24kshah/nemhem-ai/services/chat"
	"github.com/24kshah/nemhem-ai/services/dispatch"
	"github.com/24kshah/nemhem-ai/services/providers"
	"github.com/24kshah/nemhem-ai/services/providers/compat"
	"github.com/24kshah/nemhem-ai/services/providers/gemini"
	"github.com/24kshah/nemhem-ai/services/routing"
	"github.com/24kshah/nemhem-ai/services/search"
	"github.com/24kshah/nemhem-ai/services/session"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	Logger *zap.Logger

	// Dispatch
	Transports *providers.Registry
	Profiles   routing.Profiles
	Router     *routing.Router
	Dispatcher *dispatch.Dispatcher

	// Enrichment
	Exa      *search.ExaClient
	Tavily   *search.TavilyClient
	Enricher *search.Enricher

	// Chat
	Sessions *session.Store
	Chat     *chat.Service
	Metrics  *observability.Counters

	stopCleanup chan struct{}
	closeOnce   sync.Once
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	// Initialize transports
	if err := deps.initTransports(); err != nil {
		return nil, fmt.Errorf("failed to initialize transports: %w", err)
	}

	// Initialize routing and dispatch
	deps.initDispatch(cfg)

	// Initialize search enrichment
	deps.initSearch(cfg)

	// Initialize sessions and the chat service
	deps.initChat(cfg)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initTransports registers one transport per wire protocol
func (d *Dependencies) initTransports() error {
	registry := providers.NewRegistry()

	if err := registry.Register(providers.KindChatCompletions, compat.NewClient(nil)); err != nil {
		return fmt.Errorf("registering %s: %w", providers.KindChatCompletions, err)
	}
	if err := registry.Register(providers.KindGemini, gemini.NewClient(nil)); err != nil {
		return fmt.Errorf("registering %s: %w", providers.KindGemini, err)
	}

	d.Transports = registry
	return nil
}

// initDispatch builds the routing table and the dispatcher
func (d *Dependencies) initDispatch(cfg *config.Config) {
	d.Profiles = BuildProfiles(cfg.Providers)
	d.Router = routing.NewDefaultRouter(d.Profiles)

	configured := 0
	for _, p := range All(d.Profiles) {
		if p.Configured() {
			configured++
			d.Logger.Info("provider configured",
				zap.String("provider", p.Name),
				zap.Int("credentials", p.Credentials.Len()),
				zap.String("key_order", string(p.Credentials.Order())))
		}
	}
	if configured == 0 {
		d.Logger.Warn("no LLM providers configured")
	}

	d.Dispatcher = dispatch.NewDispatcher(d.Router, d.Transports, d.Logger,
		dispatch.WithTimeout(cfg.Dispatch.Timeout))
}

// initSearch wires Exa and Tavily; unconfigured clients render a failure block when enabled
func (d *Dependencies) initSearch(cfg *config.Config) {
	httpClient := &http.Client{Timeout: cfg.Search.Timeout}

	d.Exa = search.NewExaClient(cfg.Search.ExaAPIKey, cfg.Search.ExaBaseURL, httpClient)
	d.Tavily = search.NewTavilyClient(cfg.Search.TavilyAPIKey, cfg.Search.TavilyBaseURL, httpClient)
	d.Enricher = search.NewEnricher(d.Exa, d.Tavily, cfg.Search.Timeout, d.Logger)

	if !d.Exa.Configured() {
		d.Logger.Warn("exa not configured, web enrichment disabled")
	}
	if !d.Tavily.Configured() {
		d.Logger.Warn("tavily not configured, reddit and youtube enrichment disabled")
	}
}

// initChat creates the session store, starts its cleanup worker and builds the chat service
func (d *Dependencies) initChat(cfg *config.Config) {
	d.Sessions = session.NewStore(cfg.Sessions.MaxSessions, cfg.Sessions.IdleTTL)
	d.stopCleanup = make(chan struct{})
	if cfg.Sessions.IdleTTL > 0 && cfg.Sessions.CleanupInterval > 0 {
		go d.Sessions.StartCleanupWorker(cfg.Sessions.CleanupInterval, d.stopCleanup)
	}

	d.Metrics = observability.NewCounters()
	d.Chat = chat.NewService(d.Dispatcher, d.Enricher, d.Sessions, d.Logger).WithMetrics(d.Metrics)
}

// ConfiguredProviders returns the names of providers that have credentials
func (d *Dependencies) ConfiguredProviders() []string {
	var names []string
	for _, p := range All(d.Profiles) {
		if p.Configured() {
			names = append(names, p.Name)
		}
	}
	return names
}

// Close gracefully shuts down background workers and flushes the logger
func (d *Dependencies) Close(ctx context.Context) error {
	d.closeOnce.Do(func() {
		if d.stopCleanup != nil {
			close(d.stopCleanup)
		}
	})

	if d.Logger != nil {
		_ = d.Logger.Sync()
	}
	return nil
}
