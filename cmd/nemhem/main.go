// Command nemhem sends prompts to LLM providers from the terminal.
package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/24kshah/nemhem-ai/app"
	"github.com/24kshah/nemhem-ai/config"
	"github.com/24kshah/nemhem-ai/internal/observability"
)

var version = "0.1.0"

func main() {
	root := newRootCmd(loadEnv)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadEnv wires the same dependency graph the gateway uses
func loadEnv(ctx context.Context, verbose bool) (*env, func(), error) {
	level := "error"
	if verbose {
		level = "debug"
	}
	logger, err := observability.NewLogger(level, "console")
	if err != nil {
		return nil, nil, err
	}

	cfg, err := config.New(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	deps, err := app.NewDependencies(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if len(deps.ConfiguredProviders()) == 0 {
		logger.Warn("no provider keys found in the environment", zap.String("hint", "set GROQ_API_KEY or OPENROUTER_API_KEYS"))
	}

	cleanup := func() { _ = deps.Close(context.Background()) }
	return &env{chat: deps.Chat, router: deps.Router, catalog: cfg.Catalog}, cleanup, nil
}
