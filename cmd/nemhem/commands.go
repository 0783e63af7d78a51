package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/24kshah/nemhem-ai/config"
	"github.com/24kshah/nemhem-ai/services/chat"
	"github.com/24kshah/nemhem-ai/services/routing"
	"github.com/24kshah/nemhem-ai/services/search"
	"github.com/24kshah/nemhem-ai/services/session"
)

// errTurnFailed makes the process exit non-zero after a failure was printed
var errTurnFailed = errors.New("turn failed")

// Asker runs one chat turn
type Asker interface {
	Ask(ctx context.Context, req chat.Request) (*chat.Turn, error)
}

// RouteResolver resolves selectors for the models command
type RouteResolver interface {
	Route(selector string) routing.Route
}

type env struct {
	chat    Asker
	router  RouteResolver
	catalog config.Catalog
}

type loader func(ctx context.Context, verbose bool) (*env, func(), error)

type rootFlags struct {
	verbose bool
	noColor bool
	search  search.Options
}

func newRootCmd(load loader) *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "nemhem",
		Short:         "Send prompts to Gemini, Groq, Mistral, Together and OpenRouter models",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Log dispatch details to stderr")
	root.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "Disable colored output")
	root.PersistentFlags().BoolVar(&flags.search.Web, "web", false, "Enrich the prompt with web search results")
	root.PersistentFlags().BoolVar(&flags.search.Reddit, "reddit", false, "Enrich the prompt with Reddit links")
	root.PersistentFlags().BoolVar(&flags.search.YouTube, "youtube", false, "Enrich the prompt with YouTube links")

	root.AddCommand(
		askCmd(load, flags),
		chainCmd(load, flags),
		modelsCmd(load, flags),
	)
	return root
}

func askCmd(load loader, flags *rootFlags) *cobra.Command {
	var model string

	cmd := &cobra.Command{
		Use:   "ask <prompt>",
		Short: "Send a prompt to a single model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTurn(cmd, load, flags, chat.Request{
				Prompt: args[0],
				Mode:   session.ModeSingle,
				Model:  model,
				Search: flags.search,
			})
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "Model label or identifier")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}

func chainCmd(load loader, flags *rootFlags) *cobra.Command {
	var models []string

	cmd := &cobra.Command{
		Use:   "chain <prompt>",
		Short: "Pipe a prompt through several models in order",
		Example: `  nemhem chain "summarize rust ownership" \
    -m "🟧 Groq: llama3-8b-8192" -m "🟥 MistralAI: mistral-small-latest"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTurn(cmd, load, flags, chat.Request{
				Prompt: args[0],
				Mode:   session.ModeChain,
				Models: models,
				Search: flags.search,
			})
		},
	}

	cmd.Flags().StringArrayVarP(&models, "model", "m", nil, "Model label, repeat in chain order")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}

func modelsCmd(load loader, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List catalog models and the provider each routes to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, cleanup, err := load(cmd.Context(), flags.verbose)
			if err != nil {
				return err
			}
			defer cleanup()

			p := newPrinter(cmd.OutOrStdout(), flags.noColor)
			for _, m := range e.catalog.Models {
				p.route(m, e.router.Route(m.Label))
			}
			return nil
		},
	}
}

func runTurn(cmd *cobra.Command, load loader, flags *rootFlags, req chat.Request) error {
	e, cleanup, err := load(cmd.Context(), flags.verbose)
	if err != nil {
		return err
	}
	defer cleanup()

	turn, err := e.chat.Ask(cmd.Context(), req)
	if err != nil {
		printErr(cmd.ErrOrStderr(), flags.noColor, err)
		return err
	}

	p := newPrinter(cmd.OutOrStdout(), flags.noColor)
	p.turn(turn)
	if !turn.OK() {
		return errTurnFailed
	}
	return nil
}

func printErr(w io.Writer, noColor bool, err error) {
	p := newPrinter(w, noColor)
	p.failure(fmt.Sprintf("❌ %v", err))
}
