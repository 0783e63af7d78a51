// Package search enriches prompts with web, Reddit and YouTube results.
package search

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Source names where a block came from
type Source string

const (
	SourceWeb     Source = "web"
	SourceReddit  Source = "reddit"
	SourceYouTube Source = "youtube"
)

// WebSearcher finds general web results
type WebSearcher interface {
	Search(ctx context.Context, query string) ([]WebResult, error)
}

// SiteSearcher finds Reddit and YouTube links
type SiteSearcher interface {
	Reddit(ctx context.Context, query string) ([]LinkResult, error)
	YouTube(ctx context.Context, query string) ([]LinkResult, error)
}

// Options selects which enrichments run
type Options struct {
	Web     bool `json:"web"`
	Reddit  bool `json:"reddit"`
	YouTube bool `json:"youtube"`
}

// Any reports whether at least one enrichment is enabled
func (o Options) Any() bool {
	return o.Web || o.Reddit || o.YouTube
}

// Block is one rendered enrichment
type Block struct {
	Source  Source `json:"source"`
	Content string `json:"content"`
	Failed  bool   `json:"failed,omitempty"`
}

// Enrichment is the prompt after enrichment plus the blocks appended to it
type Enrichment struct {
	Prompt string  `json:"prompt"`
	Blocks []Block `json:"blocks,omitempty"`
}

// Enricher runs the enabled searches and appends their output to a prompt
type Enricher struct {
	web     WebSearcher
	sites   SiteSearcher
	timeout time.Duration
	logger  *zap.Logger
}

// NewEnricher creates a new enricher. A zero timeout leaves searches unbounded
// beyond their HTTP client timeout.
func NewEnricher(web WebSearcher, sites SiteSearcher, timeout time.Duration, logger *zap.Logger) *Enricher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enricher{web: web, sites: sites, timeout: timeout, logger: logger}
}

// Enrich queries each enabled source with the original prompt, in the order
// web, Reddit, YouTube. Search failures become warning blocks and never
// abort enrichment.
func (e *Enricher) Enrich(ctx context.Context, prompt string, opts Options) Enrichment {
	out := Enrichment{Prompt: prompt}

	if opts.Web {
		out.add(e.run(ctx, SourceWeb, "Web", func(ctx context.Context) (string, error) {
			results, err := e.web.Search(ctx, prompt)
			if err != nil {
				return "", err
			}
			return RenderWeb(results), nil
		}))
	}

	if opts.Reddit {
		out.add(e.run(ctx, SourceReddit, "Reddit", func(ctx context.Context) (string, error) {
			results, err := e.sites.Reddit(ctx, prompt)
			if err != nil {
				return "", err
			}
			return RenderReddit(results), nil
		}))
	}

	if opts.YouTube {
		out.add(e.run(ctx, SourceYouTube, "YouTube", func(ctx context.Context) (string, error) {
			results, err := e.sites.YouTube(ctx, prompt)
			if err != nil {
				return "", err
			}
			return RenderYouTube(results), nil
		}))
	}

	return out
}

func (e *Enricher) run(ctx context.Context, source Source, label string, search func(context.Context) (string, error)) Block {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	startTime := time.Now()
	content, err := search(ctx)
	if err != nil {
		e.logger.Warn("search enrichment failed",
			zap.String("source", string(source)),
			zap.Duration("latency", time.Since(startTime)),
			zap.Error(err))
		return Block{Source: source, Content: renderFailure(label, err), Failed: true}
	}

	e.logger.Debug("search enrichment completed",
		zap.String("source", string(source)),
		zap.Duration("latency", time.Since(startTime)))
	return Block{Source: source, Content: content}
}

func (e *Enrichment) add(b Block) {
	e.Blocks = append(e.Blocks, b)
	e.Prompt += "\n\n" + b.Content
}
