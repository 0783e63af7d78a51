// Package chat runs chat turns: enrichment, then a single dispatch or a chain,
// then history bookkeeping for session turns.
package chat

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/24kshah/nemhem-ai/internal/observability"
	"github.com/24kshah/nemhem-ai/services"
	"github.com/24kshah/nemhem-ai/services/dispatch"
	"github.com/24kshah/nemhem-ai/services/search"
	"github.com/24kshah/nemhem-ai/services/session"
)

// Enricher appends search results to a prompt
type Enricher interface {
	Enrich(ctx context.Context, prompt string, opts search.Options) search.Enrichment
}

// SessionStore is the subset of the session store a chat turn needs
type SessionStore interface {
	Get(id uuid.UUID) (*session.Session, error)
	Append(id uuid.UUID, msgs ...session.Message) (*session.Session, error)
}

// Service orchestrates chat turns
type Service struct {
	invoker  dispatch.Invoker
	enricher Enricher
	sessions SessionStore
	metrics  observability.Metrics
	logger   *zap.Logger
}

// NewService creates a new chat service. A nil enricher disables enrichment.
func NewService(invoker dispatch.Invoker, enricher Enricher, sessions SessionStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		invoker:  invoker,
		enricher: enricher,
		sessions: sessions,
		logger:   logger,
	}
}

// WithMetrics records every completed turn into m
func (s *Service) WithMetrics(m observability.Metrics) *Service {
	s.metrics = m
	return s
}

// Ask runs a stateless turn
func (s *Service) Ask(ctx context.Context, req Request) (*Turn, error) {
	req, err := normalize(req)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, req, uuid.New()), nil
}

// Send runs a turn in a session using the session options. The user prompt
// and the assistant reply are appended to the history; a failed result is
// stored in its rendered form.
func (s *Service) Send(ctx context.Context, sessionID uuid.UUID, prompt string) (*Turn, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	req, err := normalize(Request{
		Prompt: prompt,
		Mode:   sess.Options.Mode,
		Model:  sess.Options.Model,
		Models: sess.Options.Models,
		Search: sess.Options.Search,
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.sessions.Append(sessionID, session.Message{Role: session.RoleUser, Content: req.Prompt}); err != nil {
		return nil, err
	}

	turn := s.run(ctx, req, uuid.New())
	turn.SessionID = &sessionID

	reply := session.Message{Role: session.RoleAssistant, Content: turn.Reply, Failed: !turn.OK()}
	if _, err := s.sessions.Append(sessionID, reply); err != nil {
		// the session was deleted mid-turn; the caller still gets the reply
		s.logger.Warn("failed to record assistant reply",
			zap.String("session_id", sessionID.String()),
			zap.Error(err))
	}

	return turn, nil
}

func (s *Service) run(ctx context.Context, req Request, turnID uuid.UUID) *Turn {
	startTime := time.Now()
	logger := s.logger.With(
		zap.String("turn_id", turnID.String()),
		zap.String("mode", string(req.Mode)))

	turn := &Turn{ID: turnID, Mode: req.Mode, Prompt: req.Prompt, EnrichedPrompt: req.Prompt}

	// Step 1: enrich
	if s.enricher != nil && req.Search.Any() {
		logger.Debug("step 1: enriching prompt",
			zap.Bool("web", req.Search.Web),
			zap.Bool("reddit", req.Search.Reddit),
			zap.Bool("youtube", req.Search.YouTube))
		enrichment := s.enricher.Enrich(ctx, req.Prompt, req.Search)
		turn.EnrichedPrompt = enrichment.Prompt
		turn.Enrichment = enrichment.Blocks
	}

	// Step 2: dispatch
	if req.Mode == session.ModeChain {
		logger.Debug("step 2: running chain", zap.Int("models", len(req.Models)))
		chain, err := dispatch.Chain(ctx, s.invoker, turn.EnrichedPrompt, req.Models)
		if err != nil {
			// normalize guarantees at least one model
			logger.Error("chain rejected", zap.Error(err))
		}
		turn.Steps = chain.Steps
		turn.Result = chain.Result
	} else {
		logger.Debug("step 2: invoking model", zap.String("model", req.Model))
		turn.Result = s.invoker.Invoke(ctx, turn.EnrichedPrompt, req.Model)
	}

	turn.Reply = turn.Result.Render()
	turn.Latency = time.Since(startTime)

	if s.metrics != nil {
		s.metrics.RecordTurn(observability.TurnLabels{
			Provider: turn.Result.Provider,
			Mode:     string(turn.Mode),
			Status:   string(turn.Result.Status),
		}, turn.Latency)
	}

	logger.Info("chat turn completed",
		zap.Bool("ok", turn.OK()),
		zap.String("provider", turn.Result.Provider),
		zap.Int("steps", len(turn.Steps)),
		zap.Duration("latency", turn.Latency))

	return turn
}

// normalize applies defaults and rejects turns that cannot be dispatched
func normalize(req Request) (Request, error) {
	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		return req, services.ErrEmptyPrompt
	}

	opts := session.Options{Mode: req.Mode, Model: req.Model, Models: req.Models}.Normalize()
	if err := opts.Validate(); err != nil {
		return req, err
	}
	req.Mode, req.Model, req.Models = opts.Mode, opts.Model, opts.Models

	switch req.Mode {
	case session.ModeChain:
		if len(req.Models) == 0 {
			return req, services.ErrNoModelSelected
		}
	default:
		if req.Model == "" {
			return req, services.ErrNoModelSelected
		}
	}
	return req, nil
}
