package dispatch

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/24kshah/nemhem-ai/internal/redact"
	"github.com/24kshah/nemhem-ai/services/providers"
	"github.com/24kshah/nemhem-ai/services/routing"
)

// DefaultTimeout bounds one invocation, all credential attempts included
const DefaultTimeout = 60 * time.Second

// Resolver resolves a model selector to a route
type Resolver interface {
	Route(selector string) routing.Route
}

// TransportLookup finds the transport for a profile kind
type TransportLookup interface {
	Get(kind providers.Kind) (providers.Transport, error)
}

// Invoker is the single operation the chat layer needs
type Invoker interface {
	Invoke(ctx context.Context, prompt, selector string) Result
}

// Dispatcher executes one LLM call through the routed provider.
// It keeps no per-call state, so concurrent invocations never share a
// credential cursor.
type Dispatcher struct {
	router     Resolver
	transports TransportLookup
	timeout    time.Duration
	shuffle    func(n int, swap func(i, j int))
	logger     *zap.Logger
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithTimeout sets the per-call timeout; zero disables it
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		d.timeout = timeout
	}
}

// WithShuffle replaces the permutation used for shuffled credential sets
func WithShuffle(shuffle func(n int, swap func(i, j int))) Option {
	return func(d *Dispatcher) {
		d.shuffle = shuffle
	}
}

// NewDispatcher creates a new dispatcher
func NewDispatcher(router Resolver, transports TransportLookup, logger *zap.Logger, opts ...Option) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{
		router:     router,
		transports: transports,
		timeout:    DefaultTimeout,
		shuffle:    rand.Shuffle,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Invoke sends prompt as a single user turn to the model named by selector.
// Every failure is returned as a Failure result; Invoke never panics or errors.
func (d *Dispatcher) Invoke(ctx context.Context, prompt, selector string) Result {
	route := d.router.Route(selector)
	profile := route.Profile
	logger := d.logger.With(
		zap.String("provider", profile.Name),
		zap.String("model", route.ModelID),
		zap.Bool("fallback_route", route.Fallback))

	transport, err := d.transports.Get(profile.Kind)
	if err != nil {
		logger.Error("no transport for provider kind", zap.String("kind", string(profile.Kind)), zap.Error(err))
		return Fail(profile.Name, route.ModelID, &Failure{
			Kind:     KindNotConfigured,
			Provider: profile.Label(),
			Message:  fmt.Sprintf("no transport registered for %q", profile.Kind),
		})
	}

	keys := profile.Credentials.Sequence(d.shuffle)
	if len(keys) == 0 {
		logger.Warn("provider has no credentials configured")
		return Fail(profile.Name, route.ModelID, &Failure{
			Kind:     KindNotConfigured,
			Provider: profile.Label(),
			Message:  "no API key configured",
		})
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	req := providers.NewUserRequest(route.ModelID, prompt)
	startTime := time.Now()

	var result Result
	if len(keys) == 1 {
		result = d.invokeSingle(ctx, transport, profile, keys[0], req)
	} else {
		result = d.invokeWithFallback(ctx, transport, profile, keys, req, logger)
	}

	if result.OK() {
		logger.Info("invocation succeeded", zap.Duration("latency", time.Since(startTime)))
	} else {
		logger.Warn("invocation failed",
			zap.String("kind", string(result.Failure.Kind)),
			zap.Int("status_code", result.Failure.StatusCode),
			zap.Int("attempts", result.Failure.Attempts),
			zap.Duration("latency", time.Since(startTime)))
	}

	return result
}

func (d *Dispatcher) invokeSingle(ctx context.Context, transport providers.Transport, profile providers.Profile, key string, req *providers.ChatRequest) Result {
	resp, err := call(ctx, transport, target(profile, key), req)
	if err != nil {
		return Fail(profile.Name, req.Model, failureFromError(ctx, profile, err, 1, key))
	}
	return Success(profile.Name, req.Model, resp.Content)
}

// invokeWithFallback walks the credential set once: 200 returns, auth or
// quota statuses and dropped connections move on, anything else stops.
func (d *Dispatcher) invokeWithFallback(ctx context.Context, transport providers.Transport, profile providers.Profile, keys []string, req *providers.ChatRequest, logger *zap.Logger) Result {
	for i, key := range keys {
		attempt := i + 1

		resp, err := call(ctx, transport, target(profile, key), req)
		if err == nil {
			return Success(profile.Name, req.Model, resp.Content)
		}

		if ctx.Err() != nil {
			return Fail(profile.Name, req.Model, failureFromError(ctx, profile, err, attempt, keys...))
		}

		status, ok := providers.StatusCode(err)
		if !ok {
			logger.Warn("credential attempt failed without a usable response",
				zap.Int("attempt", attempt), zap.Error(err))
			continue
		}

		if ClassifyStatus(status) == OutcomeRetry {
			logger.Debug("credential rejected, trying next",
				zap.Int("attempt", attempt), zap.Int("status_code", status))
			continue
		}

		return Fail(profile.Name, req.Model, failureFromError(ctx, profile, err, attempt, keys...))
	}

	return Fail(profile.Name, req.Model, &Failure{
		Kind:     KindExhausted,
		Provider: profile.Label(),
		Message:  fmt.Sprintf("all %d credentials failed or were rate-limited", len(keys)),
		Attempts: len(keys),
	})
}

// call invokes the transport, converting a panic into an error
func call(ctx context.Context, transport providers.Transport, t providers.Target, req *providers.ChatRequest) (resp *providers.ChatResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp = nil
			err = fmt.Errorf("transport panic: %v", r)
		}
	}()
	resp, err = transport.Complete(ctx, t, req)
	if err == nil && resp == nil {
		err = providers.NewProviderError(t.Provider, providers.CodeEmptyResponse, "transport returned no response", 0, nil)
	}
	return resp, err
}

func target(profile providers.Profile, key string) providers.Target {
	return providers.Target{Provider: profile.Name, Endpoint: profile.Endpoint, Credential: key}
}

// failureFromError classifies err; upstream text is scrubbed of the credentials in keys
func failureFromError(ctx context.Context, profile providers.Profile, err error, attempts int, keys ...string) *Failure {
	scrub := redact.New(keys...)
	f := &Failure{Provider: profile.Label(), Attempts: attempts, Message: scrub.Redact(err.Error())}

	if ctxErr := ctx.Err(); ctxErr != nil {
		f.Kind = KindTimeout
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			f.Message = "request timed out"
		} else {
			f.Message = "request cancelled"
		}
		return f
	}

	var provErr *providers.ProviderError
	if errors.As(err, &provErr) {
		if provErr.StatusCode != 0 {
			f.Kind = KindProviderError
			f.StatusCode = provErr.StatusCode
			f.Body = scrub.Redact(provErr.Body)
			return f
		}
		switch provErr.Code {
		case providers.CodeEmptyResponse, providers.CodeUnmarshalError:
			f.Kind = KindProviderError
			return f
		}
	}

	f.Kind = KindTransportError
	return f
}
