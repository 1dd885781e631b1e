package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/docucortex/internal/core/domain"
	"github.com/custodia-labs/docucortex/internal/core/ports/driven"
	"github.com/custodia-labs/docucortex/internal/metrics"
)

// Policy bounds every call to an AI provider.
type Policy struct {
	// MaxAttempts is the total number of tries per call (default 3)
	MaxAttempts int

	// RetryDelay is the constant wait between tries (default 500ms)
	RetryDelay time.Duration

	// AttemptTimeout bounds a single try. Zero leaves it to the caller's context.
	AttemptTimeout time.Duration

	// RPS caps outgoing requests per second. Zero disables limiting.
	RPS float64

	// BreakerFailures is the number of consecutive failures that opens the breaker (default 5)
	BreakerFailures uint32

	// BreakerCooldown is how long the breaker stays open (default 30s)
	BreakerCooldown time.Duration

	Metrics *metrics.Recorder
	Logger  *slog.Logger
}

// DefaultPolicy returns three tries 500ms apart with no rate limit.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     3,
		RetryDelay:      500 * time.Millisecond,
		BreakerFailures: 5,
		BreakerCooldown: 30 * time.Second,
	}
}

// caller applies a Policy to calls against one provider.
type caller struct {
	name    string
	policy  Policy
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	logger  *slog.Logger
}

func newCaller(name string, p Policy) *caller {
	defaults := DefaultPolicy()
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = defaults.MaxAttempts
	}
	if p.RetryDelay < 0 {
		p.RetryDelay = 0
	}
	if p.BreakerFailures == 0 {
		p.BreakerFailures = defaults.BreakerFailures
	}
	if p.BreakerCooldown <= 0 {
		p.BreakerCooldown = defaults.BreakerCooldown
	}

	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("provider", name)

	c := &caller{
		name:   name,
		policy: p,
		logger: logger,
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     p.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= p.BreakerFailures
		},
		IsSuccessful: func(err error) bool {
			// Rejected requests say nothing about provider health
			return err == nil || isClientError(err) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "from", from.String(), "to", to.String())
		},
	})

	if p.RPS > 0 {
		burst := int(p.RPS)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(p.RPS), burst)
	}

	return c
}

// do runs op under the policy. Exhausted transient failures and an open
// breaker are reported as domain.ErrServiceUnavailable.
func (c *caller) do(ctx context.Context, op func(ctx context.Context) error) error {
	operation := func() error {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
		}

		_, err := c.breaker.Execute(func() (interface{}, error) {
			attemptCtx := ctx
			if c.policy.AttemptTimeout > 0 {
				var cancel context.CancelFunc
				attemptCtx, cancel = context.WithTimeout(ctx, c.policy.AttemptTimeout)
				defer cancel()
			}
			return nil, op(attemptCtx)
		})
		if err == nil {
			return nil
		}
		if ctx.Err() != nil || !isRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.policy.RetryDelay), uint64(c.policy.MaxAttempts-1)),
		ctx,
	)
	notify := func(err error, wait time.Duration) {
		c.logger.Warn("provider call failed, retrying", "error", err, "wait_ms", wait.Milliseconds())
	}

	err := backoff.RetryNotify(operation, b, notify)
	c.policy.Metrics.ProviderCall(c.name, err)
	if err == nil {
		return nil
	}

	if ctx.Err() != nil {
		return fmt.Errorf("%s: %w", c.name, err)
	}
	if isRetryable(err) || errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%s: %w: %w", c.name, domain.ErrServiceUnavailable, err)
	}
	return fmt.Errorf("%s: %w", c.name, err)
}

// statusCode extracts an HTTP status from provider errors, or 0.
func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// isClientError reports a 4xx other than 429: the request itself is wrong.
func isClientError(err error) bool {
	code := statusCode(err)
	return code >= 400 && code < 500 && code != http.StatusTooManyRequests
}

// isRetryable reports whether another try might succeed.
// Unknown errors, such as network failures, are retried.
func isRetryable(err error) bool {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return false
	case errors.Is(err, context.Canceled):
		return false
	case errors.Is(err, openai.ErrModerationInvalidModel):
		return false
	case isClientError(err):
		return false
	}
	return true
}

// Ensure the resilient wrappers implement their interfaces
var (
	_ driven.EmbeddingService  = (*ResilientEmbedding)(nil)
	_ driven.LLMService        = (*ResilientLLM)(nil)
	_ driven.ModerationService = (*ResilientModeration)(nil)
)

// ResilientEmbedding applies a Policy to an EmbeddingService.
type ResilientEmbedding struct {
	driven.EmbeddingService
	caller *caller
}

// NewResilientEmbedding wraps inner with policy
func NewResilientEmbedding(inner driven.EmbeddingService, policy Policy) *ResilientEmbedding {
	return &ResilientEmbedding{EmbeddingService: inner, caller: newCaller("embedding", policy)}
}

func (r *ResilientEmbedding) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	var out [][]float32
	err := r.caller.do(ctx, func(ctx context.Context) error {
		var err error
		out, err = r.EmbeddingService.Embed(ctx, texts)
		return err
	})
	return out, err
}

func (r *ResilientEmbedding) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	var out []float32
	err := r.caller.do(ctx, func(ctx context.Context) error {
		var err error
		out, err = r.EmbeddingService.EmbedQuery(ctx, query)
		return err
	})
	return out, err
}

// ResilientLLM applies a Policy to an LLMService.
type ResilientLLM struct {
	driven.LLMService
	caller *caller
}

// NewResilientLLM wraps inner with policy
func NewResilientLLM(inner driven.LLMService, policy Policy) *ResilientLLM {
	return &ResilientLLM{LLMService: inner, caller: newCaller("llm", policy)}
}

func (r *ResilientLLM) Complete(ctx context.Context, prompt string) (string, error) {
	var out string
	err := r.caller.do(ctx, func(ctx context.Context) error {
		var err error
		out, err = r.LLMService.Complete(ctx, prompt)
		return err
	})
	return out, err
}

// ResilientModeration applies a Policy to a ModerationService.
type ResilientModeration struct {
	driven.ModerationService
	caller *caller
}

// NewResilientModeration wraps inner with policy
func NewResilientModeration(inner driven.ModerationService, policy Policy) *ResilientModeration {
	return &ResilientModeration{ModerationService: inner, caller: newCaller("moderation", policy)}
}

func (r *ResilientModeration) Moderate(ctx context.Context, text string) (*domain.ModerationResult, error) {
	var out *domain.ModerationResult
	err := r.caller.do(ctx, func(ctx context.Context) error {
		var err error
		out, err = r.ModerationService.Moderate(ctx, text)
		return err
	})
	return out, err
}
