package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"blograg/internal/domain"
	"blograg/internal/metrics"
)

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying (bad request, auth failure).
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

// Guarded bounds every generation attempt by a timeout, retries transient
// failures with exponential backoff and reports the final failure as
// domain.ErrDependencyUnavailable.
type Guarded struct {
	inner      domain.Generator
	timeout    time.Duration
	maxRetries int
	log        *zap.Logger
	metrics    *metrics.Metrics
	backoff    func(attempt int) time.Duration
}

// Guard wraps inner. timeout applies per attempt; zero disables it.
func Guard(inner domain.Generator, timeout time.Duration, maxRetries int, log *zap.Logger, m *metrics.Metrics) *Guarded {
	if log == nil {
		log = zap.NewNop()
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Guarded{
		inner:      inner,
		timeout:    timeout,
		maxRetries: maxRetries,
		log:        log.Named("llm"),
		metrics:    m,
		backoff:    retryDelay,
	}
}

func (g *Guarded) Name() string { return g.inner.Name() }

func (g *Guarded) Complete(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				g.metrics.CountLLMCall("error")
				return "", fmt.Errorf("%w: generator %s: %w", domain.ErrDependencyUnavailable, g.inner.Name(), ctx.Err())
			case <-time.After(g.backoff(attempt - 1)):
			}
		}
		out, err := g.attempt(ctx, prompt)
		if err == nil {
			g.metrics.CountLLMCall("ok")
			return out, nil
		}
		lastErr = err
		var perm permanentError
		if errors.As(err, &perm) || ctx.Err() != nil {
			break
		}
		g.log.Warn("generation attempt failed", zap.Int("attempt", attempt+1), zap.Error(err))
	}
	g.metrics.CountLLMCall("error")
	return "", fmt.Errorf("%w: generator %s: %w", domain.ErrDependencyUnavailable, g.inner.Name(), lastErr)
}

func (g *Guarded) attempt(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	return g.inner.Complete(ctx, prompt)
}

func retryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := 200 * time.Millisecond
	// exponential backoff capped at 5s
	d := base << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}
