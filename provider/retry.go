package provider

import (
	"context"
	"time"

	"github.com/kbukum/voxkit/logger"
	"github.com/kbukum/voxkit/resilience"
)

// WithRetry returns a Middleware that retries failed Execute calls with
// exponential backoff. Only errors accepted by cfg.RetryIf are retried;
// the default accepts retryable AppErrors and plain transport errors.
func WithRetry[I, O any](cfg resilience.RetryConfig) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		if cfg.MaxAttempts <= 1 {
			return inner
		}
		return &retryRR[I, O]{inner: inner, cfg: cfg}
	}
}

type retryRR[I, O any] struct {
	inner RequestResponse[I, O]
	cfg   resilience.RetryConfig
}

func (r *retryRR[I, O]) Name() string                         { return r.inner.Name() }
func (r *retryRR[I, O]) IsAvailable(ctx context.Context) bool { return r.inner.IsAvailable(ctx) }

func (r *retryRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	cfg := r.cfg
	if cfg.OnRetry == nil {
		log := logger.Get("provider").WithContext(ctx)
		cfg.OnRetry = func(attempt int, err error, backoff time.Duration) {
			log.Debug("retrying provider call", logger.Fields(
				logger.FieldProvider, r.inner.Name(),
				"attempt", attempt,
				"backoff_ms", backoff.Milliseconds(),
				logger.FieldError, err.Error(),
			))
		}
	}
	return resilience.Retry(ctx, cfg, func() (O, error) {
		return r.inner.Execute(ctx, input)
	})
}
