// Package resilience retries failed sidecar calls with exponential backoff.
//
//	vec, err := resilience.Retry(ctx, resilience.DefaultRetryConfig(), func() ([]float32, error) {
//	    return client.Embed(ctx, samples)
//	})
//
// IsRetryable is the default filter: it consults AppError.Retryable and
// never retries a canceled or expired context.
package resilience
