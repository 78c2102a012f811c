package httpclient

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/kbukum/voxkit/errors"
)

const maxErrorMessage = 512

// ClassifyStatusCode converts a sidecar HTTP status into an AppError.
// Returns nil for 2xx status codes. Client errors are not retryable; an
// overloaded or failing sidecar is.
func ClassifyStatusCode(service string, statusCode int, body []byte) *errors.AppError {
	msg := errorMessage(body)
	switch {
	case statusCode >= 200 && statusCode < 300:
		return nil
	case statusCode == http.StatusRequestTimeout, statusCode == http.StatusGatewayTimeout:
		return errors.Timeout(service).WithDetail("status", statusCode)
	case statusCode == http.StatusTooManyRequests, statusCode == http.StatusServiceUnavailable:
		return errors.ServiceUnavailable(service).WithDetail("status", statusCode).WithDetail("body", msg)
	case statusCode >= 400 && statusCode < 500:
		return errors.InvalidInput("request", msg).WithDetail("status", statusCode).WithDetail("service", service)
	default:
		return errors.ExternalServiceError(service, fmt.Errorf("HTTP %d: %s", statusCode, msg)).
			WithDetail("status", statusCode)
	}
}

// ClassifyTransportError converts an error returned by http.Client.Do.
// Cancellation of ctx is returned unchanged so callers can tell it apart.
func ClassifyTransportError(ctx context.Context, service string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return errors.Timeout(service).WithCause(err)
	}
	return errors.ConnectionFailed(service).WithCause(err)
}

// errorMessage extracts a readable message from an error body. JSON bodies
// carrying "error", "message" or "detail" are unwrapped.
func errorMessage(body []byte) string {
	var payload map[string]any
	if json.Unmarshal(body, &payload) == nil {
		for _, key := range []string{"error", "message", "detail"} {
			if s, ok := payload[key].(string); ok && s != "" {
				return truncate(s)
			}
		}
	}
	return truncate(strings.TrimSpace(string(body)))
}

func truncate(s string) string {
	if len(s) > maxErrorMessage {
		return s[:maxErrorMessage] + "..."
	}
	return s
}
