package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ReadyFunc reports whether the service can accept transcription requests.
type ReadyFunc func(ctx context.Context) error

// Readiness returns a handler for K8s readiness probes. A nil ready func
// always reports ready.
func Readiness(serviceName string, ready ReadyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{
			"status":    "ready",
			"service":   serviceName,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}
		httpStatus := http.StatusOK

		if ready != nil {
			if err := ready(c.Request.Context()); err != nil {
				body["status"] = "not_ready"
				body["message"] = err.Error()
				httpStatus = http.StatusServiceUnavailable
			}
		}

		c.JSON(httpStatus, body)
	}
}
