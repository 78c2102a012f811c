package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/voxkit/observability"
)

// Health returns a handler that reports service health including component
// statuses. A service whose components are all up reports "ok".
func Health(service, version string, extra map[string]string, checkers ...observability.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		sh := observability.Check(c.Request.Context(), service, version, checkers...)

		status := string(sh.Status)
		if sh.Status == observability.HealthStatusUp {
			status = "ok"
		}
		httpStatus := http.StatusOK
		if sh.Status == observability.HealthStatusDown {
			httpStatus = http.StatusServiceUnavailable
		}

		body := gin.H{
			"status":    status,
			"service":   sh.Service,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}
		if sh.Version != "" {
			body["version"] = sh.Version
		}
		if len(sh.Components) > 0 {
			body["components"] = sh.Components
		}
		for k, v := range extra {
			if _, taken := body[k]; !taken {
				body[k] = v
			}
		}
		c.JSON(httpStatus, body)
	}
}
