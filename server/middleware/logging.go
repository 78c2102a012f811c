package middleware

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/kbukum/voxkit/logger"
)

// ProbePaths are the system endpoints polled by orchestrators. They are not
// request-logged.
var ProbePaths = []string{"/health", "/alive", "/ready", "/version"}

// slowRequest marks requests worth a look: a long recording can legitimately
// take minutes, so only the extreme tail is flagged.
const slowRequest = 5 * time.Minute

// RequestLogger logs one line per request with method, path, status, body
// sizes and duration. 5xx answers log at error level and 4xx at warn.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isProbe(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := record(w)
			next.ServeHTTP(rec, r)
			elapsed := time.Since(start)

			fields := logger.Fields(
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"bytes_out", rec.bytes,
				logger.FieldDuration, elapsed.Milliseconds(),
			)
			if r.ContentLength > 0 {
				fields["bytes_in"] = r.ContentLength
			}
			if elapsed > slowRequest {
				fields["slow"] = true
			}

			l := log.WithContext(r.Context())
			switch {
			case rec.status >= http.StatusInternalServerError:
				l.Error("request failed", fields)
			case rec.status >= http.StatusBadRequest:
				l.Warn("request rejected", fields)
			default:
				l.Info("request completed", fields)
			}
		})
	}
}

func isProbe(path string) bool {
	return slices.Contains(ProbePaths, strings.TrimSuffix(path, "/"))
}
