package middleware

import (
	"net/http"
	"time"

	"github.com/kbukum/launchpad/logger"
)

const slowRequest = 500 * time.Millisecond

// RequestLogger returns middleware that logs every request with method,
// path, status code, and duration. Paths in skip are not logged.
func RequestLogger(log *logger.Logger, skip ...string) Middleware {
	skipped := make(map[string]bool, len(skip))
	for _, p := range skip {
		skipped[p] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipped[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)
			duration := time.Since(start)

			fields := logger.Fields(
				"method", r.Method,
				"path", r.URL.Path,
				logger.FieldStatus, sw.status,
				logger.FieldDuration, duration.Milliseconds(),
			)
			if duration > slowRequest {
				fields["slow"] = true
			}
			logByStatus(log.WithContext(r.Context()), fields, sw.status)
		})
	}
}

// logByStatus logs request fields at a level derived from the status code.
func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Error("request completed", fields)
	case status >= 400:
		log.Warn("request completed", fields)
	default:
		log.Debug("request completed", fields)
	}
}
