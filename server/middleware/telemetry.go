package middleware

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/launchpad/observability"
)

// RequestRecorder records application request metrics.
type RequestRecorder interface {
	RecordRequestStart(ctx context.Context)
	RecordRequest(ctx context.Context, method string, status int, d time.Duration)
}

// Telemetry returns middleware that wraps each application request in a
// server span and records request metrics. With the default no-op
// providers it costs little more than the status capture.
func Telemetry(rec RequestRecorder) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := observability.StartSpan(r.Context(), r.Method+" app",
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.request.method", r.Method),
					attribute.String("url.path", r.URL.Path),
				),
			)
			defer span.End()

			start := time.Now()
			rec.RecordRequestStart(ctx)
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r.WithContext(ctx))

			span.SetAttributes(attribute.Int("http.response.status_code", sw.status))
			rec.RecordRequest(ctx, r.Method, sw.status, time.Since(start))
		})
	}
}
