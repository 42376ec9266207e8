package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/kbukum/launchpad/logger"
)

// HeaderRequestID carries the request ID in both directions.
const HeaderRequestID = "X-Request-Id"

// RequestID ensures every request has an X-Request-Id. An incoming ID is
// kept; otherwise a UUID is generated. The ID is echoed in the response,
// set on the request forwarded to the application, and stored in the
// request context under logger.RequestIDKey.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(HeaderRequestID)
			if id == "" {
				id = uuid.New().String()
				r.Header.Set(HeaderRequestID, id)
			}
			w.Header().Set(HeaderRequestID, id)
			ctx := context.WithValue(r.Context(), logger.RequestIDKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
