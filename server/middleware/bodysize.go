package middleware

import (
	"net/http"

	"github.com/kbukum/launchpad/util"
)

const defaultMaxBodySize = 10 * 1024 * 1024 // 10MB

// BodySizeLimit returns middleware that restricts the request body to the
// given size string (e.g. "10MB", "512KB", "1GB"). Requests announcing a
// larger Content-Length are refused with 413 before the application runs.
func BodySizeLimit(maxSize string) Middleware {
	size := util.ParseSizeOr(maxSize, defaultMaxBodySize)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > size {
				http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, size)
			next.ServeHTTP(w, r)
		})
	}
}
