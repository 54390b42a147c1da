package middleware

import (
	"context"
	"net/http"
	"time"
)

// Timeout enforces a per-request deadline via context.WithTimeout.
// Handlers observe cancellation through r.Context(). Blocking audit
// writes are unaffected; they run under their own detached deadline.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
