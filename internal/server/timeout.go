package server

import (
	"context"
	"net/http"
	"time"
)

// TimeoutMiddleware bounds each request by cancelling its context, which
// abandons any in-flight database query without disturbing the shared
// session. Cancellation is cooperative; handlers must pass the request
// context downstream.
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
