package middlewares

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// RequestObserver records served requests.
type RequestObserver interface {
	ObserveRequest(method, path string, status int, d time.Duration)
}

// MetricsMiddleware reports each request to obs labelled by its chi route pattern.
func MetricsMiddleware(obs RequestObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			path := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					path = pattern
				}
			}
			obs.ObserveRequest(r.Method, path, rw.statusCode, time.Since(start))
		})
	}
}
