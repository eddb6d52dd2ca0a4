package middleware

import (
	"net/http"
	"time"
)

type HTTPObserver interface {
	ObserveHTTP(method, path string, status int, duration time.Duration)
}

func Metrics(observer HTTPObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			observer.ObserveHTTP(r.Method, r.URL.Path, wrapped.statusCode, time.Since(start))
		})
	}
}
