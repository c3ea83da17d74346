package middleware

import (
	"net/http"
	"time"
)

// RequestObserver records served HTTP requests
type RequestObserver interface {
	ObserveRequest(method string, status int, d time.Duration)
}

// Metrics middleware records method, status and latency of every request
func Metrics(observer RequestObserver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(ww, r)

			observer.ObserveRequest(r.Method, ww.statusCode, time.Since(start))
		})
	}
}
