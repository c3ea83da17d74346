package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/alanya-store/order-notifier/internal/handlers"
)

// Recoverer turns a handler panic into a JSON 500 response.
// http.ErrAbortHandler is re-raised so the server aborts the connection as usual.
func Recoverer(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.Error("panic recovered",
					"panic", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)

				w.Header().Set("Access-Control-Allow-Origin", "*")
				handlers.WriteError(w, http.StatusInternalServerError, "Internal server error", logger)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
