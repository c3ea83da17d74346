package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/cors"
)

// Cross-origin policy of the order endpoint
var (
	corsAllowedMethods = []string{http.MethodPost, http.MethodOptions}
	corsAllowedHeaders = []string{"Content-Type"}
	corsMaxAge         = 86400
)

// allowAnyOrigin marks the response as readable from any origin
func allowAnyOrigin(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// setPreflightHeaders writes the full preflight header set
func setPreflightHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", strings.Join(corsAllowedMethods, ", "))
	h.Set("Access-Control-Allow-Headers", strings.Join(corsAllowedHeaders, ", "))
	h.Set("Access-Control-Max-Age", strconv.Itoa(corsMaxAge))
}

// CORSOptions configures router-level CORS with the same policy.
// Preflights pass through so OrderHandler answers them with the exact header set.
func CORSOptions() cors.Options {
	return cors.Options{
		AllowedOrigins:     []string{"*"},
		AllowedMethods:     corsAllowedMethods,
		AllowedHeaders:     corsAllowedHeaders,
		AllowCredentials:   false,
		MaxAge:             corsMaxAge,
		OptionsPassthrough: true,
	}
}
