package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// ReadinessChecker reports whether the delivery target is usable
type ReadinessChecker interface {
	Ready() error
}

// HealthHandler provides health check endpoint
type HealthHandler struct {
	checker ReadinessChecker
	version string
	logger  *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(checker ReadinessChecker, version string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		checker: checker,
		version: version,
		logger:  logger,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status             string    `json:"status"`
	Timestamp          time.Time `json:"timestamp"`
	Version            string    `json:"version"`
	TelegramConfigured bool      `json:"telegram_configured"`
}

// ServeHTTP handles health check requests.
// Missing credentials do not make the process unhealthy; they are reported as a flag.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:             "healthy",
		Timestamp:          time.Now().UTC(),
		Version:            h.version,
		TelegramConfigured: h.checker.Ready() == nil,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed to encode health response", "error", err)
	}
}
