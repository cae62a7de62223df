package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// HealthChecker interface for checking component health.
type HealthChecker interface {
	Liveness() bool
	Readiness(ctx context.Context) bool
	GetStatus() map[string]string
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Health is a HealthChecker driven by the process. It is alive from
// creation and ready once SetReady(true) is called.
type Health struct {
	mu     sync.RWMutex
	ready  bool
	checks map[string]string
}

// NewHealth creates a Health that is alive but not ready.
func NewHealth() *Health {
	return &Health{checks: make(map[string]string)}
}

// SetReady marks the process ready or not ready for traffic.
func (h *Health) SetReady(ready bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ready = ready
}

// SetCheck records the status of a named component.
func (h *Health) SetCheck(name, status string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = status
}

// Liveness implements HealthChecker.
func (h *Health) Liveness() bool { return true }

// Readiness implements HealthChecker.
func (h *Health) Readiness(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ready
}

// GetStatus implements HealthChecker.
func (h *Health) GetStatus() map[string]string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[string]string, len(h.checks))
	for k, v := range h.checks {
		out[k] = v
	}
	return out
}

// LivenessHandler returns a handler for Kubernetes liveness probes.
// Liveness probes should only fail if the process needs to be restarted.
func LivenessHandler(checker HealthChecker, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "alive"
		statusCode := http.StatusOK

		if !checker.Liveness() {
			status = "not alive"
			statusCode = http.StatusServiceUnavailable
		}

		writeJSON(w, statusCode, HealthResponse{
			Status:    status,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}, logger)
	}
}

// ReadinessHandler returns a handler for Kubernetes readiness probes.
// Readiness probes indicate if the application can handle traffic.
func ReadinessHandler(checker HealthChecker, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ready"
		statusCode := http.StatusOK

		if !checker.Readiness(r.Context()) {
			status = "not ready"
			statusCode = http.StatusServiceUnavailable
		}

		writeJSON(w, statusCode, HealthResponse{
			Status:    status,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Checks:    checker.GetStatus(),
		}, logger)
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, body interface{}, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}
