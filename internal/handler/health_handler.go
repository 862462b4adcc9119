package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Check probes one dependency.
type Check func(ctx context.Context) error

// HealthHandler reports service health.
type HealthHandler struct {
	checks map[string]Check
	logger zerolog.Logger
}

// NewHealthHandler creates a health handler running checks on every probe.
func NewHealthHandler(checks map[string]Check, logger zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		checks: checks,
		logger: logger.With().Str("handler", "health").Logger(),
	}
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	failed := make(map[string]string)
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.logger.Error().Err(err).Str("check", name).Msg("health check failed")
			failed[name] = err.Error()
		}
	}

	if len(failed) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unhealthy", "checks": failed})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
