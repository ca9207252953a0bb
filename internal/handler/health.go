package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/remindbot/remind-server-go/internal/config"
)

// PingFunc checks one dependency.
type PingFunc func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]PingFunc
}

func NewHealthHandler(checks map[string]PingFunc) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), config.DBPingTimeout)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, ping := range h.checks {
		if err := ping(ctx); err != nil {
			log.Warn().Err(err).Str("check", name).Msg("health check failed")
			results[name] = "error"
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}

	writeJSON(w, status, map[string]any{
		"status":    overall,
		"checks":    results,
		"timestamp": time.Now().UnixMilli(),
	})
}
