package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthChecker answers /healthz with the state of every registered dependency.
type HealthChecker struct {
	log    *slog.Logger
	checks map[string]Pinger
}

// NewHealthChecker creates a checker for the given named dependencies, e.g. "database" and "redis".
func NewHealthChecker(log *slog.Logger, checks map[string]Pinger) *HealthChecker {
	return &HealthChecker{log: log, checks: checks}
}

func (h *HealthChecker) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	h.log.DebugContext(req.Context(), "Performing health checks...")

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := make(map[string]string, len(names))
	overallStatus := http.StatusOK

	for _, name := range names {
		if err := h.checks[name].Ping(req.Context()); err != nil {
			status[name] = "unavailable"
			overallStatus = http.StatusServiceUnavailable
			h.log.WarnContext(req.Context(), "Health check failed", "dependency", name, "error", err)
			continue
		}
		status[name] = "ok"
	}

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(overallStatus)
	if err := json.NewEncoder(writer).Encode(status); err != nil {
		h.log.ErrorContext(req.Context(), "Failed to write health check response", "error", err)
	}

	h.log.DebugContext(req.Context(), "Health checks completed", "status", overallStatus)
}
