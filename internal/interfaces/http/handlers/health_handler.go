package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is a named dependency health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// checkTimeout bounds each dependency probe so a hung backend cannot stall
// the readiness endpoint.
const checkTimeout = 2 * time.Second

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	checks map[string]Pinger
}

// NewHealthHandler registers the dependency checks consulted by the
// readiness probe. Nil pingers are ignored so partially-wired binaries (the
// CLI, tests) can reuse the handler.
func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	filtered := make(map[string]Pinger, len(checks))
	for name, p := range checks {
		if p != nil {
			filtered[name] = p
		}
	}
	return &HealthHandler{checks: filtered}
}

// Liveness reports that the process is up. It deliberately checks nothing
// else: a live process with a dead dependency should be restarted by the
// readiness probe's consumers, not killed.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness probes every registered dependency and reports per-dependency
// status. Any failure yields 503.
func (h *HealthHandler) Readiness(c *gin.Context) {
	statuses := make(map[string]string, len(h.checks))
	healthy := true

	for name, p := range h.checks {
		ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
		err := p.Ping(ctx)
		cancel()
		if err != nil {
			statuses[name] = err.Error()
			healthy = false
			continue
		}
		statuses[name] = "ok"
	}

	status := http.StatusOK
	overall := "ready"
	if !healthy {
		status = http.StatusServiceUnavailable
		overall = "degraded"
	}
	c.JSON(status, gin.H{"status": overall, "checks": statuses})
}
