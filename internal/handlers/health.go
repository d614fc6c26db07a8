package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"postcms/internal/envelope"
)

// healthTimeout bounds all dependency checks together.
const healthTimeout = 5 * time.Second

// CheckFunc probes one dependency.
type CheckFunc func(ctx context.Context) error

// Health reports whether the server's dependencies are reachable.
type Health struct {
	checks map[string]CheckFunc
}

// NewHealth creates a health handler running checks by name.
func NewHealth(checks map[string]CheckFunc) *Health {
	return &Health{checks: checks}
}

// Check runs every check concurrently and answers 200 when all pass,
// 503 otherwise. Error details are logged, not returned.
func (h *Health) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	var (
		mu      sync.Mutex
		results = make(map[string]string, len(h.checks))
		healthy = true
	)

	var g errgroup.Group
	for name, check := range h.checks {
		g.Go(func() error {
			status := "healthy"
			if err := check(ctx); err != nil {
				status = "unhealthy"
				slog.WarnContext(ctx, "health check failed", "check", name, "error", err)
			}
			mu.Lock()
			results[name] = status
			if status != "healthy" {
				healthy = false
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if !healthy {
		envelope.Write(w, http.StatusServiceUnavailable, envelope.Response{
			Status: envelope.StatusError, Message: "Service unavailable.", Content: results,
		})
		return
	}
	envelope.Success(w, http.StatusOK, "OK", results)
}
