package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrymomot/letterdesk/pkg/logger"
)

// Probe statuses.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// CheckFunc matches the Healthcheck closures returned by the storage packages.
type CheckFunc func(ctx context.Context) error

// Checks maps a dependency name to its check.
type Checks map[string]CheckFunc

// ProbeResponse is the readiness probe body.
type ProbeResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LivenessHandler always answers 200 while the process runs.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeProbe(w, http.StatusOK, ProbeResponse{Status: StatusHealthy})
	}
}

// ReadinessHandler runs every check in parallel under timeout and answers 503
// when any of them fails.
func ReadinessHandler(log *slog.Logger, timeout time.Duration, checks Checks) http.HandlerFunc {
	if log == nil {
		log = logger.Discard()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return func(w http.ResponseWriter, r *http.Request) {
		resp := RunChecks(r.Context(), log, timeout, checks)
		status := http.StatusOK
		if resp.Status != StatusHealthy {
			status = http.StatusServiceUnavailable
		}
		writeProbe(w, status, resp)
	}
}

// RunChecks executes checks concurrently and aggregates the outcome.
func RunChecks(ctx context.Context, log *slog.Logger, timeout time.Duration, checks Checks) ProbeResponse {
	resp := ProbeResponse{Status: StatusHealthy}
	if len(checks) == 0 {
		return resp
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	resp.Checks = make(map[string]string, len(checks))

	for name, check := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()

			status := StatusHealthy
			if err := check(ctx); err != nil {
				status = StatusUnhealthy
				log.WarnContext(ctx, "readiness check failed", slog.String("check", name), logger.Error(err))
			}

			mu.Lock()
			resp.Checks[name] = status
			if status != StatusHealthy {
				resp.Status = StatusUnhealthy
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	return resp
}

func writeProbe(w http.ResponseWriter, status int, body ProbeResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
