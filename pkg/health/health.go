// Package health serves the liveness and readiness endpoints of the local
// function server.
package health

import (
	"context"
	"encoding/json"
	"maps"
	"net/http"
	"sync"
	"time"
)

// Checker reports whether a dependency can serve. It must honour ctx.
type Checker func(ctx context.Context) error

// Status is "up" or "down".
type Status string

const (
	StatusUp   Status = "up"
	StatusDown Status = "down"
)

// Response is the body of both endpoints.
type Response struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Uptime    float64                `json:"uptime_seconds"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is one dependency's outcome.
type CheckResult struct {
	Status    Status  `json:"status"`
	Error     string  `json:"error,omitempty"`
	LatencyMS float64 `json:"latency_ms"`
}

// Handler holds the registered readiness checks.
type Handler struct {
	mu       sync.RWMutex
	checkers map[string]Checker
	started  time.Time
	timeout  time.Duration
}

// NewHandler returns a Handler whose readiness checks share a five second
// budget.
func NewHandler() *Handler {
	return &Handler{
		checkers: make(map[string]Checker),
		started:  time.Now(),
		timeout:  5 * time.Second,
	}
}

// Register adds or replaces the check called name.
func (h *Handler) Register(name string, checker Checker) {
	h.mu.Lock()
	h.checkers[name] = checker
	h.mu.Unlock()
}

// LivenessHandler answers 200 while the process can serve HTTP at all.
func (h *Handler) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, http.StatusOK, h.response(StatusUp, nil))
	}
}

// ReadinessHandler runs every check concurrently and answers 503 if any is
// down.
func (h *Handler) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		defer cancel()

		h.mu.RLock()
		checkers := maps.Clone(h.checkers)
		h.mu.RUnlock()

		results := h.run(ctx, checkers)

		overall, code := StatusUp, http.StatusOK
		for _, res := range results {
			if res.Status == StatusDown {
				overall, code = StatusDown, http.StatusServiceUnavailable
				break
			}
		}
		writeResponse(w, code, h.response(overall, results))
	}
}

func (h *Handler) run(ctx context.Context, checkers map[string]Checker) map[string]CheckResult {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]CheckResult, len(checkers))
	)
	for name, check := range checkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			res := CheckResult{Status: StatusUp}
			if err := check(ctx); err != nil {
				res = CheckResult{Status: StatusDown, Error: err.Error()}
			}
			res.LatencyMS = float64(time.Since(start).Microseconds()) / 1000

			mu.Lock()
			results[name] = res
			mu.Unlock()
		}()
	}
	wg.Wait()
	return results
}

func (h *Handler) response(status Status, checks map[string]CheckResult) Response {
	return Response{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.started).Seconds(),
		Checks:    checks,
	}
}

func writeResponse(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
