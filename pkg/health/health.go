// Package health provides Kubernetes-style liveness and readiness probes.
//
// Registered checks run periodically on a single scheduler goroutine. A
// check flips to unhealthy only after failing several times in a row and
// recovers on the first success, so a single slow probe does not flap
// the endpoints.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// CheckFunc probes one component. A nil return means healthy.
type CheckFunc func(ctx context.Context) error

// failureThreshold is how many consecutive failures mark a check
// unhealthy; one success marks it healthy again.
const failureThreshold = 3

type checkKind int

const (
	kindLiveness checkKind = iota
	kindReadiness
)

// check holds the configuration and current state of one probe. State is
// guarded by mu; the scheduler is the only writer.
type check struct {
	name    string
	kind    checkKind
	timeout time.Duration
	probe   CheckFunc

	mu      sync.Mutex
	healthy bool
	fails   int
	lastErr error
}

func (c *check) run(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, c.timeout)
	err := c.probe(probeCtx)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = err
	if err == nil {
		c.fails = 0
		c.healthy = true
		return
	}
	c.fails++
	if c.fails >= failureThreshold {
		c.healthy = false
	}
}

// state returns the current health flag and last error.
func (c *check) state() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.healthy, c.lastErr
}

// Health manages the service's probes and serves the /livez and /readyz
// endpoints.
type Health struct {
	ready atomic.Bool

	mu     sync.RWMutex
	checks []*check
	cancel context.CancelFunc
}

// New creates a Health instance. The service starts not ready; call
// SetReady(true) once initialization is done.
func New() *Health {
	return &Health{}
}

func (h *Health) add(name string, kind checkKind, timeout time.Duration, probe CheckFunc) {
	c := &check{
		name:    name,
		kind:    kind,
		timeout: timeout,
		probe:   probe,
		// Assume healthy until the first runs say otherwise.
		healthy: true,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks = append(h.checks, c)
}

// AddLivenessCheck registers a liveness probe: is the process itself
// functioning (goroutine count, GC pauses, deadlocks).
func (h *Health) AddLivenessCheck(name string, timeout time.Duration, probe CheckFunc) {
	h.add(name, kindLiveness, timeout, probe)
}

// AddReadinessCheck registers a readiness probe: can the service take
// traffic (database connectivity, dependent services).
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, probe CheckFunc) {
	h.add(name, kindReadiness, timeout, probe)
}

// Start runs every registered check once immediately and then at the
// given interval until Stop is called or ctx is done. Register all
// checks before calling Start.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.cancel = cancel
	checks := make([]*check, len(h.checks))
	copy(checks, h.checks)
	h.mu.Unlock()

	go func() {
		runAll := func() {
			for _, c := range checks {
				c.run(ctx)
			}
		}
		runAll()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runAll()
			}
		}
	}()
}

// Stop cancels the scheduler. Safe to call more than once.
func (h *Health) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

// SetReady flips the manual readiness gate: true after initialization,
// false while draining during shutdown.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports whether the service should take traffic: manually
// marked ready and with every readiness check passing.
func (h *Health) IsReady() bool {
	return h.ready.Load() && len(h.failures(kindReadiness)) == 0
}

// failures collects name → message for every unhealthy check of the
// given kind.
func (h *Health) failures(kind checkKind) map[string]string {
	h.mu.RLock()
	checks := make([]*check, len(h.checks))
	copy(checks, h.checks)
	h.mu.RUnlock()

	out := make(map[string]string)
	for _, c := range checks {
		if c.kind != kind {
			continue
		}
		healthy, err := c.state()
		if healthy {
			continue
		}
		if err != nil {
			out[c.name] = err.Error()
		} else {
			out[c.name] = "check is unhealthy"
		}
	}
	return out
}

// statusResponse is the JSON body served by both endpoints.
type statusResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LiveEndpoint serves /livez: 200 when all liveness checks pass, 503
// with per-check failure messages otherwise.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	respond(w, h.failures(kindLiveness))
}

// ReadyEndpoint serves /readyz: 200 when the service is marked ready
// and all readiness checks pass, 503 with details otherwise.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	failures := h.failures(kindReadiness)
	if !h.ready.Load() {
		failures["_readiness"] = "service is not ready"
	}
	respond(w, failures)
}

func respond(w http.ResponseWriter, failures map[string]string) {
	resp := statusResponse{Status: "ok"}
	status := http.StatusOK
	if len(failures) > 0 {
		resp.Status = "unhealthy"
		resp.Checks = failures
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
