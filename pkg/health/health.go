// Package health exposes Kubernetes-style liveness and readiness probes.
//
// Every registered check runs on its own ticker goroutine. A check flips to
// unhealthy only after failAfter consecutive failures and recovers after
// passAfter consecutive successes, so a single slow poll does not bounce the
// pod out of the load balancer.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Check reports on one dependency or runtime property. A nil return means
// healthy.
type Check func(ctx context.Context) error

type probeKind int

const (
	liveness probeKind = iota
	readiness
)

const (
	failAfter = 3
	passAfter = 1
)

// probe is one registered check plus its runtime state.
//
// exec is only ever called from the probe's own ticker goroutine, so the
// consecutive counters need no synchronization. healthy and lastErr are read
// by HTTP handlers from arbitrary goroutines and use atomics.
type probe struct {
	name    string
	kind    probeKind
	timeout time.Duration
	fn      Check

	healthy atomic.Bool
	lastErr atomic.Pointer[error]

	fails  int
	passes int
}

func (p *probe) ok() bool {
	return p.healthy.Load()
}

func (p *probe) err() error {
	if e := p.lastErr.Load(); e != nil {
		return *e
	}
	return nil
}

// exec runs the check once and applies the thresholds. Single goroutine only.
func (p *probe) exec(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.fn(probeCtx)
	p.lastErr.Store(&err)

	if err != nil {
		p.passes = 0
		p.fails++
		if p.fails >= failAfter {
			p.healthy.Store(false)
		}
		return
	}

	p.fails = 0
	p.passes++
	if p.passes >= passAfter {
		p.healthy.Store(true)
	}
}

// Health aggregates liveness and readiness probes for one service.
type Health struct {
	ready atomic.Bool

	// mu guards probes and cancel. Registration happens before Start; the
	// HTTP handlers only take a snapshot of the slice under RLock.
	mu     sync.RWMutex
	probes []*probe
	cancel context.CancelFunc
}

// New returns a Health that reports not-ready until SetReady(true) is called.
func New() *Health {
	return &Health{}
}

// AddLivenessCheck registers a check for whether the process itself is sane,
// such as goroutine counts or GC pause times.
func (h *Health) AddLivenessCheck(name string, timeout time.Duration, fn Check) {
	h.add(liveness, name, timeout, fn)
}

// AddReadinessCheck registers a check for whether the service can take
// traffic, such as database connectivity.
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, fn Check) {
	h.add(readiness, name, timeout, fn)
}

func (h *Health) add(k probeKind, name string, timeout time.Duration, fn Check) {
	p := &probe{name: name, kind: k, timeout: timeout, fn: fn}
	p.healthy.Store(true) // healthy until proven otherwise

	h.mu.Lock()
	defer h.mu.Unlock()
	h.probes = append(h.probes, p)
}

// Start launches one ticker goroutine per registered probe. Call it once,
// after all probes are registered.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.cancel = cancel
	probes := make([]*probe, len(h.probes))
	copy(probes, h.probes)
	h.mu.Unlock()

	for _, p := range probes {
		go p.loop(ctx, interval)
	}
}

func (p *probe) loop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.exec(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.exec(ctx)
		}
	}
}

// SetReady flips the manual readiness gate. Pass false during graceful
// shutdown so the load balancer stops routing new requests.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports whether the manual gate is open and every readiness probe
// is currently passing.
func (h *Health) IsReady() bool {
	if !h.ready.Load() {
		return false
	}
	for _, p := range h.snapshot(readiness) {
		if !p.ok() {
			return false
		}
	}
	return true
}

// Stop cancels all probe goroutines. Safe to call more than once.
func (h *Health) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

func (h *Health) snapshot(k probeKind) []*probe {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]*probe, 0, len(h.probes))
	for _, p := range h.probes {
		if p.kind == k {
			out = append(out, p)
		}
	}
	return out
}

// statusResponse is the probe endpoint body. Every registered check appears
// in Checks, passing ones as "ok" and failing ones with the error text.
type statusResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LiveEndpoint serves /livez: 200 {"status":"up"} while all liveness probes
// pass, 503 {"status":"down"} with per-check detail otherwise.
func (h *Health) LiveEndpoint(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, h.snapshot(liveness), true)
}

// ReadyEndpoint serves /readyz: 200 only when the manual gate is open and all
// readiness probes pass.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, h.snapshot(readiness), h.ready.Load())
}

func writeStatus(w http.ResponseWriter, probes []*probe, gate bool) {
	resp := statusResponse{Status: "up"}
	if len(probes) > 0 {
		resp.Checks = make(map[string]string, len(probes))
	}

	for _, p := range probes {
		if p.ok() {
			resp.Checks[p.name] = "ok"
			continue
		}
		resp.Status = "down"
		if err := p.err(); err != nil {
			resp.Checks[p.name] = err.Error()
		} else {
			resp.Checks[p.name] = "failing"
		}
	}

	if !gate {
		resp.Status = "down"
		if resp.Checks == nil {
			resp.Checks = make(map[string]string, 1)
		}
		resp.Checks["service"] = "not ready"
	}

	code := http.StatusOK
	if resp.Status == "down" {
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	// Status code is already on the wire; an encode error here means the
	// client went away.
	_ = json.NewEncoder(w).Encode(resp)
}
