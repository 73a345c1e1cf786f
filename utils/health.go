package utils

import (
	"context"
	"sync"
	"time"
)

// Pinger is anything the health monitor can ping.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a plain function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Healthy   bool            `json:"healthy"`
	Checks    map[string]bool `json:"checks"`
	CheckedAt time.Time       `json:"checkedAt"`
}

// HealthMonitor keeps the latest check result of each dependency.
type HealthMonitor struct {
	targets map[string]Pinger

	mu      sync.RWMutex
	current HealthStatus
}

func NewHealthMonitor(targets map[string]Pinger) *HealthMonitor {
	return &HealthMonitor{targets: targets}
}

// Status returns latest stored health snapshot.
func (m *HealthMonitor) Status() HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Check pings every target once and stores the result.
func (m *HealthMonitor) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{Healthy: true, Checks: make(map[string]bool, len(m.targets)), CheckedAt: time.Now()}
	for name, target := range m.targets {
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		ok := target.Ping(pctx) == nil
		cancel()
		status.Checks[name] = ok
		status.Healthy = status.Healthy && ok
	}

	m.mu.Lock()
	m.current = status
	m.mu.Unlock()
	return status
}

// Run re-checks every interval until ctx is done.
func (m *HealthMonitor) Run(ctx context.Context, interval time.Duration) {
	m.Check(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}
