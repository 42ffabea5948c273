package observability

import (
	"context"
	"time"
)

// HealthStatus represents the health state of a remote API or dependency.
type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "up"
	HealthStatusDown     HealthStatus = "down"
	HealthStatusDegraded HealthStatus = "degraded"
)

// Health describes the health of one dependency.
type Health struct {
	Name    string            `json:"name"`
	Status  HealthStatus      `json:"status"`
	Message string            `json:"message,omitempty"`
	Latency time.Duration     `json:"latency,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// ServiceHealth aggregates dependency health for a client process.
type ServiceHealth struct {
	Service    string       `json:"service"`
	Status     HealthStatus `json:"status"`
	Version    string       `json:"version,omitempty"`
	Components []Health     `json:"components,omitempty"`
}

// HealthChecker is implemented by anything that can report its health.
type HealthChecker interface {
	CheckHealth(ctx context.Context) Health
}

// HealthCheckFunc adapts a probe function into a HealthChecker. A nil error
// reports up; otherwise down with the error message.
type HealthCheckFunc struct {
	Name  string
	Probe func(ctx context.Context) error
}

// CheckHealth runs the probe and measures its latency.
func (f HealthCheckFunc) CheckHealth(ctx context.Context) Health {
	start := time.Now()
	err := f.Probe(ctx)
	h := Health{Name: f.Name, Status: HealthStatusUp, Latency: time.Since(start)}
	if err != nil {
		h.Status = HealthStatusDown
		h.Message = err.Error()
	}
	return h
}

// NewServiceHealth creates a ServiceHealth with status up.
func NewServiceHealth(service, version string) *ServiceHealth {
	return &ServiceHealth{
		Service: service,
		Status:  HealthStatusUp,
		Version: version,
	}
}

// AddComponent adds a component health result and degrades overall status if needed.
func (sh *ServiceHealth) AddComponent(ch Health) {
	sh.Components = append(sh.Components, ch)

	switch ch.Status {
	case HealthStatusDown:
		sh.Status = HealthStatusDown
	case HealthStatusDegraded:
		if sh.Status != HealthStatusDown {
			sh.Status = HealthStatusDegraded
		}
	}
}

// Check runs every checker in order and returns the aggregate.
func Check(ctx context.Context, service, version string, checkers ...HealthChecker) *ServiceHealth {
	sh := NewServiceHealth(service, version)
	for _, c := range checkers {
		sh.AddComponent(c.CheckHealth(ctx))
	}
	return sh
}
