package health

import (
	"context"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates at least one component is failing.
	Degraded Status = "degraded"
	// Unhealthy indicates every component is failing.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// DefaultTimeout bounds each component check.
const DefaultTimeout = 2 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Component is a named dependency to check.
type Component struct {
	Name   string
	Pinger Pinger
}

// Service coordinates health checks.
type Service struct {
	components []Component
	timeout    time.Duration
}

// New creates a Service. Components with a nil Pinger are skipped.
func New(components ...Component) *Service {
	kept := make([]Component, 0, len(components))
	for _, c := range components {
		if c.Pinger != nil {
			kept = append(kept, c)
		}
	}
	return &Service{components: kept, timeout: DefaultTimeout}
}

// Check pings every component.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, len(s.components))
	failed := 0

	for _, c := range s.components {
		cctx, cancel := context.WithTimeout(ctx, s.timeout)
		err := c.Pinger.Ping(cctx)
		cancel()
		if err != nil {
			checks[c.Name] = CheckError
			failed++
			continue
		}
		checks[c.Name] = CheckOK
	}

	status := Healthy
	switch {
	case failed > 0 && failed == len(s.components):
		status = Unhealthy
	case failed > 0:
		status = Degraded
	}
	return Report{Status: status, Checks: checks}
}
