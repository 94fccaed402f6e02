package docsearch

import (
	"context"
	"slices"

	"github.com/kailas-cloud/docsearch/internal/backend"
	healthuc "github.com/kailas-cloud/docsearch/internal/usecase/health"
)

// Health is a point-in-time view of the client's dependencies.
// Status is "ok", "degraded" or "error"; Checks maps each component
// ("store", and "rate_limit" with WithSharedRateLimit) to "ok" or "error".
type Health struct {
	Status string
	Checks map[string]string
}

// OK reports whether every component answered.
func (h Health) OK() bool {
	return h.Status == string(healthuc.Healthy)
}

// Failing returns the names of components that did not answer, sorted.
func (h Health) Failing() []string {
	var out []string
	for name, res := range h.Checks {
		if res != string(healthuc.CheckOK) {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

// Health pings the document store and, with shared rate limiting, the limiter store.
// Each component gets its own two second budget.
func (c *Client) Health(ctx context.Context) Health {
	report := c.healthSvc.Check(ctx)
	h := Health{Status: string(report.Status), Checks: make(map[string]string, len(report.Checks))}
	for name, res := range report.Checks {
		h.Checks[name] = string(res)
	}
	return h
}

func newHealth(be *backend.Backend, sharedLimiter bool) *healthuc.Service {
	comps := []healthuc.Component{{Name: "store", Pinger: be.Repo}}
	if sharedLimiter && be.Redis != nil {
		comps = append(comps, healthuc.Component{Name: "rate_limit", Pinger: be.Redis})
	}
	return healthuc.New(comps...)
}
